// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package payload

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/threattrace/internal/models"
)

// Push event names.
const (
	EventStatsUpdate     = "stats_update"
	EventThreatLocation  = "threat_location"
	EventActivityUpdate  = "activity_update"
	EventScanProgress    = "scan_progress"
	EventNewAlert        = "new_alert"
	EventTamperAlert     = "tamper_alert"
	EventRansomwareAlert = "ransomware_alert"
	EventSystemLog       = "system_log"
	EventChartUpdate     = "chart_update"
)

// EventNames lists every push event the reconciler subscribes to.
var EventNames = []string{
	EventStatsUpdate,
	EventThreatLocation,
	EventActivityUpdate,
	EventScanProgress,
	EventNewAlert,
	EventTamperAlert,
	EventRansomwareAlert,
	EventSystemLog,
	EventChartUpdate,
}

// Payload is a decoded, validated push message. The set of implementations
// is closed: StatsUpdate, ThreatLocation, ActivityUpdate, ScanProgress,
// Alert, SystemLog and ChartUpdate.
type Payload interface {
	// EventName returns the push event the payload arrived on.
	EventName() string

	sealed()
}

// StatsUpdate is a partial counter update.
type StatsUpdate struct {
	Patch models.StatsPatch

	// Skipped names members whose value was not a scalar.
	Skipped []string
}

// ThreatLocation is one geolocated threat observation. Event is non-nil when
// the observation carries a message worth showing in the activity feed.
type ThreatLocation struct {
	Point models.GeoPoint
	Event *models.Event
}

// ActivityUpdate carries one or more feed events in arrival order.
type ActivityUpdate struct {
	Events []models.Event
}

// ScanProgress reports the progress of a file scan.
type ScanProgress struct {
	ScanID    string
	File      string
	Progress  float64
	Status    string
	Timestamp string
}

// AlertKind distinguishes the three alert events.
type AlertKind int

// Alert kinds.
const (
	AlertNew AlertKind = iota
	AlertTamper
	AlertRansomware
)

func (k AlertKind) String() string {
	switch k {
	case AlertTamper:
		return "tamper"
	case AlertRansomware:
		return "ransomware"
	default:
		return "new"
	}
}

// Alert is a new_alert, tamper_alert or ransomware_alert message.
type Alert struct {
	Kind      AlertKind
	ID        string
	Title     string
	Message   string
	Severity  models.Severity
	Source    string
	Timestamp string

	// tamper_alert only
	FilePath string
	LastHash string
}

// SystemLog is one streamed system log line.
type SystemLog struct {
	ID        string
	Timestamp string
	Level     string // upper-cased
	Source    string
	Message   string
}

// Chart kinds carried by chart_update.
const (
	ChartTrends   = "trends"
	ChartTypes    = "types"
	ChartSeverity = "severity"
)

// ChartUpdate extends the trend series or replaces a distribution chart.
// Exactly one of Trend, Types or Severity is set, according to Chart.
type ChartUpdate struct {
	Chart    string
	Trend    *models.TrendPoint
	Types    []models.ThreatTypeCount
	Severity *models.SeverityBreakdown
}

func (StatsUpdate) EventName() string    { return EventStatsUpdate }
func (ThreatLocation) EventName() string { return EventThreatLocation }
func (ActivityUpdate) EventName() string { return EventActivityUpdate }
func (ScanProgress) EventName() string   { return EventScanProgress }
func (SystemLog) EventName() string      { return EventSystemLog }
func (ChartUpdate) EventName() string    { return EventChartUpdate }

// EventName returns the event the alert arrived on, derived from its kind.
func (a Alert) EventName() string {
	switch a.Kind {
	case AlertTamper:
		return EventTamperAlert
	case AlertRansomware:
		return EventRansomwareAlert
	default:
		return EventNewAlert
	}
}

func (StatsUpdate) sealed()    {}
func (ThreatLocation) sealed() {}
func (ActivityUpdate) sealed() {}
func (ScanProgress) sealed()   {}
func (Alert) sealed()          {}
func (SystemLog) sealed()      {}
func (ChartUpdate) sealed()    {}

// AsEvent maps a scan tick into the activity feed.
func (s ScanProgress) AsEvent() models.Event {
	msg := "Scan " + s.Status
	if s.File != "" {
		msg = fmt.Sprintf("Scanning %s (%s%%)", s.File, strconv.FormatFloat(s.Progress, 'f', -1, 64))
	}
	details := map[string]any{"progress": s.Progress}
	if s.ScanID != "" {
		details["scan_id"] = s.ScanID
	}
	if s.Status != "" {
		details["status"] = s.Status
	}
	return models.Event{
		Timestamp: s.Timestamp,
		Type:      models.EventTypeScan,
		Severity:  models.SeverityInfo,
		Message:   msg,
		Source:    "scanner",
		Details:   details,
	}
}

// AsEvent maps an alert into the activity feed.
func (a Alert) AsEvent() models.Event {
	ev := models.Event{
		ID:        a.ID,
		Timestamp: a.Timestamp,
		Severity:  a.Severity,
		Message:   a.Message,
		Source:    a.Source,
	}
	switch a.Kind {
	case AlertTamper:
		ev.Type = models.EventTypeAudit
		ev.Details = map[string]any{"file_path": a.FilePath}
		if a.LastHash != "" {
			ev.Details["last_hash"] = a.LastHash
		}
		if ev.Message == "" || ev.Message == "Tamper detected" {
			ev.Message = "Log Tampered: " + a.FilePath
		}
	case AlertRansomware:
		ev.Type = models.EventTypeRansomware
	default:
		ev.Type = models.EventTypeAlert
	}
	if a.Title != "" {
		if ev.Details == nil {
			ev.Details = map[string]any{}
		}
		ev.Details["title"] = a.Title
	}
	return ev
}

// NoticeText is the toast line shown for the alert.
func (a Alert) NoticeText() string {
	switch {
	case a.Kind == AlertTamper:
		return "Log Tampered: " + a.FilePath
	case a.Title != "" && a.Message != "":
		return a.Title + ": " + a.Message
	case a.Message != "":
		return a.Message
	case a.Title != "":
		return a.Title
	default:
		return "Security Alert"
	}
}

// Relevant reports whether the log line belongs in the activity feed.
// Only WARNING, ERROR and CRITICAL lines do.
func (l SystemLog) Relevant() bool {
	switch l.Level {
	case "WARNING", "WARN", "ERROR", "CRITICAL":
		return true
	default:
		return false
	}
}

// AsEvent maps a relevant log line into the activity feed. CRITICAL becomes
// critical, ERROR high and WARNING medium.
func (l SystemLog) AsEvent() models.Event {
	sev := models.SeverityMedium
	switch l.Level {
	case "CRITICAL":
		sev = models.SeverityCritical
	case "ERROR":
		sev = models.SeverityHigh
	}
	return models.Event{
		ID:        l.ID,
		Timestamp: l.Timestamp,
		Type:      models.EventTypeLog,
		Severity:  sev,
		Message:   l.Message,
		Source:    l.Source,
		Details:   map[string]any{"level": strings.ToLower(l.Level)},
	}
}
