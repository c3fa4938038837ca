// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package models

// TrendPoint is one bucket of the threat-trend time series.
type TrendPoint struct {
	Timestamp string `json:"timestamp"`
	Threats   int    `json:"threats"`
	Blocked   int    `json:"blocked"`
	Active    int    `json:"active"`
}

// ThreatTypeCount is one slice of the attack-type distribution.
type ThreatTypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
	Color string `json:"color,omitempty"`
}

// SeverityBreakdown counts threats per severity bucket.
type SeverityBreakdown struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// TopThreat is one row of the active-threats panel.
type TopThreat struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Severity  string `json:"severity"`
	Source    string `json:"source,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Status    string `json:"status,omitempty"`
}

// AsEvent maps a top-threat row into the activity feed.
func (t *TopThreat) AsEvent() Event {
	ev := Event{
		ID:        t.ID,
		Timestamp: t.Timestamp,
		Type:      EventTypeAlert,
		Severity:  ParseSeverity(t.Severity),
		Message:   t.Name,
		Source:    t.Source,
	}
	if t.Status != "" {
		ev.Details = map[string]any{"status": t.Status}
	}
	return ev
}

// Charts bundles the chart datasets the dashboard renders.
type Charts struct {
	Trends   []TrendPoint      `json:"trends"`
	Types    []ThreatTypeCount `json:"types"`
	Severity SeverityBreakdown `json:"severity"`
}

// NoticeLevel is the display level of a notice.
type NoticeLevel string

// Notice levels.
const (
	NoticeError   NoticeLevel = "error"
	NoticeWarn    NoticeLevel = "warn"
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
)

// NoticeLevelFor maps an event severity to the level its notice is shown at.
func NoticeLevelFor(s Severity) NoticeLevel {
	switch s {
	case SeverityCritical, SeverityHigh:
		return NoticeError
	case SeverityMedium:
		return NoticeWarn
	default:
		return NoticeInfo
	}
}

// Notice is a user-visible, transient notification (a toast).
type Notice struct {
	ID       string      `json:"id"`
	Message  string      `json:"message"`
	Severity NoticeLevel `json:"severity"`
	Time     string      `json:"time"`
}

// ViewSnapshot is the complete reconciled state of one dashboard view.
type ViewSnapshot struct {
	Mounted    bool           `json:"mounted"`
	Feed       []Event        `json:"feed"`
	Points     []GeoPoint     `json:"points"`
	Stats      DashboardStats `json:"stats"`
	Charts     Charts         `json:"charts"`
	TopThreats []TopThreat    `json:"top_threats"`
	Notices    []Notice       `json:"notices"`
	RefreshSeq uint64         `json:"refresh_seq"`
	LastSource string         `json:"locations_source,omitempty"`
}
