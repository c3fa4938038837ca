// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package payload

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/threattrace/internal/models"
	"github.com/tomtom215/threattrace/internal/validation"
)

var jsonNull = []byte("null")

// Decode turns a raw push message into its Payload variant. Missing keys
// default to empty values; a payload that cannot be decoded or fails
// validation returns a *DecodeError.
func Decode(event string, data []byte) (Payload, error) {
	data = bytes.TrimSpace(data)
	empty := len(data) == 0 || bytes.Equal(data, jsonNull)
	if empty {
		data = []byte("{}")
	}

	var (
		p   Payload
		err error
	)
	switch event {
	case EventStatsUpdate:
		p, err = decodeStats(data)
	case EventThreatLocation:
		p, err = decodeLocation(data)
	case EventActivityUpdate:
		if empty {
			return ActivityUpdate{}, nil
		}
		p, err = decodeActivity(data)
	case EventScanProgress:
		p, err = decodeScan(data)
	case EventNewAlert:
		p, err = decodeAlert(data, AlertNew)
	case EventTamperAlert:
		p, err = decodeAlert(data, AlertTamper)
	case EventRansomwareAlert:
		p, err = decodeAlert(data, AlertRansomware)
	case EventSystemLog:
		p, err = decodeSystemLog(data)
	case EventChartUpdate:
		p, err = decodeChart(data)
	default:
		return nil, &DecodeError{Event: event, Err: ErrUnknownEvent}
	}
	if err != nil {
		return nil, &DecodeError{Event: event, Err: err}
	}
	return p, nil
}

func validate(v any) error {
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr
	}
	return nil
}

// decodeStats accepts {"stats": {...}} or a flat counter map. Members that
// are not scalars are skipped.
func decodeStats(data []byte) (Payload, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	if inner, ok := raw["stats"]; ok && len(raw) == 1 {
		inner = bytes.TrimSpace(inner)
		if len(inner) > 0 && inner[0] == '{' {
			raw = nil
			if err := json.Unmarshal(inner, &raw); err != nil {
				return nil, fmt.Errorf("stats: %w", err)
			}
		}
	}

	update := StatsUpdate{Patch: make(models.StatsPatch, len(raw))}
	for name, msg := range raw {
		msg = bytes.TrimSpace(msg)
		if len(msg) == 0 || bytes.Equal(msg, jsonNull) {
			update.Patch[name] = nil
			continue
		}
		var v models.StatValue
		if err := json.Unmarshal(msg, &v); err != nil {
			update.Skipped = append(update.Skipped, name)
			continue
		}
		update.Patch.Set(name, v)
	}
	sort.Strings(update.Skipped)
	return update, nil
}

func decodeLocation(data []byte) (Payload, error) {
	var w locationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if err := validate(&w); err != nil {
		return nil, err
	}

	point := models.GeoPoint{
		Lat:       *w.Lat,
		Lng:       *w.Lng,
		Severity:  models.ParseSeverity(w.Severity),
		Count:     w.Count,
		ID:        string(w.ID),
		EventID:   string(w.EventID),
		City:      w.City,
		Country:   w.Country,
		Type:      w.Type,
		Timestamp: string(w.Timestamp),
	}
	if point.Count < 1 {
		point.Count = 1
	}

	loc := ThreatLocation{Point: point}
	if w.Message != "" {
		ev := models.Event{
			ID:        point.CorrelationID(),
			Timestamp: point.Timestamp,
			Type:      models.EventTypeAlert,
			Severity:  point.Severity,
			Message:   w.Message,
			Source:    w.Source,
			Location: &models.Location{
				Lat:     point.Lat,
				Lng:     point.Lng,
				City:    point.City,
				Country: point.Country,
			},
		}
		if w.Type != "" {
			ev.Details = map[string]any{"threat_type": w.Type}
		}
		loc.Event = &ev
	}
	return loc, nil
}

// decodeActivity accepts a single event object or {"activities": [...]}.
func decodeActivity(data []byte) (Payload, error) {
	if data[0] == '[' {
		var list []eventWire
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return activityFrom(list), nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if _, ok := probe["activities"]; ok {
		var batch activityBatchWire
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, err
		}
		return activityFrom(batch.Activities), nil
	}

	var w eventWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return ActivityUpdate{Events: []models.Event{w.toEvent()}}, nil
}

func activityFrom(list []eventWire) ActivityUpdate {
	out := ActivityUpdate{Events: make([]models.Event, 0, len(list))}
	for i := range list {
		out.Events = append(out.Events, list[i].toEvent())
	}
	return out
}

func decodeScan(data []byte) (Payload, error) {
	var w scanWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if err := validate(&w); err != nil {
		return nil, err
	}
	status := w.Status
	if status == "" {
		status = "running"
		if w.Progress >= 100 {
			status = "completed"
		}
	}
	return ScanProgress{
		ScanID:    string(w.ScanID),
		File:      w.File,
		Progress:  w.Progress,
		Status:    status,
		Timestamp: string(w.Timestamp),
	}, nil
}

// Default severities when an alert carries none.
var alertDefaultSeverity = map[AlertKind]models.Severity{
	AlertNew:        models.SeverityMedium,
	AlertTamper:     models.SeverityCritical,
	AlertRansomware: models.SeverityCritical,
}

func decodeAlert(data []byte, kind AlertKind) (Payload, error) {
	var w alertWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	sev := alertDefaultSeverity[kind]
	if strings.TrimSpace(w.Severity) != "" {
		sev = models.ParseSeverity(w.Severity)
	}
	source := w.Source
	if source == "" && kind == AlertTamper {
		source = "integrity-monitor"
	}
	return Alert{
		Kind:      kind,
		ID:        string(w.ID),
		Title:     w.Title,
		Message:   w.Message,
		Severity:  sev,
		Source:    source,
		Timestamp: string(w.Timestamp),
		FilePath:  w.FilePath,
		LastHash:  w.LastHash,
	}, nil
}

func decodeSystemLog(data []byte) (Payload, error) {
	var w systemLogWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if err := validate(&w); err != nil {
		return nil, err
	}
	level := strings.ToUpper(strings.TrimSpace(w.Level))
	if level == "" {
		level = "INFO"
	}
	return SystemLog{
		ID:        string(w.ID),
		Timestamp: string(w.Timestamp),
		Level:     level,
		Source:    w.Source,
		Message:   w.Message,
	}, nil
}

func decodeChart(data []byte) (Payload, error) {
	var w chartWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if err := validate(&w); err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(w.Data)
	if len(body) == 0 || bytes.Equal(body, jsonNull) {
		return nil, fmt.Errorf("chart %s: missing data", w.Chart)
	}

	update := ChartUpdate{Chart: w.Chart}
	switch w.Chart {
	case ChartTrends:
		var tp models.TrendPoint
		if err := json.Unmarshal(body, &tp); err != nil {
			return nil, fmt.Errorf("chart trends: %w", err)
		}
		update.Trend = &tp
	case ChartTypes:
		var types []models.ThreatTypeCount
		if err := json.Unmarshal(body, &types); err != nil {
			return nil, fmt.Errorf("chart types: %w", err)
		}
		update.Types = types
	case ChartSeverity:
		var sb models.SeverityBreakdown
		if err := json.Unmarshal(body, &sb); err != nil {
			return nil, fmt.Errorf("chart severity: %w", err)
		}
		update.Severity = &sb
	}
	return update, nil
}
