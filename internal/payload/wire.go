// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package payload

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/threattrace/internal/models"
)

// looseString accepts a JSON string, number or boolean. null decodes to "".
// Upstream producers are inconsistent about ID and timestamp types.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	case data[0] == '{', data[0] == '[':
		return fmt.Errorf("expected scalar, got %s", data[:1])
	default:
		*s = looseString(data)
		return nil
	}
}

// looseDetails accepts an object, or wraps any other value. A string becomes
// {"summary": s}.
type looseDetails map[string]any

func (d *looseDetails) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = nil
		return nil
	}
	if data[0] == '{' {
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*d = m
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if s, ok := v.(string); ok {
		*d = looseDetails{"summary": s}
		return nil
	}
	*d = looseDetails{"value": v}
	return nil
}

type eventWire struct {
	ID        looseString      `json:"id"`
	Timestamp looseString      `json:"timestamp"`
	Type      string           `json:"type"`
	Severity  string           `json:"severity"`
	Message   string           `json:"message"`
	Title     string           `json:"title"`
	Source    string           `json:"source"`
	Details   looseDetails     `json:"details"`
	Location  *models.Location `json:"location"`
}

func (w *eventWire) toEvent() models.Event {
	ev := models.Event{
		ID:        string(w.ID),
		Timestamp: string(w.Timestamp),
		Type:      models.ParseEventType(w.Type),
		Severity:  models.ParseSeverity(w.Severity),
		Message:   w.Message,
		Source:    w.Source,
		Location:  w.Location,
	}
	if len(w.Details) > 0 {
		ev.Details = map[string]any(w.Details)
	}
	if ev.Message == "" && w.Title != "" {
		ev.Message = w.Title
	}
	return ev
}

type activityBatchWire struct {
	Activities []eventWire `json:"activities"`
}

type locationWire struct {
	ID        looseString `json:"id"`
	EventID   looseString `json:"event_id"`
	Lat       *float64    `json:"lat" validate:"required,latitude"`
	Lng       *float64    `json:"lng" validate:"required,longitude"`
	City      string      `json:"city"`
	Country   string      `json:"country"`
	Severity  string      `json:"severity"`
	Type      string      `json:"type"`
	Count     int         `json:"count" validate:"gte=0"`
	Timestamp looseString `json:"timestamp"`
	Message   string      `json:"message"`
	Source    string      `json:"source"`
}

type scanWire struct {
	ScanID    looseString `json:"scan_id"`
	File      string      `json:"file"`
	Progress  float64     `json:"progress" validate:"gte=0,lte=100"`
	Status    string      `json:"status"`
	Timestamp looseString `json:"timestamp"`
}

type alertWire struct {
	ID        looseString `json:"id"`
	Title     string      `json:"title"`
	Message   string      `json:"message"`
	Severity  string      `json:"severity"`
	Source    string      `json:"source"`
	Timestamp looseString `json:"timestamp"`
	FilePath  string      `json:"file_path"`
	LastHash  string      `json:"last_hash"`
}

type systemLogWire struct {
	ID        looseString `json:"id"`
	Timestamp looseString `json:"timestamp"`
	Level     string      `json:"level" validate:"loglevel"`
	Source    string      `json:"source"`
	Message   string      `json:"message"`
}

type chartWire struct {
	Chart string          `json:"chart" validate:"required,oneof=trends types severity"`
	Data  json.RawMessage `json:"data"`
}
