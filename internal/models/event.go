// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package models

import (
	"sort"
	"strings"
	"time"
)

// EventType classifies an activity-feed event.
type EventType string

// Event types accepted by the activity feed.
const (
	EventTypeAlert      EventType = "alert"
	EventTypeScan       EventType = "scan"
	EventTypeLog        EventType = "log"
	EventTypeAudit      EventType = "audit"
	EventTypeRansomware EventType = "ransomware"
	EventTypeEvent      EventType = "event"
)

// ParseEventType normalizes a free-form type string. Anything outside the
// closed set maps to EventTypeEvent.
func ParseEventType(s string) EventType {
	switch EventType(strings.ToLower(strings.TrimSpace(s))) {
	case EventTypeAlert:
		return EventTypeAlert
	case EventTypeScan:
		return EventTypeScan
	case EventTypeLog:
		return EventTypeLog
	case EventTypeAudit, "tamper":
		return EventTypeAudit
	case EventTypeRansomware:
		return EventTypeRansomware
	default:
		return EventTypeEvent
	}
}

// Location is the optional geographic context of an event.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	City    string  `json:"city,omitempty"`
	Country string  `json:"country,omitempty"`
}

// Event is a discrete observation shown in the activity feed: an alert, a
// scan-progress tick, a system-log line or an audit/tamper alert.
//
// Events are immutable once inserted into a feed. Callers that need to
// change one must build a new value.
type Event struct {
	ID        string         `json:"id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	Type      EventType      `json:"type"`
	Severity  Severity       `json:"severity"`
	Message   string         `json:"message,omitempty"`
	Source    string         `json:"source,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Location  *Location      `json:"location,omitempty"`
}

// placeholderMessage is what the feed shows for events that carry neither a
// message nor any details.
const placeholderMessage = "Security Event"

// DisplayMessage returns the text a presentation layer should render for the
// event. Malformed events still get a line.
func (e *Event) DisplayMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if name, ok := e.Details["name"].(string); ok && name != "" {
		return name
	}
	return placeholderMessage
}

// Clone returns a copy whose Details map and Location are not shared with e.
func (e *Event) Clone() Event {
	out := *e
	if e.Details != nil {
		out.Details = make(map[string]any, len(e.Details))
		for k, v := range e.Details {
			out.Details[k] = v
		}
	}
	if e.Location != nil {
		loc := *e.Location
		out.Location = &loc
	}
	return out
}

// ParsedTime parses Timestamp as RFC 3339, falling back to the naive ISO-8601
// form the upstream API emits without a zone. The zero time is returned when
// neither form matches.
func (e *Event) ParsedTime() time.Time {
	if e.Timestamp == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, e.Timestamp); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SortByTimestamp orders events newest first by event time. Feeds keep
// arrival order, so callers that need causal order re-sort a snapshot with
// this. Events without a parseable timestamp sort last, keeping their
// relative order.
func SortByTimestamp(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, tj := events[i].ParsedTime(), events[j].ParsedTime()
		if ti.IsZero() != tj.IsZero() {
			return !ti.IsZero()
		}
		return ti.After(tj)
	})
}
