// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestParseSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected Severity
	}{
		{"critical", SeverityCritical},
		{"CRITICAL", SeverityCritical},
		{"fatal", SeverityCritical},
		{"high", SeverityHigh},
		{"error", SeverityHigh},
		{"medium", SeverityMedium},
		{"Warning", SeverityMedium},
		{"warn", SeverityMedium},
		{"low", SeverityLow},
		{"info", SeverityInfo},
		{"debug", SeverityInfo},
		{"", SeverityUnknown},
		{"bogus", SeverityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := ParseSeverity(tt.input); got != tt.expected {
				t.Errorf("ParseSeverity(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSeverityRankOrdering(t *testing.T) {
	t.Parallel()

	ordered := []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo, SeverityUnknown}
	for i := 0; i < len(ordered)-1; i++ {
		if !ordered[i].Outranks(ordered[i+1]) {
			t.Errorf("%q should outrank %q", ordered[i], ordered[i+1])
		}
		if ordered[i+1].Outranks(ordered[i]) {
			t.Errorf("%q should not outrank %q", ordered[i+1], ordered[i])
		}
	}
	if Severity("nonsense").Outranks(SeverityUnknown) {
		t.Error("unrecognized severity should rank with unknown")
	}
}

func TestParseEventType(t *testing.T) {
	t.Parallel()

	cases := map[string]EventType{
		"alert":      EventTypeAlert,
		"SCAN":       EventTypeScan,
		"log":        EventTypeLog,
		"tamper":     EventTypeAudit,
		"audit":      EventTypeAudit,
		"ransomware": EventTypeRansomware,
		"":           EventTypeEvent,
		"whatever":   EventTypeEvent,
	}
	for in, want := range cases {
		if got := ParseEventType(in); got != want {
			t.Errorf("ParseEventType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEventDisplayMessage(t *testing.T) {
	t.Parallel()

	withMsg := Event{Message: "disk full"}
	if got := withMsg.DisplayMessage(); got != "disk full" {
		t.Errorf("DisplayMessage() = %q, want %q", got, "disk full")
	}

	withName := Event{Details: map[string]any{"name": "Zeus Banking Trojan"}}
	if got := withName.DisplayMessage(); got != "Zeus Banking Trojan" {
		t.Errorf("DisplayMessage() = %q, want name from details", got)
	}

	bare := Event{}
	if got := bare.DisplayMessage(); got != placeholderMessage {
		t.Errorf("DisplayMessage() = %q, want placeholder", got)
	}
}

func TestEventCloneDoesNotShareDetails(t *testing.T) {
	t.Parallel()

	orig := Event{ID: "e1", Details: map[string]any{"k": "v"}, Location: &Location{Lat: 1, Lng: 2}}
	cp := orig.Clone()
	cp.Details["k"] = "changed"
	cp.Location.Lat = 99

	if orig.Details["k"] != "v" {
		t.Error("clone shares Details map with original")
	}
	if orig.Location.Lat != 1 {
		t.Error("clone shares Location with original")
	}
}

func TestSortByTimestamp(t *testing.T) {
	t.Parallel()

	events := []Event{
		{ID: "old", Timestamp: "2026-01-01T10:00:00Z"},
		{ID: "none"},
		{ID: "new", Timestamp: "2026-01-01T12:00:00Z"},
		{ID: "naive", Timestamp: "2026-01-01T11:00:00.123456"},
	}
	SortByTimestamp(events)

	want := []string{"new", "naive", "old", "none"}
	for i, id := range want {
		if events[i].ID != id {
			t.Fatalf("position %d = %q, want %q (order %v)", i, events[i].ID, id, ids(events))
		}
	}
}

func ids(events []Event) []string {
	out := make([]string, len(events))
	for i := range events {
		out[i] = events[i].ID
	}
	return out
}

func TestStatValueJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantText bool
		wantStr  string
	}{
		{"integer", `42`, false, "42"},
		{"float", `0.5`, false, "0.5"},
		{"numeric string is coerced", `"17"`, false, "17"},
		{"percentage stays text", `"99.97%"`, true, "99.97%"},
		{"duration stays text", `"1.25s"`, true, "1.25s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var v StatValue
			if err := json.Unmarshal([]byte(tt.input), &v); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.input, err)
			}
			if v.IsText() != tt.wantText {
				t.Errorf("IsText() = %v, want %v", v.IsText(), tt.wantText)
			}
			if v.String() != tt.wantStr {
				t.Errorf("String() = %q, want %q", v.String(), tt.wantStr)
			}
		})
	}
}

func TestStatValueRejectsNonScalars(t *testing.T) {
	t.Parallel()

	for _, input := range []string{`true`, `{"a":1}`, `[1]`} {
		var v StatValue
		if err := json.Unmarshal([]byte(input), &v); err == nil {
			t.Errorf("Unmarshal(%s) expected error", input)
		}
	}
}

func TestStatsPatchKeepsNullAsNil(t *testing.T) {
	t.Parallel()

	var p StatsPatch
	if err := json.Unmarshal([]byte(`{"a": 1, "b": null, "c": "99%"}`), &p); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(p) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(p))
	}
	if p["b"] != nil {
		t.Error("null member should decode to nil entry")
	}
	if f, ok := p["a"].Float(); !ok || f != 1 {
		t.Errorf("a = %v, want 1", p["a"])
	}
	if p["c"].String() != "99%" {
		t.Errorf("c = %q, want 99%%", p["c"].String())
	}
}

func TestTopThreatAsEvent(t *testing.T) {
	t.Parallel()

	tt := TopThreat{ID: "THR-1", Name: "Mirai Botnet", Severity: "High", Source: "Network", Timestamp: "10:00:00", Status: "Blocked"}
	ev := tt.AsEvent()
	if ev.ID != "THR-1" || ev.Message != "Mirai Botnet" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.Type != EventTypeAlert {
		t.Errorf("Type = %q, want alert", ev.Type)
	}
	if ev.Severity != SeverityHigh {
		t.Errorf("Severity = %q, want high", ev.Severity)
	}
	if ev.Details["status"] != "Blocked" {
		t.Errorf("status detail missing: %v", ev.Details)
	}
}

func TestNoticeLevelFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sev  Severity
		want NoticeLevel
	}{
		{SeverityCritical, NoticeError},
		{SeverityHigh, NoticeError},
		{SeverityMedium, NoticeWarn},
		{SeverityLow, NoticeInfo},
		{SeverityInfo, NoticeInfo},
		{SeverityUnknown, NoticeInfo},
	}
	for _, tt := range tests {
		if got := NoticeLevelFor(tt.sev); got != tt.want {
			t.Errorf("NoticeLevelFor(%q) = %q, want %q", tt.sev, got, tt.want)
		}
	}
}
