// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package payload

import (
	"errors"
	"testing"

	"github.com/tomtom215/threattrace/internal/models"
)

func mustDecode(t *testing.T, event, raw string) Payload {
	t.Helper()
	p, err := Decode(event, []byte(raw))
	if err != nil {
		t.Fatalf("Decode(%s, %s) error = %v", event, raw, err)
	}
	if p.EventName() != event {
		t.Fatalf("EventName() = %s, want %s", p.EventName(), event)
	}
	return p
}

func TestDecode_UnknownEvent(t *testing.T) {
	t.Parallel()

	_, err := Decode("not_an_event", []byte(`{}`))
	if !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("err = %v, want ErrUnknownEvent", err)
	}
	var derr *DecodeError
	if !errors.As(err, &derr) || derr.Event != "not_an_event" {
		t.Errorf("err = %#v, want *DecodeError for not_an_event", err)
	}
}

func TestDecode_Stats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         string
		wantPresent map[string]string
		wantNil     []string
		wantSkipped int
	}{
		{
			name:        "flat map with coercion",
			raw:         `{"files_scanned": 12, "uptime": "99.97%", "blocked_attacks": "42"}`,
			wantPresent: map[string]string{"files_scanned": "12", "uptime": "99.97%", "blocked_attacks": "42"},
		},
		{
			name:        "wrapped",
			raw:         `{"stats": {"active_threats": 3}}`,
			wantPresent: map[string]string{"active_threats": "3"},
		},
		{
			name:        "null member is kept as nil",
			raw:         `{"a": null, "b": 1}`,
			wantPresent: map[string]string{"b": "1"},
			wantNil:     []string{"a"},
		},
		{
			name:        "non-scalar member skipped",
			raw:         `{"a": {"x": 1}, "b": true, "c": 2}`,
			wantPresent: map[string]string{"c": "2"},
			wantSkipped: 2,
		},
		{
			name: "null payload",
			raw:  `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			su := mustDecode(t, EventStatsUpdate, tt.raw).(StatsUpdate)

			for k, want := range tt.wantPresent {
				v := su.Patch[k]
				if v == nil {
					t.Fatalf("%s missing from patch", k)
				}
				if v.String() != want {
					t.Errorf("%s = %s, want %s", k, v, want)
				}
			}
			for _, k := range tt.wantNil {
				v, ok := su.Patch[k]
				if !ok || v != nil {
					t.Errorf("%s = %v (present=%v), want nil entry", k, v, ok)
				}
			}
			if len(su.Skipped) != tt.wantSkipped {
				t.Errorf("Skipped = %v, want %d entries", su.Skipped, tt.wantSkipped)
			}
		})
	}
}

func TestDecode_StatsNumericStringIsNumber(t *testing.T) {
	t.Parallel()

	su := mustDecode(t, EventStatsUpdate, `{"blocked_attacks": "42"}`).(StatsUpdate)
	f, ok := su.Patch["blocked_attacks"].Float()
	if !ok || f != 42 {
		t.Errorf("Float() = %v, %v; want 42, true", f, ok)
	}
}

func TestDecode_ThreatLocation(t *testing.T) {
	t.Parallel()

	raw := `{"id": 17, "event_id": "evt-9", "lat": 40.7, "lng": -74.0, "city": "New York",
		"country": "US", "severity": "HIGH", "type": "brute_force", "count": 1,
		"timestamp": "2026-03-01T10:00:00", "message": "SSH brute force"}`
	tl := mustDecode(t, EventThreatLocation, raw).(ThreatLocation)

	if tl.Point.Lat != 40.7 || tl.Point.Lng != -74.0 {
		t.Errorf("coords = (%v,%v)", tl.Point.Lat, tl.Point.Lng)
	}
	if tl.Point.Severity != models.SeverityHigh {
		t.Errorf("Severity = %s, want high", tl.Point.Severity)
	}
	if tl.Point.ID != "17" {
		t.Errorf("numeric id = %q, want \"17\"", tl.Point.ID)
	}
	if tl.Event == nil {
		t.Fatal("a location with a message should carry a feed event")
	}
	if tl.Event.ID != "evt-9" || tl.Event.Location == nil || tl.Event.Location.City != "New York" {
		t.Errorf("Event = %+v", tl.Event)
	}
}

func TestDecode_ThreatLocationDefaults(t *testing.T) {
	t.Parallel()

	tl := mustDecode(t, EventThreatLocation, `{"lat": 0, "lng": 0}`).(ThreatLocation)
	if tl.Point.Count != 1 {
		t.Errorf("Count = %d, want 1", tl.Point.Count)
	}
	if tl.Point.Severity != models.SeverityUnknown {
		t.Errorf("Severity = %s, want unknown", tl.Point.Severity)
	}
	if tl.Event != nil {
		t.Error("no message means no feed event")
	}
}

func TestDecode_ThreatLocationInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"missing lat", `{"lng": 10}`},
		{"missing lng", `{"lat": 10}`},
		{"lat out of range", `{"lat": 95, "lng": 10}`},
		{"lng out of range", `{"lat": 10, "lng": 181}`},
		{"negative count", `{"lat": 1, "lng": 1, "count": -2}`},
		{"lat wrong type", `{"lat": "north", "lng": 1}`},
		{"not an object", `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(EventThreatLocation, []byte(tt.raw))
			var derr *DecodeError
			if !errors.As(err, &derr) {
				t.Fatalf("err = %v, want *DecodeError", err)
			}
		})
	}
}

func TestDecode_Activity(t *testing.T) {
	t.Parallel()

	t.Run("single with string details", func(t *testing.T) {
		t.Parallel()
		raw := `{"id": "scan-1", "timestamp": "2026-03-01T10:00:00", "type": "scan",
			"severity": "critical", "message": "Scan completed", "details": "Scanned 40 files",
			"source": "Auto Ransomware Scanner"}`
		au := mustDecode(t, EventActivityUpdate, raw).(ActivityUpdate)
		if len(au.Events) != 1 {
			t.Fatalf("len(Events) = %d, want 1", len(au.Events))
		}
		ev := au.Events[0]
		if ev.Type != models.EventTypeScan || ev.Severity != models.SeverityCritical {
			t.Errorf("type/severity = %s/%s", ev.Type, ev.Severity)
		}
		if ev.Details["summary"] != "Scanned 40 files" {
			t.Errorf("Details = %v", ev.Details)
		}
	})

	t.Run("batch keeps order", func(t *testing.T) {
		t.Parallel()
		au := mustDecode(t, EventActivityUpdate, `{"activities": [{"id": "a"}, {"id": "b"}]}`).(ActivityUpdate)
		if len(au.Events) != 2 || au.Events[0].ID != "a" || au.Events[1].ID != "b" {
			t.Errorf("Events = %+v", au.Events)
		}
	})

	t.Run("bare list", func(t *testing.T) {
		t.Parallel()
		au := mustDecode(t, EventActivityUpdate, `[{"id": "x"}]`).(ActivityUpdate)
		if len(au.Events) != 1 {
			t.Errorf("Events = %+v", au.Events)
		}
	})

	t.Run("unknown type and severity default", func(t *testing.T) {
		t.Parallel()
		au := mustDecode(t, EventActivityUpdate, `{"type": "weird", "severity": "spicy"}`).(ActivityUpdate)
		ev := au.Events[0]
		if ev.Type != models.EventTypeEvent || ev.Severity != models.SeverityUnknown {
			t.Errorf("type/severity = %s/%s", ev.Type, ev.Severity)
		}
	})

	t.Run("null payload", func(t *testing.T) {
		t.Parallel()
		au := mustDecode(t, EventActivityUpdate, ``).(ActivityUpdate)
		if len(au.Events) != 0 {
			t.Errorf("Events = %+v, want none", au.Events)
		}
	})
}

func TestDecode_ScanProgress(t *testing.T) {
	t.Parallel()

	sp := mustDecode(t, EventScanProgress, `{"scan_id": "s1", "file": "/tmp/a.bin", "progress": 100}`).(ScanProgress)
	if sp.Status != "completed" {
		t.Errorf("Status = %q, want completed", sp.Status)
	}
	ev := sp.AsEvent()
	if ev.Type != models.EventTypeScan || ev.Severity != models.SeverityInfo {
		t.Errorf("event type/severity = %s/%s", ev.Type, ev.Severity)
	}
	if ev.Message != "Scanning /tmp/a.bin (100%)" {
		t.Errorf("Message = %q", ev.Message)
	}

	if _, err := Decode(EventScanProgress, []byte(`{"progress": 140}`)); err == nil {
		t.Error("progress above 100 should fail validation")
	}
}

func TestDecode_Alerts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		event      string
		raw        string
		wantType   models.EventType
		wantSev    models.Severity
		wantNotice string
	}{
		{
			name:       "new alert with title",
			event:      EventNewAlert,
			raw:        `{"title": "Brute force", "message": "10 failed logins", "severity": "high", "source": "auth"}`,
			wantType:   models.EventTypeAlert,
			wantSev:    models.SeverityHigh,
			wantNotice: "Brute force: 10 failed logins",
		},
		{
			name:       "new alert default severity",
			event:      EventNewAlert,
			raw:        `{"message": "odd"}`,
			wantType:   models.EventTypeAlert,
			wantSev:    models.SeverityMedium,
			wantNotice: "odd",
		},
		{
			name:       "tamper",
			event:      EventTamperAlert,
			raw:        `{"file_path": "/var/log/auth.log", "last_hash": "abc", "timestamp": "2026-03-01T10:00:00", "message": "Tamper detected"}`,
			wantType:   models.EventTypeAudit,
			wantSev:    models.SeverityCritical,
			wantNotice: "Log Tampered: /var/log/auth.log",
		},
		{
			name:       "ransomware",
			event:      EventRansomwareAlert,
			raw:        `{"message": "Encrypted files detected"}`,
			wantType:   models.EventTypeRansomware,
			wantSev:    models.SeverityCritical,
			wantNotice: "Encrypted files detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := mustDecode(t, tt.event, tt.raw).(Alert)
			ev := a.AsEvent()
			if ev.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", ev.Type, tt.wantType)
			}
			if ev.Severity != tt.wantSev {
				t.Errorf("Severity = %s, want %s", ev.Severity, tt.wantSev)
			}
			if got := a.NoticeText(); got != tt.wantNotice {
				t.Errorf("NoticeText() = %q, want %q", got, tt.wantNotice)
			}
		})
	}
}

func TestDecode_SystemLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level    string
		relevant bool
		wantSev  models.Severity
	}{
		{"INFO", false, ""},
		{"debug", false, ""},
		{"", false, ""},
		{"WARNING", true, models.SeverityMedium},
		{"error", true, models.SeverityHigh},
		{"CRITICAL", true, models.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run("level_"+tt.level, func(t *testing.T) {
			t.Parallel()
			raw := `{"id": "l1", "level": "` + tt.level + `", "source": "sshd", "message": "m"}`
			sl := mustDecode(t, EventSystemLog, raw).(SystemLog)
			if sl.Relevant() != tt.relevant {
				t.Fatalf("Relevant() = %v, want %v", sl.Relevant(), tt.relevant)
			}
			if tt.relevant {
				ev := sl.AsEvent()
				if ev.Type != models.EventTypeLog || ev.Severity != tt.wantSev {
					t.Errorf("event = %s/%s, want log/%s", ev.Type, ev.Severity, tt.wantSev)
				}
			}
		})
	}

	if _, err := Decode(EventSystemLog, []byte(`{"level": "TRACE"}`)); err == nil {
		t.Error("unknown log level should fail validation")
	}
}

func TestDecode_ChartUpdate(t *testing.T) {
	t.Parallel()

	tr := mustDecode(t, EventChartUpdate, `{"chart": "trends", "data": {"timestamp": "10:00", "threats": 5, "blocked": 4, "active": 1}}`).(ChartUpdate)
	if tr.Trend == nil || tr.Trend.Threats != 5 {
		t.Errorf("Trend = %+v", tr.Trend)
	}

	ty := mustDecode(t, EventChartUpdate, `{"chart": "types", "data": [{"type": "malware", "count": 3}]}`).(ChartUpdate)
	if len(ty.Types) != 1 || ty.Types[0].Type != "malware" {
		t.Errorf("Types = %+v", ty.Types)
	}

	sv := mustDecode(t, EventChartUpdate, `{"chart": "severity", "data": {"critical": 1, "high": 2}}`).(ChartUpdate)
	if sv.Severity == nil || sv.Severity.High != 2 {
		t.Errorf("Severity = %+v", sv.Severity)
	}

	for _, raw := range []string{`{"chart": "pie", "data": {}}`, `{"chart": "trends"}`, `{"data": {}}`} {
		if _, err := Decode(EventChartUpdate, []byte(raw)); err == nil {
			t.Errorf("Decode(%s) should fail", raw)
		}
	}
}
