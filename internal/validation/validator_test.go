// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type probe struct {
	SourceIP string  `validate:"required,ip"`
	Lat      float64 `validate:"latitude"`
	Progress float64 `validate:"gte=0,lte=100"`
	Severity string  `validate:"severity"`
	Level    string  `validate:"loglevel"`
	Chart    string  `validate:"omitempty,oneof=trends types severity"`
}

func validProbe() probe {
	return probe{SourceIP: "203.0.113.7", Lat: 51.5, Progress: 40, Severity: "High", Level: "warning"}
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*probe)
	}{
		{"baseline", func(*probe) {}},
		{"empty severity", func(p *probe) { p.Severity = "" }},
		{"severity alias", func(p *probe) { p.Severity = "fatal" }},
		{"empty level", func(p *probe) { p.Level = "" }},
		{"progress bounds", func(p *probe) { p.Progress = 100 }},
		{"ipv6", func(p *probe) { p.SourceIP = "2001:db8::1" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validProbe()
			tt.mutate(&p)
			if err := ValidateStruct(&p); err != nil {
				t.Errorf("ValidateStruct() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*probe)
		wantField string
		wantTag   string
	}{
		{"missing ip", func(p *probe) { p.SourceIP = "" }, "SourceIP", "required"},
		{"bad ip", func(p *probe) { p.SourceIP = "not-an-ip" }, "SourceIP", "ip"},
		{"latitude", func(p *probe) { p.Lat = 91 }, "Lat", "latitude"},
		{"progress high", func(p *probe) { p.Progress = 101 }, "Progress", "lte"},
		{"progress low", func(p *probe) { p.Progress = -1 }, "Progress", "gte"},
		{"severity", func(p *probe) { p.Severity = "apocalyptic" }, "Severity", "severity"},
		{"level", func(p *probe) { p.Level = "TRACE" }, "Level", "loglevel"},
		{"chart", func(p *probe) { p.Chart = "pie" }, "Chart", "oneof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validProbe()
			tt.mutate(&p)

			err := ValidateStruct(&p)
			if err == nil {
				t.Fatal("ValidateStruct() should have returned an error")
			}
			found := false
			for _, e := range err.Errors() {
				if e.Field() == tt.wantField && e.Tag() == tt.wantTag {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s/%s, got %v", tt.wantField, tt.wantTag, err.Errors())
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	t.Run("single", func(t *testing.T) {
		p := validProbe()
		p.Progress = 150
		apiErr := ValidateStruct(&p).ToAPIError()
		if apiErr.Code != "VALIDATION_ERROR" {
			t.Errorf("Code = %s", apiErr.Code)
		}
		if apiErr.Message != "Progress must be less than or equal to 100" {
			t.Errorf("Message = %q", apiErr.Message)
		}
		if apiErr.Details["field"] != "Progress" {
			t.Errorf("Details = %v", apiErr.Details)
		}
	})

	t.Run("multiple", func(t *testing.T) {
		p := validProbe()
		p.SourceIP = ""
		p.Lat = -100
		apiErr := ValidateStruct(&p).ToAPIError()
		if !strings.Contains(apiErr.Message, "SourceIP") || !strings.Contains(apiErr.Message, "Lat") {
			t.Errorf("Message = %q, want both fields", apiErr.Message)
		}
		fields, ok := apiErr.Details["fields"].([]map[string]interface{})
		if !ok || len(fields) != 2 {
			t.Errorf("Details[fields] = %v", apiErr.Details["fields"])
		}
	})

	t.Run("empty", func(t *testing.T) {
		apiErr := (&RequestValidationError{}).ToAPIError()
		if apiErr.Message != "Validation failed" {
			t.Errorf("Message = %q", apiErr.Message)
		}
	})
}

func TestValidateStruct_UsesJSONNames(t *testing.T) {
	t.Parallel()

	type wire struct {
		Lat    *float64 `json:"lat,omitempty" validate:"required,latitude"`
		Hidden string   `json:"-" validate:"required"`
	}
	err := ValidateStruct(&wire{})
	if err == nil {
		t.Fatal("expected errors")
	}
	got := map[string]bool{}
	for _, e := range err.Errors() {
		got[e.Field()] = true
	}
	if !got["lat"] || !got["Hidden"] {
		t.Errorf("fields = %v, want lat and Hidden", got)
	}
	if !strings.Contains(err.Error(), "lat is required") {
		t.Errorf("Error() = %q", err.Error())
	}
}
