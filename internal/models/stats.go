// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package models

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Well-known dashboard counter names.
const (
	StatTotalThreatsToday = "total_threats_today"
	StatBlockedAttacks    = "blocked_attacks"
	StatActiveThreats     = "active_threats"
	StatFilesScanned      = "files_scanned"
	StatIntegrityChecks   = "integrity_checks"
	StatCountriesAffected = "countries_affected"
	StatAvgResponseTime   = "avg_response_time"
	StatUptime            = "uptime"
)

// StatValue is a single dashboard counter. The upstream API mixes numeric
// counters with preformatted text such as "99.97%", so a value is either a
// number or a string.
type StatValue struct {
	num    float64
	text   string
	isText bool
}

// Number returns a numeric StatValue.
func Number(f float64) StatValue { return StatValue{num: f} }

// Text returns a textual StatValue.
func Text(s string) StatValue { return StatValue{text: s, isText: true} }

// Float returns the numeric value and whether the value is numeric.
func (v StatValue) Float() (float64, bool) {
	if v.isText {
		return 0, false
	}
	return v.num, true
}

// IsText reports whether the value holds text.
func (v StatValue) IsText() bool { return v.isText }

// String renders the value for display.
func (v StatValue) String() string {
	if v.isText {
		return v.text
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}

// MarshalJSON implements json.Marshaler.
func (v StatValue) MarshalJSON() ([]byte, error) {
	if v.isText {
		return json.Marshal(v.text)
	}
	return []byte(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler. Numeric strings are coerced to
// numbers; other strings stay text. null, booleans and composites are
// rejected.
func (v *StatValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("stat value: empty input")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("stat value: %w", err)
		}
		*v = coerceText(s)
		return nil
	case 'n', 't', 'f', '{', '[':
		return fmt.Errorf("stat value: unsupported JSON value %s", data)
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("stat value: %w", err)
		}
		*v = Number(f)
		return nil
	}
}

func coerceText(s string) StatValue {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return Number(f)
	}
	return Text(s)
}

// DashboardStats is the full set of known counters.
type DashboardStats map[string]StatValue

// Clone returns an independent copy of s.
func (s DashboardStats) Clone() DashboardStats {
	out := make(DashboardStats, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// StatsPatch is a partial counter update. A nil entry means the field was
// present but undefined (JSON null) and must not overwrite a known value.
type StatsPatch map[string]*StatValue

// UnmarshalJSON decodes a patch, keeping null members as nil entries.
func (p *StatsPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("stats patch: %w", err)
	}
	out := make(StatsPatch, len(raw))
	for k, msg := range raw {
		if len(bytes.TrimSpace(msg)) == 0 || bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
			out[k] = nil
			continue
		}
		var v StatValue
		if err := json.Unmarshal(msg, &v); err != nil {
			return fmt.Errorf("stats patch field %q: %w", k, err)
		}
		out[k] = &v
	}
	*p = out
	return nil
}

// Set records a defined value for name.
func (p StatsPatch) Set(name string, v StatValue) {
	p[name] = &v
}
