// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package models

import "strings"

// Severity is the threat level attached to events and map points.
type Severity string

// Severity levels, highest first.
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
	SeverityUnknown  Severity = "unknown"
)

// Rank orders severities: critical > high > medium > low > info > unknown.
// Values outside the closed set rank with unknown.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Outranks reports whether s is strictly more severe than other.
func (s Severity) Outranks(other Severity) bool {
	return s.Rank() > other.Rank()
}

// ParseSeverity maps the severity and log-level vocabulary used across the
// upstream services onto the closed Severity set.
//
//	critical, fatal        -> critical
//	high, error            -> high
//	medium, warn, warning  -> medium
//	low                    -> low
//	info, debug, success   -> info
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical", "fatal":
		return SeverityCritical
	case "high", "error":
		return SeverityHigh
	case "medium", "warn", "warning":
		return SeverityMedium
	case "low":
		return SeverityLow
	case "info", "debug", "success":
		return SeverityInfo
	default:
		return SeverityUnknown
	}
}
