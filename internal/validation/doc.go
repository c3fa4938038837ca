// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the push-payload decoder and the
// HTTP handlers. It is created once with WithRequiredStructEnabled and two
// custom tags:
//
//   - severity: the value is empty or part of the severity vocabulary
//     (critical, fatal, high, error, medium, warn, warning, low, info,
//     debug, success, unknown), case-insensitive
//   - loglevel: the value is empty or one of DEBUG, INFO, WARNING, WARN,
//     ERROR, CRITICAL, case-insensitive
//
// # Usage
//
//	type ScanProgress struct {
//	    Progress float64 `validate:"gte=0,lte=100"`
//	    Severity string  `validate:"severity"`
//	}
//
//	if verr := validation.ValidateStruct(&p); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// # Error Messages
//
//	required   -> "SourceIP is required"
//	latitude   -> "Lat must be a valid latitude (-90 to 90)"
//	lte=100    -> "Progress must be less than or equal to 100"
//	oneof=a b  -> "Chart must be one of: a b"
//
// # Thread Safety
//
// GetValidator and ValidateStruct are safe for concurrent use.
package validation
