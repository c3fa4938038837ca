// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package api

// Error codes carried in models.APIError.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotMounted      = "NOT_MOUNTED"
	CodeNotFound        = "NOT_FOUND"
	CodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	CodeInternal        = "INTERNAL_ERROR"
	CodeUnsupportedType = "UNSUPPORTED_MEDIA_TYPE"
)
