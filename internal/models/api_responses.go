// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package models

import (
	"time"
)

// APIResponse is the envelope every HTTP endpoint of the reconciler returns.
//
// Status field values:
//   - "success": request completed, see Data
//   - "error": request failed, see Error
//
// Example:
//
//	{
//	  "status": "success",
//	  "data": {"feed": [...], "points": [...]},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "refresh_seq": 12}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response bookkeeping. RefreshSeq is the sequence number of
// the last REST refresh applied to the view when the response was built.
type Metadata struct {
	Timestamp  time.Time `json:"timestamp"`
	RefreshSeq uint64    `json:"refresh_seq,omitempty"`
}

// APIError is the structured error body.
//
// Codes used by the reconciler:
//   - VALIDATION_ERROR: invalid request body or parameters
//   - NOT_MOUNTED: the dashboard view is not mounted
//   - RATE_LIMIT_EXCEEDED: too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// LocationIngestRequest is the body accepted by the upstream
// /api/locations/ingest endpoint.
type LocationIngestRequest struct {
	SourceIP  string         `json:"source_ip" validate:"required,ip"`
	EventType string         `json:"event_type" validate:"required"`
	Severity  string         `json:"severity" validate:"required,severity"`
	Source    string         `json:"source,omitempty"`
	Title     string         `json:"title,omitempty"`
	Message   string         `json:"message,omitempty"`
	FailCount int            `json:"fail_count,omitempty" validate:"gte=0"`
	Lat       *float64       `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng       *float64       `json:"lng,omitempty" validate:"omitempty,longitude"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// LocationIngestResponse is the upstream reply to an ingest request.
type LocationIngestResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Event   struct {
		EventID string `json:"event_id"`
	} `json:"event"`
}
