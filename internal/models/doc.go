// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

/*
Package models defines the data structures shared by the reconciler.

Key Components:

  - Event: an activity-feed observation (alert, scan tick, log line, audit alert)
  - GeoPoint: a threat marker coalesced by exact coordinate
  - StatValue, DashboardStats, StatsPatch: counters and partial counter updates
  - TrendPoint, ThreatTypeCount, SeverityBreakdown, TopThreat: chart and panel rows
  - ViewSnapshot: the full reconciled state of one dashboard view
  - APIResponse, APIError, Metadata: the HTTP response envelope

Severity:

Severities form the closed, ordered set
critical > high > medium > low > info > unknown. ParseSeverity folds the log
level vocabulary (error, warning, fatal) onto that set.

Ordering:

Feeds are ordered by arrival, not by event time. SortByTimestamp re-sorts a
snapshot when a caller needs event-time order.

JSON:

All encoding uses github.com/goccy/go-json. StatValue accepts numbers and
strings; numeric strings are coerced to numbers. StatsPatch keeps JSON null
members as nil entries so they can be skipped when merging.
*/
package models
