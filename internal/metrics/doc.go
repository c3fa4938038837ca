// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

/*
Package metrics provides the Prometheus collectors exposed at /metrics.

# Overview

  - Upstream REST latency and results per endpoint
  - Refresh outcomes (applied, failed, stale, unmounted) and which location
    source answered
  - Push messages received per transport and event, drops by reason,
    connection state and reconnects
  - Activity feed and map sizes, duplicate inserts, notices raised
  - Circuit breaker state per upstream endpoint
  - Downstream WebSocket clients and API requests

# Example Queries

	# refresh failure ratio
	sum(rate(threattrace_refresh_total{outcome="failed"}[5m]))
	  / sum(rate(threattrace_refresh_total[5m]))

	# push messages dropped by decode errors
	sum by (event) (rate(threattrace_push_messages_dropped_total{reason="decode"}[5m]))

Collectors are registered on the default registry through promauto.
*/
package metrics
