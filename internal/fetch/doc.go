// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

/*
Package fetch reads dashboard data from the upstream REST API.

Three layers:

  - Client: one method per endpoint. Each response is an envelope object and
    the method decodes a single member of it ("points", "threats", "data" or
    "stats"). A missing or null member yields an empty result.
  - BreakerClient: wraps a Client with one sony/gobreaker circuit breaker per
    endpoint, so a failing endpoint is shed without affecting the others.
  - Coordinator: RefreshAll issues every request in parallel. Locations use a
    fallback chain (recent, then threat-locations, then empty) that never
    fails the refresh. The remaining five requests share one joint wait; if
    any fails, RefreshAll returns a *RefreshError naming every failed
    endpoint and no result.

There are no retries inside a refresh. The periodic refresh timer is the
retry mechanism.
*/
package fetch
