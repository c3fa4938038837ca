// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

// Package simulate produces synthetic threat location events and posts them
// to the upstream ingest endpoint, which republishes them as threat_location
// pushes. It exists to exercise a dashboard end to end without live sensors.
//
// Events are generated with gofakeit and paced with a rate.Limiter. Every
// event carries meta.simulated=true so upstream consumers can filter them.
package simulate
