// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

// Package middleware holds HTTP middleware that is independent of the API
// handlers.
//
//   - Compression gzips JSON responses for clients sending
//     Accept-Encoding: gzip. Writers are pooled. Websocket upgrades are
//     never wrapped.
//   - PerformanceMonitor keeps a ring of recent request samples and serves
//     per-route p50/p95/p99 latency for GET /api/v1/debug/performance.
//
// Request IDs, CORS, rate limiting and Prometheus metrics live in
// internal/api, built on chi, go-chi/cors and go-chi/httprate.
package middleware
