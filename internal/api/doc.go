// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

/*
Package api serves the reconciled dashboard view over HTTP using chi.

Routes:

	GET    /api/v1/health            overall status (always 200)
	GET    /api/v1/health/live       liveness
	GET    /api/v1/health/ready      503 until the view is mounted
	GET    /api/v1/snapshot          complete models.ViewSnapshot
	GET    /api/v1/feed              activity feed (?limit=N, ?order=time)
	GET    /api/v1/feed/stats        feed insert/duplicate/eviction counters
	GET    /api/v1/points            aggregated map points
	GET    /api/v1/stats             dashboard counters
	GET    /api/v1/charts            trends, types and severity
	GET    /api/v1/top-threats       active threats
	GET    /api/v1/notices           pending notices
	DELETE /api/v1/notices/{id}      dismiss a notice (204, 404)
	GET    /api/v1/debug/performance per-route latency (?recent=N), 404 when disabled
	POST   /api/v1/refresh           request an immediate refresh (202)
	POST   /api/v1/points/select     {"lat":..,"lng":..} select a point
	DELETE /api/v1/points/select     clear the selection (204)
	GET    /api/v1/ws                websocket change stream
	GET    /metrics                  Prometheus exposition

Every JSON response uses the models.APIResponse envelope. Data endpoints
answer 503 NOT_MOUNTED while the view has no stores, and
metadata.refresh_seq names the last REST refresh applied.

Middleware, outermost first: request ID with logging context, RealIP,
Recoverer, CORS (go-chi/cors), per-IP rate limiting (go-chi/httprate),
security headers, Prometheus request metrics, debug request logging, the
performance monitor and gzip compression (internal/middleware).
*/
package api
