// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/threattrace/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil mw uses the default middleware config.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// Setup builds the HTTP handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// The websocket route sits outside the metrics and logging wrappers,
		// which would hold the hijacked connection's writer.
		r.Get("/ws", router.handler.WebSocket)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(APISecurityHeaders())
			r.Use(PrometheusMetrics)
			r.Use(RequestLogger)
			r.Use(router.handler.perfMiddleware)
			r.Use(middleware.Compression)

			r.Get("/snapshot", router.handler.Snapshot)
			r.Get("/feed", router.handler.Feed)
			r.Get("/feed/stats", router.handler.FeedStats)
			r.Get("/points", router.handler.Points)
			r.Get("/stats", router.handler.Stats)
			r.Get("/charts", router.handler.Charts)
			r.Get("/top-threats", router.handler.TopThreats)
			r.Get("/notices", router.handler.Notices)
			r.Get("/debug/performance", router.handler.Performance)

			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitWrite())
				r.Delete("/notices/{id}", router.handler.DismissNotice)
				r.Post("/refresh", router.handler.Refresh)
				r.Post("/points/select", router.handler.SelectPoint)
				r.Delete("/points/select", router.handler.ClearSelection)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
