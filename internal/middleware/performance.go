// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/threattrace/internal/logging"
)

// RequestSample is one observed API request.
type RequestSample struct {
	Route      string    `json:"route"`
	Method     string    `json:"method"`
	DurationMS int64     `json:"duration_ms"`
	StatusCode int       `json:"status_code"`
	Timestamp  time.Time `json:"timestamp"`
}

// RouteStats aggregates the retained samples of one route.
type RouteStats struct {
	Route        string  `json:"route"`
	RequestCount int64   `json:"request_count"`
	ErrorCount   int64   `json:"error_count"`
	AvgMS        float64 `json:"avg_ms"`
	P50MS        int64   `json:"p50_ms"`
	P95MS        int64   `json:"p95_ms"`
	P99MS        int64   `json:"p99_ms"`
	MaxMS        int64   `json:"max_ms"`
}

// PerformanceMonitor keeps the last N request samples in a ring and
// reports per-route latency percentiles. Routes are chi patterns, so
// /api/v1/notices/{id} is one route however many ids are dismissed.
type PerformanceMonitor struct {
	mu   sync.RWMutex
	ring []RequestSample
	next int
	full bool
	slow time.Duration
}

// NewPerformanceMonitor retains up to capacity samples and logs requests
// slower than slow. slow <= 0 disables the log.
func NewPerformanceMonitor(capacity int, slow time.Duration) *PerformanceMonitor {
	if capacity <= 0 {
		capacity = 1000
	}
	return &PerformanceMonitor{
		ring: make([]RequestSample, capacity),
		slow: slow,
	}
}

// Record adds a sample, evicting the oldest when full.
func (pm *PerformanceMonitor) Record(s RequestSample) {
	pm.mu.Lock()
	pm.ring[pm.next] = s
	pm.next = (pm.next + 1) % len(pm.ring)
	if pm.next == 0 {
		pm.full = true
	}
	pm.mu.Unlock()
}

// samples returns retained samples oldest first. Callers hold mu.
func (pm *PerformanceMonitor) samples() []RequestSample {
	if !pm.full {
		return append([]RequestSample(nil), pm.ring[:pm.next]...)
	}
	out := make([]RequestSample, 0, len(pm.ring))
	out = append(out, pm.ring[pm.next:]...)
	return append(out, pm.ring[:pm.next]...)
}

// Recent returns up to n samples, newest first.
func (pm *PerformanceMonitor) Recent(n int) []RequestSample {
	pm.mu.RLock()
	all := pm.samples()
	pm.mu.RUnlock()

	if n > len(all) || n <= 0 {
		n = len(all)
	}
	out := make([]RequestSample, n)
	for i := 0; i < n; i++ {
		out[i] = all[len(all)-1-i]
	}
	return out
}

// Stats aggregates retained samples per method and route, busiest first.
func (pm *PerformanceMonitor) Stats() []RouteStats {
	pm.mu.RLock()
	all := pm.samples()
	pm.mu.RUnlock()

	type acc struct {
		durations []int64
		errors    int64
	}
	byRoute := make(map[string]*acc)
	for _, s := range all {
		key := s.Method + " " + s.Route
		a := byRoute[key]
		if a == nil {
			a = &acc{}
			byRoute[key] = a
		}
		a.durations = append(a.durations, s.DurationMS)
		if s.StatusCode >= http.StatusInternalServerError {
			a.errors++
		}
	}

	stats := make([]RouteStats, 0, len(byRoute))
	for route, a := range byRoute {
		sort.Slice(a.durations, func(i, j int) bool { return a.durations[i] < a.durations[j] })
		var sum int64
		for _, d := range a.durations {
			sum += d
		}
		n := len(a.durations)
		stats = append(stats, RouteStats{
			Route:        route,
			RequestCount: int64(n),
			ErrorCount:   a.errors,
			AvgMS:        float64(sum) / float64(n),
			P50MS:        percentile(a.durations, 0.50),
			P95MS:        percentile(a.durations, 0.95),
			P99MS:        percentile(a.durations, 0.99),
			MaxMS:        a.durations[n-1],
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Route < stats[j].Route
	})
	return stats
}

// Middleware records every request passing through it.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		elapsed := time.Since(start)
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		pm.Record(RequestSample{
			Route:      route,
			Method:     r.Method,
			DurationMS: elapsed.Milliseconds(),
			StatusCode: rw.statusCode,
			Timestamp:  start,
		})

		if pm.slow > 0 && elapsed > pm.slow {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("route", route).
				Dur("duration", elapsed).
				Dur("threshold", pm.slow).
				Msg("Slow request detected")
		}
	})
}

func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
