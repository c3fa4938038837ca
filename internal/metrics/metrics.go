// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream REST Metrics
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threattrace_upstream_request_duration_seconds",
			Help:    "Duration of upstream REST requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threattrace_upstream_requests_total",
			Help: "Total number of upstream REST requests",
		},
		[]string{"endpoint", "result"}, // result: "success", "error"
	)

	// Refresh Metrics
	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threattrace_refresh_total",
			Help: "Total number of dashboard refreshes by outcome",
		},
		[]string{"outcome"}, // "applied", "failed", "stale", "unmounted"
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "threattrace_refresh_duration_seconds",
			Help:    "Duration of a full RefreshAll fan-out in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	LocationsSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threattrace_locations_source_total",
			Help: "Which location source satisfied a refresh",
		},
		[]string{"source"}, // "recent", "threat-locations", "none"
	)

	StatsGuarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "threattrace_stats_guarded_total",
			Help: "REST counter values skipped because a newer push update owned the key",
		},
	)

	// Push Channel Metrics
	PushMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threattrace_push_messages_total",
			Help: "Total number of push messages received",
		},
		[]string{"transport", "event"},
	)

	PushMessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threattrace_push_messages_dropped_total",
			Help: "Push messages dropped before reaching a store",
		},
		[]string{"event", "reason"}, // reason: "decode", "filtered", "unmounted"
	)

	PushConnected = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "threattrace_push_connected",
			Help: "Push transport connection state (1=connected)",
		},
		[]string{"transport"},
	)

	PushReconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threattrace_push_reconnects_total",
			Help: "Total number of push transport reconnect attempts",
		},
		[]string{"transport"},
	)

	// Store Metrics
	FeedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threattrace_feed_events_total",
			Help: "Activity feed insert outcomes",
		},
		[]string{"result"}, // "inserted", "duplicate"
	)

	FeedSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "threattrace_feed_entries",
			Help: "Current number of events in the activity feed",
		},
	)

	MapPoints = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "threattrace_map_points",
			Help: "Current number of distinct coordinates on the map",
		},
	)

	NoticesRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threattrace_notices_total",
			Help: "Total number of user-visible notices raised",
		},
		[]string{"severity"},
	)

	// Downstream WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active downstream WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Simulator Metrics
	SimulatedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threattrace_simulated_events_total",
			Help: "Synthetic location events posted to the ingest endpoint",
		},
		[]string{"result"},
	)
)

// RecordUpstreamRequest records one REST call against the upstream API.
func RecordUpstreamRequest(endpoint string, duration time.Duration, err error) {
	UpstreamRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	result := "success"
	if err != nil {
		result = "error"
	}
	UpstreamRequestsTotal.WithLabelValues(endpoint, result).Inc()
}

// RecordRefresh records the outcome of one refresh.
func RecordRefresh(outcome string, duration time.Duration) {
	RefreshTotal.WithLabelValues(outcome).Inc()
	if duration > 0 {
		RefreshDuration.Observe(duration.Seconds())
	}
}

// RecordPushMessage counts a received push message.
func RecordPushMessage(transport, event string) {
	PushMessagesReceived.WithLabelValues(transport, event).Inc()
}

// RecordPushDropped counts a push message that never reached a store.
func RecordPushDropped(event, reason string) {
	PushMessagesDropped.WithLabelValues(event, reason).Inc()
}

// SetPushConnected records the connection state of a push transport.
func SetPushConnected(transport string, connected bool) {
	v := 0.0
	if connected {
		v = 1
	}
	PushConnected.WithLabelValues(transport).Set(v)
}

// RecordFeedInsert counts an activity feed insert outcome.
func RecordFeedInsert(inserted bool) {
	if inserted {
		FeedEvents.WithLabelValues("inserted").Inc()
		return
	}
	FeedEvents.WithLabelValues("duplicate").Inc()
}

// UpdateStoreGauges sets the current store sizes.
func UpdateStoreGauges(feedLen, points int) {
	FeedSize.Set(float64(feedLen))
	MapPoints.Set(float64(points))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
