// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package config

import "time"

// Config is the complete application configuration.
type Config struct {
	API        APIConfig        `koanf:"api"`
	Push       PushConfig       `koanf:"push"`
	Dashboard  DashboardConfig  `koanf:"dashboard"`
	Breaker    BreakerConfig    `koanf:"breaker"`
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Simulate   SimulateConfig   `koanf:"simulate"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// APIConfig describes the upstream REST API.
type APIConfig struct {
	// BaseURL is the upstream origin, e.g. http://localhost:5000.
	BaseURL string `koanf:"base_url"`

	// Token is sent as a bearer token when set.
	Token string `koanf:"token"`

	// Timeout bounds each upstream request.
	// Default: 15s
	Timeout time.Duration `koanf:"timeout"`

	// LocationHours is the look-back window for recent locations, 1..168.
	// Default: 24
	LocationHours int `koanf:"location_hours"`
}

// Push transports.
const (
	TransportWebSocket = "websocket"
	TransportNATS      = "nats"
	TransportNone      = "none"
)

// PushConfig selects and configures the push channel.
type PushConfig struct {
	// Transport is websocket, nats or none.
	// Default: websocket
	Transport string `koanf:"transport"`

	WebSocket WebSocketConfig `koanf:"websocket"`
	NATS      NATSConfig      `koanf:"nats"`
}

// WebSocketConfig configures the websocket push client.
type WebSocketConfig struct {
	// URL of the push endpoint, e.g. ws://localhost:5000/ws.
	URL string `koanf:"url"`

	ReconnectMin time.Duration `koanf:"reconnect_min"`
	ReconnectMax time.Duration `koanf:"reconnect_max"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	PingInterval time.Duration `koanf:"ping_interval"`
}

// NATSConfig configures the NATS push client and the optional embedded
// server.
type NATSConfig struct {
	URL           string        `koanf:"url"`
	SubjectPrefix string        `koanf:"subject_prefix"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`

	// Embedded starts an in-process NATS server and connects to it,
	// ignoring URL.
	Embedded     bool   `koanf:"embedded"`
	EmbeddedHost string `koanf:"embedded_host"`
	EmbeddedPort int    `koanf:"embedded_port"`
}

// DashboardConfig sizes the view stores and sets the refresh cadence.
type DashboardConfig struct {
	FeedCapacity         int           `koanf:"feed_capacity"`
	MapWindow            int           `koanf:"map_window"`
	TrendCapacity        int           `koanf:"trend_capacity"`
	NoticeCapacity       int           `koanf:"notice_capacity"`
	RefreshInterval      time.Duration `koanf:"refresh_interval"`
	AlertRefreshInterval time.Duration `koanf:"alert_refresh_interval"`
}

// BreakerConfig configures the per-endpoint upstream circuit breakers.
type BreakerConfig struct {
	Enabled          bool          `koanf:"enabled"`
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	MinRequests      uint32        `koanf:"min_requests"`
	FailureThreshold float64       `koanf:"failure_threshold"`
}

// ServerConfig configures the downstream HTTP server.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// PerfSamples is how many recent requests the performance monitor
	// retains. 0 disables GET /api/v1/debug/performance.
	PerfSamples int `koanf:"perf_samples"`

	// SlowRequest logs API requests slower than this. 0 disables the log.
	SlowRequest time.Duration `koanf:"slow_request"`
}

// LoggingConfig configures the global zerolog logger.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// SimulateConfig configures the synthetic event producer.
type SimulateConfig struct {
	// Rate is the number of events posted per second.
	// Default: 2
	Rate float64 `koanf:"rate"`

	// Count is the number of events to post; 0 runs until stopped.
	Count int `koanf:"count"`

	// Seed makes the generated sequence reproducible when non-zero.
	Seed int64 `koanf:"seed"`
}

// SupervisorConfig configures the suture tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}
