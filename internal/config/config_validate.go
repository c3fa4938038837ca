// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validatePush(); err != nil {
		return err
	}

	if err := c.validateDashboard(); err != nil {
		return err
	}

	if err := c.validateBreaker(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSimulate(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateAPI() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("THREATTRACE_API_URL is required")
	}
	if err := validateHTTPURL(c.API.BaseURL, "THREATTRACE_API_URL"); err != nil {
		return err
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("THREATTRACE_API_TIMEOUT must be positive, got: %s", c.API.Timeout)
	}
	if c.API.LocationHours < 1 || c.API.LocationHours > 168 {
		return fmt.Errorf("THREATTRACE_LOCATION_HOURS must be between 1 and 168, got: %d", c.API.LocationHours)
	}
	return nil
}

func (c *Config) validatePush() error {
	switch c.Push.Transport {
	case TransportWebSocket:
		return c.validateWebSocket()
	case TransportNATS:
		return c.validateNATS()
	case TransportNone:
		return nil
	default:
		return fmt.Errorf("PUSH_TRANSPORT must be one of websocket, nats, none, got: %s", c.Push.Transport)
	}
}

func (c *Config) validateWebSocket() error {
	ws := c.Push.WebSocket
	if ws.URL == "" {
		return fmt.Errorf("PUSH_WS_URL is required when PUSH_TRANSPORT=websocket")
	}
	if err := validateWebSocketURL(ws.URL, "PUSH_WS_URL"); err != nil {
		return err
	}
	if ws.ReconnectMin <= 0 || ws.ReconnectMax < ws.ReconnectMin {
		return fmt.Errorf("PUSH_WS_RECONNECT_MIN must be positive and not exceed PUSH_WS_RECONNECT_MAX")
	}
	return nil
}

func (c *Config) validateNATS() error {
	n := c.Push.NATS
	if n.Embedded {
		if n.EmbeddedPort < 1 || n.EmbeddedPort > 65535 {
			return fmt.Errorf("NATS_EMBEDDED_PORT must be between 1 and 65535, got: %d", n.EmbeddedPort)
		}
	} else {
		if n.URL == "" {
			return fmt.Errorf("NATS_URL is required when PUSH_TRANSPORT=nats")
		}
		if err := validateNATSURL(n.URL); err != nil {
			return fmt.Errorf("NATS_URL: %w", err)
		}
	}
	if strings.TrimSpace(n.SubjectPrefix) == "" {
		return fmt.Errorf("NATS_SUBJECT_PREFIX is required when PUSH_TRANSPORT=nats")
	}
	if strings.ContainsAny(n.SubjectPrefix, " *>") {
		return fmt.Errorf("NATS_SUBJECT_PREFIX must not contain spaces or wildcards, got: %s", n.SubjectPrefix)
	}
	return nil
}

func (c *Config) validateDashboard() error {
	d := c.Dashboard
	positive := map[string]int{
		"FEED_CAPACITY":   d.FeedCapacity,
		"TREND_CAPACITY":  d.TrendCapacity,
		"NOTICE_CAPACITY": d.NoticeCapacity,
	}
	for _, name := range []string{"FEED_CAPACITY", "TREND_CAPACITY", "NOTICE_CAPACITY"} {
		if positive[name] < 1 {
			return fmt.Errorf("%s must be at least 1, got: %d", name, positive[name])
		}
	}
	if d.MapWindow < 0 {
		return fmt.Errorf("MAP_WINDOW must be non-negative, got: %d", d.MapWindow)
	}
	if d.RefreshInterval < time.Second {
		return fmt.Errorf("REFRESH_INTERVAL must be at least 1s, got: %s", d.RefreshInterval)
	}
	if d.AlertRefreshInterval < 0 {
		return fmt.Errorf("ALERT_REFRESH_INTERVAL must be non-negative, got: %s", d.AlertRefreshInterval)
	}
	return nil
}

func (c *Config) validateBreaker() error {
	if !c.Breaker.Enabled {
		return nil
	}
	if c.Breaker.FailureThreshold <= 0 || c.Breaker.FailureThreshold > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1], got: %v", c.Breaker.FailureThreshold)
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive, got: %s", c.Breaker.Timeout)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got: %d", c.Server.Port)
	}
	if c.Server.PerfSamples < 0 {
		return fmt.Errorf("PERF_SAMPLES must not be negative, got: %d", c.Server.PerfSamples)
	}
	if c.Server.SlowRequest < 0 {
		return fmt.Errorf("SLOW_REQUEST_THRESHOLD must not be negative, got: %s", c.Server.SlowRequest)
	}
	if c.Server.RateLimitDisabled {
		return nil
	}
	if c.Server.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got: %d", c.Server.RateLimitReqs)
	}
	if c.Server.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s, got: %s", c.Server.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateSimulate() error {
	if c.Simulate.Rate <= 0 {
		return fmt.Errorf("SIMULATE_RATE must be positive, got: %v", c.Simulate.Rate)
	}
	if c.Simulate.Count < 0 {
		return fmt.Errorf("SIMULATE_COUNT must be non-negative, got: %d", c.Simulate.Count)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled", "":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console", "":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got: %s", c.Logging.Format)
	}
	return nil
}

// HasWildcardCORS reports whether any CORS origin is "*".
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Server.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
