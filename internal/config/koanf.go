// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where a config file is searched, in order.
var DefaultConfigPaths = []string{
	"threattrace.yaml",
	"threattrace.yml",
	"/etc/threattrace/config.yaml",
	"/etc/threattrace/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:       "http://localhost:5000",
			Timeout:       15 * time.Second,
			LocationHours: 24,
		},
		Push: PushConfig{
			Transport: TransportWebSocket,
			WebSocket: WebSocketConfig{
				URL:          "ws://localhost:5000/ws",
				ReconnectMin: time.Second,
				ReconnectMax: 32 * time.Second,
				ReadTimeout:  60 * time.Second,
				PingInterval: 30 * time.Second,
			},
			NATS: NATSConfig{
				URL:           "nats://127.0.0.1:4222",
				SubjectPrefix: "threattrace.push",
				MaxReconnects: 10,
				ReconnectWait: time.Second,
				EmbeddedHost:  "127.0.0.1",
				EmbeddedPort:  4222,
			},
		},
		Dashboard: DashboardConfig{
			FeedCapacity:         50,
			MapWindow:            500,
			TrendCapacity:        48,
			NoticeCapacity:       50,
			RefreshInterval:      30 * time.Second,
			AlertRefreshInterval: 5 * time.Second,
		},
		Breaker: BreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         time.Minute,
			Timeout:          2 * time.Minute,
			MinRequests:      10,
			FailureThreshold: 0.6,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8088,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			CORSOrigins:     []string{},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
			PerfSamples:     1000,
			SlowRequest:     500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Simulate: SimulateConfig{
			Rate: 2,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// Load reads configuration in three layers, later ones winning:
//
//  1. built-in defaults
//  2. an optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. environment variables listed in envMappings
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file. An empty path skips the
// file layer.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when they come
// from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	"threattrace_api_url":        "api.base_url",
	"threattrace_api_token":      "api.token",
	"threattrace_api_timeout":    "api.timeout",
	"threattrace_location_hours": "api.location_hours",

	"push_transport":         "push.transport",
	"push_ws_url":            "push.websocket.url",
	"push_ws_reconnect_min":  "push.websocket.reconnect_min",
	"push_ws_reconnect_max":  "push.websocket.reconnect_max",
	"push_ws_read_timeout":   "push.websocket.read_timeout",
	"push_ws_ping_interval":  "push.websocket.ping_interval",
	"nats_url":               "push.nats.url",
	"nats_subject_prefix":    "push.nats.subject_prefix",
	"nats_max_reconnects":    "push.nats.max_reconnects",
	"nats_reconnect_wait":    "push.nats.reconnect_wait",
	"nats_embedded":          "push.nats.embedded",
	"nats_embedded_host":     "push.nats.embedded_host",
	"nats_embedded_port":     "push.nats.embedded_port",
	"feed_capacity":          "dashboard.feed_capacity",
	"map_window":             "dashboard.map_window",
	"trend_capacity":         "dashboard.trend_capacity",
	"notice_capacity":        "dashboard.notice_capacity",
	"refresh_interval":       "dashboard.refresh_interval",
	"alert_refresh_interval": "dashboard.alert_refresh_interval",
	"breaker_enabled":        "breaker.enabled",
	"breaker_max_requests":   "breaker.max_requests",
	"breaker_interval":       "breaker.interval",
	"breaker_timeout":        "breaker.timeout",
	"breaker_min_requests":   "breaker.min_requests",
	"breaker_failure_ratio":  "breaker.failure_threshold",
	"http_host":              "server.host",
	"http_port":              "server.port",
	"http_read_timeout":      "server.read_timeout",
	"http_write_timeout":     "server.write_timeout",
	"cors_origins":           "server.cors_origins",
	"rate_limit_requests":    "server.rate_limit_requests",
	"rate_limit_window":      "server.rate_limit_window",
	"disable_rate_limit":     "server.rate_limit_disabled",
	"perf_samples":           "server.perf_samples",
	"slow_request_threshold": "server.slow_request",
	"log_level":              "logging.level",
	"log_format":             "logging.format",
	"log_caller":             "logging.caller",
	"simulate_rate":          "simulate.rate",
	"simulate_count":         "simulate.count",
	"simulate_seed":          "simulate.seed",
	"supervisor_threshold":   "supervisor.failure_threshold",
	"supervisor_decay":       "supervisor.failure_decay",
	"supervisor_backoff":     "supervisor.failure_backoff",
	"supervisor_shutdown":    "supervisor.shutdown_timeout",
}

// envTransformFunc maps an environment variable to its koanf path. Variables
// without a mapping return "" and are ignored.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
