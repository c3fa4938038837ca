// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every mapped variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{ConfigPathEnvVar}
	for k := range envMappings {
		keys = append(keys, strings.ToUpper(k))
	}
	for _, k := range keys {
		if _, ok := os.LookupEnv(k); ok {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.API.BaseURL != "http://localhost:5000" {
		t.Errorf("API.BaseURL = %q, want http://localhost:5000", cfg.API.BaseURL)
	}
	if cfg.API.LocationHours != 24 {
		t.Errorf("API.LocationHours = %d, want 24", cfg.API.LocationHours)
	}
	if cfg.Push.Transport != TransportWebSocket {
		t.Errorf("Push.Transport = %q, want websocket", cfg.Push.Transport)
	}
	if cfg.Dashboard.FeedCapacity != 50 {
		t.Errorf("Dashboard.FeedCapacity = %d, want 50", cfg.Dashboard.FeedCapacity)
	}
	if cfg.Dashboard.RefreshInterval != 30*time.Second {
		t.Errorf("Dashboard.RefreshInterval = %v, want 30s", cfg.Dashboard.RefreshInterval)
	}
	if cfg.Server.Port != 8088 {
		t.Errorf("Server.Port = %d, want 8088", cfg.Server.Port)
	}
	if cfg.Supervisor.FailureThreshold != 5 {
		t.Errorf("Supervisor.FailureThreshold = %v, want 5", cfg.Supervisor.FailureThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFile_DefaultsOnly(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Dashboard.TrendCapacity != 48 {
		t.Errorf("TrendCapacity = %d, want 48", cfg.Dashboard.TrendCapacity)
	}
	if cfg.Push.WebSocket.ReconnectMax != 32*time.Second {
		t.Errorf("ReconnectMax = %v, want 32s", cfg.Push.WebSocket.ReconnectMax)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "threattrace.yaml")
	content := `
api:
  base_url: https://soc.example.com
  location_hours: 72
push:
  transport: nats
  nats:
    embedded: true
    embedded_port: 14222
dashboard:
  feed_capacity: 100
  refresh_interval: 45s
server:
  cors_origins:
    - https://dash.example.com
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.API.BaseURL != "https://soc.example.com" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.LocationHours != 72 {
		t.Errorf("LocationHours = %d, want 72", cfg.API.LocationHours)
	}
	if cfg.Push.Transport != TransportNATS || !cfg.Push.NATS.Embedded || cfg.Push.NATS.EmbeddedPort != 14222 {
		t.Errorf("Push = %+v", cfg.Push)
	}
	if cfg.Dashboard.FeedCapacity != 100 {
		t.Errorf("FeedCapacity = %d, want 100", cfg.Dashboard.FeedCapacity)
	}
	if cfg.Dashboard.RefreshInterval != 45*time.Second {
		t.Errorf("RefreshInterval = %v, want 45s", cfg.Dashboard.RefreshInterval)
	}
	// untouched sections keep their defaults
	if cfg.Dashboard.NoticeCapacity != 50 {
		t.Errorf("NoticeCapacity = %d, want 50", cfg.Dashboard.NoticeCapacity)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://dash.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "threattrace.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("ALERT_REFRESH_INTERVAL", "2s")
	t.Setenv("UNRELATED_SETTING", "ignored")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Dashboard.AlertRefreshInterval != 2*time.Second {
		t.Errorf("AlertRefreshInterval = %v, want 2s", cfg.Dashboard.AlertRefreshInterval)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Server.CORSOrigins[i], want[i])
		}
	}
}

func TestLoadFile_InvalidRejected(t *testing.T) {
	clearEnv(t)
	t.Setenv("PUSH_TRANSPORT", "carrier-pigeon")

	if _, err := LoadFile(""); err == nil {
		t.Fatal("expected validation error")
	} else if !strings.Contains(err.Error(), "PUSH_TRANSPORT") {
		t.Errorf("error = %v, want mention of PUSH_TRANSPORT", err)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFindConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{"THREATTRACE_API_URL", "api.base_url"},
		{"PUSH_TRANSPORT", "push.transport"},
		{"NATS_EMBEDDED", "push.nats.embedded"},
		{"HTTP_PORT", "server.port"},
		{"log_level", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
