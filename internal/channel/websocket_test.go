// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package channel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/thejerf/suture/v4"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func fastConfig(url string) WebSocketConfig {
	cfg := DefaultWebSocketConfig(url)
	cfg.ReconnectMin = 10 * time.Millisecond
	cfg.ReconnectMax = 50 * time.Millisecond
	cfg.ReadTimeout = 2 * time.Second
	cfg.PingInterval = 100 * time.Millisecond
	return cfg
}

func receive(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for push message")
		return ""
	}
}

func TestNewWebSocketClient_RequiresURL(t *testing.T) {
	t.Parallel()

	if _, err := NewWebSocketClient(WebSocketConfig{}); err == nil {
		t.Error("expected error for empty URL")
	}
}

func TestWebSocketClient_DeliversFrames(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		frames := []string{
			`not json`,
			`{"data":{"x":1}}`,
			`{"event":"stats_update","data":{"files_scanned":10}}`,
			`{"event":"system_log","data":{"level":"ERROR"}}`,
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// Hold the connection until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	cfg := fastConfig(wsURL(srv))
	cfg.Token = "secret"
	client, err := NewWebSocketClient(cfg)
	if err != nil {
		t.Fatalf("NewWebSocketClient() error = %v", err)
	}

	got := make(chan string, 4)
	client.Subscribe("stats_update", func(data []byte) { got <- "stats:" + string(data) })
	client.Subscribe("system_log", func(data []byte) { got <- "log:" + string(data) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Serve(ctx) }()

	if v := receive(t, got); v != `stats:{"files_scanned":10}` {
		t.Errorf("first message = %q", v)
	}
	if v := receive(t, got); v != `log:{"level":"ERROR"}` {
		t.Errorf("second message = %q", v)
	}
	if !client.IsConnected() {
		t.Error("IsConnected() = false while serving")
	}
	if auth, _ := gotAuth.Load().(string); auth != "Bearer secret" {
		t.Errorf("Authorization = %q, want %q", auth, "Bearer secret")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Serve returned")
	}
}

func TestWebSocketClient_Reconnects(t *testing.T) {
	var connections atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		n := connections.Add(1)
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"new_alert","data":{"id":"`+string(rune('0'+n))+`"}}`))
		if n == 1 {
			// Drop the first connection to force a reconnect.
			_ = conn.Close()
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	client, err := NewWebSocketClient(fastConfig(wsURL(srv)))
	if err != nil {
		t.Fatalf("NewWebSocketClient() error = %v", err)
	}
	got := make(chan string, 4)
	client.Subscribe("new_alert", func(data []byte) { got <- string(data) })

	done := make(chan error, 1)
	go func() { done <- client.Serve(context.Background()) }()

	first := receive(t, got)
	second := receive(t, got)
	if first != `{"id":"1"}` || second != `{"id":"2"}` {
		t.Errorf("messages = %q, %q", first, second)
	}
	if client.Reconnects() < 1 {
		t.Errorf("Reconnects() = %d, want >= 1", client.Reconnects())
	}

	_ = client.Close()
	_ = client.Close()
	select {
	case err := <-done:
		if !errors.Is(err, suture.ErrDoNotRestart) {
			t.Errorf("Serve() error = %v, want suture.ErrDoNotRestart", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
}

func TestWebSocketClient_RetriesUntilServerAppears(t *testing.T) {
	var ready atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			http.Error(w, "not yet", http.StatusServiceUnavailable)
			return
		}
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"scan_progress","data":{}}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	client, err := NewWebSocketClient(fastConfig(wsURL(srv)))
	if err != nil {
		t.Fatalf("NewWebSocketClient() error = %v", err)
	}
	got := make(chan string, 1)
	client.Subscribe("scan_progress", func(data []byte) { got <- string(data) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = client.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	ready.Store(true)

	if v := receive(t, got); v != `{}` {
		t.Errorf("message = %q, want {}", v)
	}
}

func TestWebSocketConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := WebSocketConfig{URL: "ws://example", ReconnectMin: 2 * time.Second}
	cfg.applyDefaults()

	if cfg.ReconnectMax != 32*time.Second {
		t.Errorf("ReconnectMax = %v, want 32s", cfg.ReconnectMax)
	}
	if cfg.ReadTimeout != 60*time.Second {
		t.Errorf("ReadTimeout = %v, want 60s", cfg.ReadTimeout)
	}
	if cfg.PingInterval != 30*time.Second {
		t.Errorf("PingInterval = %v, want 30s", cfg.PingInterval)
	}
	if cfg.ReconnectMin != 2*time.Second {
		t.Errorf("ReconnectMin = %v, want 2s", cfg.ReconnectMin)
	}
}
