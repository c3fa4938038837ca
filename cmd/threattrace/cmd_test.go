// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/tomtom215/threattrace/internal/config"
	"github.com/tomtom215/threattrace/internal/logging"
	"github.com/tomtom215/threattrace/internal/models"
	"github.com/tomtom215/threattrace/internal/simulate"
)

func init() {
	color.NoColor = true
	logging.SetLogger(zerolog.Nop())
}

var upstreamBodies = map[string]string{
	"/api/locations/recent":           `{"points":[{"lat":48.8566,"lng":2.3522,"severity":"high","count":3,"city":"Paris","country":"France"}]}`,
	"/api/dashboard/threat-locations": `{"threats":[]}`,
	"/api/dashboard/threat-trends":    `{"data":[{"timestamp":"10:00","threats":5,"blocked":3,"active":2}]}`,
	"/api/dashboard/threat-types":     `{"data":[{"type":"Malware","count":7}]}`,
	"/api/dashboard/severity-stats":   `{"data":{"critical":1,"high":2,"medium":3,"low":4}}`,
	"/api/dashboard/stats":            `{"stats":{"files_scanned":1200,"uptime":"99.97%"}}`,
	"/api/dashboard/top-threats":      `{"threats":[{"id":"t1","name":"Emotet dropper","severity":"critical","source":"edr","timestamp":"2026-03-01T11:00:00Z"}]}`,
}

func newFakeUpstream(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var ingests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/locations/ingest" {
			n := ingests.Add(1)
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"status":"success","event":{"event_id":"loc-`+string(rune('0'+n))+`"}}`)
			return
		}
		body, ok := upstreamBodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &ingests
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			BaseURL:       baseURL,
			Timeout:       5 * time.Second,
			LocationHours: 24,
		},
		Push: config.PushConfig{Transport: config.TransportNone},
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"serve": false, "snapshot": false, "simulate": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
	if f := snapshotCmd.Flags().Lookup("json"); f == nil {
		t.Error("snapshot --json flag missing")
	}
	if f := serveCmd.Flags().Lookup("simulate"); f == nil {
		t.Error("serve --simulate flag missing")
	}
}

func TestTakeSnapshot(t *testing.T) {
	srv, _ := newFakeUpstream(t)

	snap, err := takeSnapshot(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("takeSnapshot: %v", err)
	}
	if snap.RefreshSeq != 1 {
		t.Errorf("RefreshSeq = %d, want 1", snap.RefreshSeq)
	}
	if len(snap.Points) != 1 || snap.Points[0].City != "Paris" {
		t.Errorf("Points = %+v", snap.Points)
	}
	if len(snap.Feed) != 1 || snap.Feed[0].Message == "" {
		t.Errorf("Feed = %+v, want the top threat seeded", snap.Feed)
	}
	if snap.Charts.Severity.Low != 4 {
		t.Errorf("Severity = %+v", snap.Charts.Severity)
	}
}

func TestTakeSnapshot_UpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := takeSnapshot(context.Background(), testConfig(srv.URL)); err == nil {
		t.Fatal("expected refresh error")
	}
}

func TestRenderSnapshot(t *testing.T) {
	srv, _ := newFakeUpstream(t)
	snap, err := takeSnapshot(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("takeSnapshot: %v", err)
	}

	var buf bytes.Buffer
	renderSnapshot(&buf, snap, 5)
	out := buf.String()

	for _, want := range []string{
		"Refresh #1",
		"files_scanned",
		"1200",
		"99.97%",
		"Emotet dropper",
		"Malware",
		"Paris, France",
		"48.8566",
		"Locations (1)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestRenderSnapshot_Limit(t *testing.T) {
	snap := models.ViewSnapshot{RefreshSeq: 2}
	for i := 0; i < 4; i++ {
		snap.Feed = append(snap.Feed, models.Event{Message: "event-" + string(rune('a'+i)), Severity: models.SeverityLow})
	}
	var buf bytes.Buffer
	renderSnapshot(&buf, snap, 2)
	out := buf.String()
	if !strings.Contains(out, "event-b") || strings.Contains(out, "event-c") {
		t.Errorf("limit not applied:\n%s", out)
	}
	if !strings.Contains(out, "Activity (4)") {
		t.Errorf("activity header should report the full count:\n%s", out)
	}
}

func TestTable_AlignsColoredCells(t *testing.T) {
	tb := newTable("A", "B")
	tb.add(cell{plain: "x", rendered: "\x1b[31mx\x1b[0m"}, plain("1"))
	tb.add(plain("long"), plain("2"))

	var buf bytes.Buffer
	tb.render(&buf)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[3], "long  2") {
		t.Errorf("row = %q", lines[3])
	}
	if !strings.HasPrefix(lines[2], "\x1b[31mx\x1b[0m     1") {
		t.Errorf("colored row = %q", lines[2])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate = %q", got)
	}
}

func TestUpstreamIngester(t *testing.T) {
	srv, ingests := newFakeUpstream(t)
	cfg := testConfig(srv.URL)

	up, err := newUpstream(cfg)
	if err != nil {
		t.Fatalf("newUpstream: %v", err)
	}
	rep, err := simulate.NewRunner(up.ingester(), simulate.Config{Rate: 1000, Count: 3, Seed: 5}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Sent != 3 || ingests.Load() != 3 {
		t.Errorf("sent %d, upstream saw %d, want 3", rep.Sent, ingests.Load())
	}
}

func TestNewUpstream_Breakers(t *testing.T) {
	cfg := testConfig("http://localhost:5000")
	up, err := newUpstream(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if up.breakers != nil || up.breakerStates() != nil {
		t.Error("breakers should be off when disabled")
	}

	cfg.Breaker = config.BreakerConfig{Enabled: true, FailureThreshold: 0.5, Timeout: time.Minute}
	up, _ = newUpstream(cfg)
	if up.breakers == nil || up.breakerStates() == nil {
		t.Error("breakers should wrap the client when enabled")
	}
	if up.source() != up.breakers {
		t.Error("source should go through the breakers")
	}
}

func TestNewPush(t *testing.T) {
	cfg := testConfig("http://localhost:5000")

	push, embedded, err := newPush(cfg)
	if err != nil || push != nil || embedded != nil {
		t.Errorf("transport none: push=%v embedded=%v err=%v", push, embedded, err)
	}

	cfg.Push = config.PushConfig{
		Transport: config.TransportWebSocket,
		WebSocket: config.WebSocketConfig{URL: "ws://localhost:5000/ws"},
	}
	push, _, err = newPush(cfg)
	if err != nil {
		t.Fatalf("websocket: %v", err)
	}
	if push.Transport() != "websocket" || push.IsConnected() {
		t.Errorf("websocket client: transport=%q connected=%v", push.Transport(), push.IsConnected())
	}

	cfg.Push = config.PushConfig{
		Transport: config.TransportNATS,
		NATS:      config.NATSConfig{Embedded: true, EmbeddedHost: "127.0.0.1", EmbeddedPort: -1, SubjectPrefix: "tt.push"},
	}
	push, embedded, err = newPush(cfg)
	if err != nil {
		t.Fatalf("nats: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = embedded.Shutdown(ctx)
	}()
	if embedded == nil || !embedded.IsRunning() {
		t.Fatal("embedded server not running")
	}
	if push.Transport() != "nats" {
		t.Errorf("transport = %q, want nats", push.Transport())
	}
}
