// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/threattrace/internal/channel"
	"github.com/tomtom215/threattrace/internal/fetch"
	"github.com/tomtom215/threattrace/internal/models"
)

// stubFetcher returns whatever next produces and counts calls.
type stubFetcher struct {
	mu    sync.Mutex
	next  func(ctx context.Context) (*fetch.Result, error)
	calls atomic.Int32
}

func (f *stubFetcher) RefreshAll(ctx context.Context) (*fetch.Result, error) {
	f.calls.Add(1)
	f.mu.Lock()
	next := f.next
	f.mu.Unlock()
	if next == nil {
		return emptyResult(), nil
	}
	return next(ctx)
}

func (f *stubFetcher) set(next func(ctx context.Context) (*fetch.Result, error)) {
	f.mu.Lock()
	f.next = next
	f.mu.Unlock()
}

func emptyResult() *fetch.Result {
	return &fetch.Result{
		Locations:       []models.GeoPoint{},
		LocationsSource: fetch.LocationsRecent,
		Trends:          []models.TrendPoint{},
		Types:           []models.ThreatTypeCount{},
		Stats:           models.StatsPatch{},
		TopThreats:      []models.TopThreat{},
	}
}

func statsResult(kv map[string]float64) *fetch.Result {
	res := emptyResult()
	for k, v := range kv {
		res.Stats.Set(k, models.Number(v))
	}
	return res
}

// manualOptions disables the refresh loop so tests drive refreshes.
func manualOptions() Options {
	opts := DefaultOptions()
	opts.DisableRefreshLoop = true
	opts.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return opts
}

func mountedView(t *testing.T, f Fetcher, ch channel.Channel, opts Options) *View {
	t.Helper()
	if f == nil {
		f = &stubFetcher{}
	}
	v := NewView(f, ch, opts)
	if err := v.Mount(context.Background()); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	t.Cleanup(v.Unmount)
	return v
}

func statNumber(t *testing.T, stats models.DashboardStats, key string) float64 {
	t.Helper()
	v, ok := stats[key]
	if !ok {
		t.Fatalf("stat %q missing in %v", key, stats)
	}
	f, ok := v.Float()
	if !ok {
		t.Fatalf("stat %q = %v, not numeric", key, v)
	}
	return f
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
