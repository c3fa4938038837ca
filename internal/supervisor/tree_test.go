// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingService blocks until canceled after failing its first fails runs.
type countingService struct {
	name   string
	fails  int32
	starts atomic.Int32
}

func (s *countingService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	if n <= s.fails {
		return errors.New("induced failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return s.name }

func waitStarts(t *testing.T, s *countingService, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.starts.Load() < want {
		if time.Now().After(deadline) {
			t.Fatalf("%s: starts = %d, want >= %d", s.name, s.starts.Load(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor is nil")
	}
	if got := tree.Config(); got != DefaultTreeConfig() {
		t.Errorf("Config() = %+v, want %+v", got, DefaultTreeConfig())
	}

	tree, _ = NewSupervisorTree(quietLogger(), TreeConfig{FailureThreshold: 2, ShutdownTimeout: time.Second})
	if tree.Config().FailureThreshold != 2 || tree.Config().ShutdownTimeout != time.Second {
		t.Errorf("explicit values not kept: %+v", tree.Config())
	}
	if tree.Config().FailureDecay != 30 {
		t.Errorf("FailureDecay = %v, want 30", tree.Config().FailureDecay)
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	push := &countingService{name: "push"}
	view := &countingService{name: "view"}
	api := &countingService{name: "api"}
	tree.AddPushService(push)
	tree.AddViewService(view)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitStarts(t, push, 1)
	waitStarts(t, view, 1)
	waitStarts(t, api, 1)

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down")
	}
}

func TestSupervisorTree_RestartsFailingPushClient(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	flaky := &countingService{name: "push", fails: 2}
	view := &countingService{name: "view"}
	tree.AddPushService(flaky)
	tree.AddViewService(view)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	waitStarts(t, flaky, 3)
	waitStarts(t, view, 1)

	// The view layer is isolated from push restarts.
	if got := view.starts.Load(); got != 1 {
		t.Errorf("view starts = %d, want 1", got)
	}
}

func TestSupervisorTree_RemoveViewService(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	svc := &countingService{name: "sim"}
	token := tree.AddViewService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)
	waitStarts(t, svc, 1)

	if err := tree.RemoveViewService(token); err != nil {
		t.Fatalf("RemoveViewService: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if got := svc.starts.Load(); got != 1 {
		t.Errorf("removed service restarted: starts = %d", got)
	}

	cancel()
	<-errCh
	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport: %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}
