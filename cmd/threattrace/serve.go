// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/threattrace/internal/api"
	"github.com/tomtom215/threattrace/internal/channel"
	"github.com/tomtom215/threattrace/internal/config"
	"github.com/tomtom215/threattrace/internal/dashboard"
	"github.com/tomtom215/threattrace/internal/fetch"
	"github.com/tomtom215/threattrace/internal/logging"
	"github.com/tomtom215/threattrace/internal/middleware"
	"github.com/tomtom215/threattrace/internal/simulate"
	"github.com/tomtom215/threattrace/internal/supervisor"
	"github.com/tomtom215/threattrace/internal/supervisor/services"
	ws "github.com/tomtom215/threattrace/internal/websocket"
)

var serveSimulate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reconciler and the dashboard API",
	Long: `serve mounts one dashboard view, keeps it reconciled from the upstream
REST API and push channel, and serves it on /api/v1 with a websocket
fan-out on /api/v1/ws.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runServe(cmd.Context(), cfg, serveSimulate)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveSimulate, "simulate", false, "also post synthetic events upstream (SIMULATE_* settings)")
}

// runServe blocks until ctx is canceled.
func runServe(ctx context.Context, cfg *config.Config, withSimulator bool) error {
	logging.Info().
		Str("version", version).
		Str("api_url", cfg.API.BaseURL).
		Str("push_transport", cfg.Push.Transport).
		Str("addr", cfg.Addr()).
		Msg("Starting ThreatTrace")

	if cfg.HasWildcardCORS() {
		logging.Warn().Msg("CORS_ORIGINS contains '*': any origin may read the dashboard API")
	}

	up, err := newUpstream(cfg)
	if err != nil {
		return err
	}

	push, embedded, err := newPush(cfg)
	if err != nil {
		return err
	}

	var ch channel.Channel
	var pushStatus api.PushStatus
	if push != nil {
		ch = push
		pushStatus = push
	} else {
		logging.Warn().Msg("Push transport disabled; the view is refreshed from REST only")
	}

	view := dashboard.NewView(fetch.NewCoordinator(up.source(), cfg.API.LocationHours), ch, viewOptions(cfg))

	hub := ws.NewHub()
	detach := hub.Attach(view)
	defer detach()

	var perf *middleware.PerformanceMonitor
	if cfg.Server.PerfSamples > 0 {
		perf = middleware.NewPerformanceMonitor(cfg.Server.PerfSamples, cfg.Server.SlowRequest)
	}

	handler := api.NewHandler(view, hub, api.HandlerDeps{
		Push:           pushStatus,
		Breakers:       up.breakerStates(),
		Perf:           perf,
		AllowedOrigins: cfg.Server.CORSOrigins,
		Version:        version,
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(middlewareConfig(cfg)))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), treeConfig(cfg))
	if err != nil {
		return err
	}

	if embedded != nil {
		tree.AddPushService(embedded)
		logging.Info().Str("url", embedded.ClientURL()).Msg("Embedded NATS server started")
	}
	if push != nil {
		tree.AddPushService(push)
	}
	tree.AddViewService(view)
	tree.AddViewService(hub)
	if withSimulator {
		runner := simulate.NewRunner(up.ingester(), simulate.Config{
			Rate:  cfg.Simulate.Rate,
			Count: cfg.Simulate.Count,
			Seed:  cfg.Simulate.Seed,
		})
		tree.AddViewService(services.NewFuncService("simulator", func(ctx context.Context) error {
			rep, err := runner.Run(ctx)
			if errors.Is(err, simulate.ErrAllFailed) {
				logging.Warn().Int("failed", rep.Failed).Msg("Simulator stopped: upstream rejected every event")
				return nil
			}
			return err
		}))
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Supervisor.ShutdownTimeout))

	logging.Info().Str("addr", cfg.Addr()).Msg("Supervisor tree starting")
	err = tree.Serve(ctx)

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within the shutdown timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("ThreatTrace stopped")
	return nil
}
