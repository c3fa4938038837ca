// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package simulate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/threattrace/internal/logging"
	"github.com/tomtom215/threattrace/internal/metrics"
	"github.com/tomtom215/threattrace/internal/models"
)

// Ingester accepts location events. *fetch.Client and *fetch.BreakerClient
// satisfy it.
type Ingester interface {
	IngestLocationEvent(ctx context.Context, in *models.LocationIngestRequest) (*models.LocationIngestResponse, error)
}

// Config controls a simulation run.
type Config struct {
	// Rate is events per second. Default 2.
	Rate float64
	// Count is the number of events; 0 runs until the context is canceled.
	Count int
	// Seed fixes the generated sequence when non-zero.
	Seed int64
}

// Report summarizes a run.
type Report struct {
	Sent     int
	Failed   int
	EventIDs []string
	Elapsed  time.Duration
}

// ErrAllFailed is returned when a run posted nothing successfully.
var ErrAllFailed = errors.New("every simulated event was rejected")

// Runner posts generated events to an Ingester at a fixed rate.
type Runner struct {
	target  Ingester
	gen     *Generator
	limiter *rate.Limiter
	count   int
	logger  zerolog.Logger
}

// NewRunner creates a runner for target.
func NewRunner(target Ingester, cfg Config) *Runner {
	if cfg.Rate <= 0 {
		cfg.Rate = 2
	}
	return &Runner{
		target:  target,
		gen:     NewGenerator(cfg.Seed),
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), 1),
		count:   cfg.Count,
		logger:  logging.WithComponent("simulate"),
	}
}

// Run posts events until Count is reached or ctx is canceled. Cancellation
// ends the run without error. Individual failures are counted, not
// returned; ErrAllFailed is returned when nothing succeeded.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var rep Report
	start := time.Now()

	for i := 0; r.count == 0 || i < r.count; i++ {
		if err := r.limiter.Wait(ctx); err != nil {
			break
		}

		req := r.gen.Next()
		resp, err := r.target.IngestLocationEvent(ctx, &req)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			rep.Failed++
			metrics.SimulatedEvents.WithLabelValues("failed").Inc()
			r.logger.Warn().Err(err).Str("event_type", req.EventType).Msg("simulated event rejected")
			continue
		}

		rep.Sent++
		metrics.SimulatedEvents.WithLabelValues("sent").Inc()
		if resp != nil && resp.Event.EventID != "" {
			rep.EventIDs = append(rep.EventIDs, resp.Event.EventID)
		}
		r.logger.Debug().
			Str("event_type", req.EventType).
			Str("severity", req.Severity).
			Str("source_ip", req.SourceIP).
			Msg("simulated event posted")
	}

	rep.Elapsed = time.Since(start)
	r.logger.Info().Int("sent", rep.Sent).Int("failed", rep.Failed).Dur("elapsed", rep.Elapsed).Msg("simulation finished")

	if rep.Sent == 0 && rep.Failed > 0 {
		return rep, fmt.Errorf("%w (%d attempts)", ErrAllFailed, rep.Failed)
	}
	return rep, nil
}
