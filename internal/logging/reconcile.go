// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ReconcileLogger logs the lifecycle of push messages and REST refreshes
// with stable message texts.
type ReconcileLogger struct {
	logger zerolog.Logger
}

// NewReconcileLogger creates a logger tagged with component=dashboard.
func NewReconcileLogger() *ReconcileLogger {
	return &ReconcileLogger{logger: WithComponent("dashboard")}
}

// NewReconcileLoggerWithLogger wraps a specific logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewReconcileLoggerWithLogger(logger zerolog.Logger) *ReconcileLogger {
	return &ReconcileLogger{logger: logger.With().Str("component", "dashboard").Logger()}
}

func (r *ReconcileLogger) withContext(ctx context.Context) zerolog.Logger {
	logCtx := r.logger.With()
	if id := CorrelationIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("correlation_id", id)
	}
	return logCtx.Logger()
}

// LogPushReceived logs a decoded push message at debug level.
func (r *ReconcileLogger) LogPushReceived(event string) {
	r.logger.Debug().Str("event", event).Msg("push message received")
}

// LogPushDropped logs a push message that could not be decoded.
func (r *ReconcileLogger) LogPushDropped(event string, err error) {
	r.logger.Warn().Str("event", event).Err(err).Msg("push message dropped")
}

// LogPushIgnored logs a push message that decoded but does not reach a store,
// such as an INFO system log line.
func (r *ReconcileLogger) LogPushIgnored(event, reason string) {
	r.logger.Debug().Str("event", event).Str("reason", reason).Msg("push message ignored")
}

// LogDuplicate logs an event whose key was already in the feed.
func (r *ReconcileLogger) LogDuplicate(event, key string) {
	r.logger.Debug().Str("event", event).Str("key", SanitizeValue("key", key)).Msg("duplicate event skipped")
}

// LogRefreshApplied logs a REST refresh that reached the stores. guarded
// counts counters kept from newer pushes; replayed counts push map points
// laid back over the bulk load.
func (r *ReconcileLogger) LogRefreshApplied(ctx context.Context, seq uint64, source string, guarded, replayed int, took time.Duration) {
	l := r.withContext(ctx)
	l.Info().
		Uint64("seq", seq).
		Str("locations_source", source).
		Int("guarded_stats", guarded).
		Int("replayed_points", replayed).
		Dur("duration", took).
		Msg("refresh applied")
}

// LogRefreshDiscarded logs a refresh result dropped as stale or unmounted.
func (r *ReconcileLogger) LogRefreshDiscarded(ctx context.Context, seq uint64, reason string) {
	l := r.withContext(ctx)
	l.Debug().Uint64("seq", seq).Str("reason", reason).Msg("refresh discarded")
}

// LogRefreshFailed logs a refresh whose joint wait failed.
func (r *ReconcileLogger) LogRefreshFailed(ctx context.Context, seq uint64, err error) {
	l := r.withContext(ctx)
	l.Error().Uint64("seq", seq).Err(err).Msg("Failed to load dashboard data")
}

// LogSubscribed logs a channel subscription state change.
func (r *ReconcileLogger) LogSubscribed(transport string, events int) {
	r.logger.Info().Str("transport", transport).Int("events", events).Msg("push handlers registered")
}

// LogUnsubscribed logs handler deregistration.
func (r *ReconcileLogger) LogUnsubscribed(transport string) {
	r.logger.Info().Str("transport", transport).Msg("push handlers removed")
}
