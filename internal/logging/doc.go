// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

/*
Package logging provides the zerolog-based logger used across ThreatTrace.

# Quick Start

	logging.Init(logging.Config{Level: "info", Format: "json"})

	logging.Info().Str("transport", "nats").Msg("Push channel connected")
	logging.Err(err).Msg("Refresh failed")

	// Correlated logging for one refresh or one HTTP request
	ctx = logging.ContextWithNewCorrelationID(ctx)
	logging.Ctx(ctx).Debug().Str("endpoint", "/api/dashboard/stats").Msg("Fetching")

	// Component loggers
	log := logging.WithComponent("fetch")

# Field Names

	time, level, message, error, caller, component, correlation_id, request_id

# Reconciliation Events

ReconcileLogger gives the dashboard and channel packages a fixed vocabulary
for push messages received, dropped or deduplicated and for refreshes applied
or discarded, so dashboards built on the log stream can rely on stable
message texts.

# slog Bridge

SlogHandler adapts log/slog to zerolog for libraries that require an
*slog.Logger, such as sutureslog in the supervisor tree.

# Sanitizing

SanitizeToken and SanitizeValue mask bearer tokens and other secrets before
they reach a log line.
*/
package logging
