// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

// Command threattrace keeps a reconciled dashboard view of a ThreatTrace
// backend and serves it to browsers.
//
// # Commands
//
//	threattrace serve      run the reconciler, websocket fan-out and HTTP API
//	threattrace snapshot   fetch once and print the reconciled view
//	threattrace simulate   post synthetic location events upstream
//
// # Configuration
//
// Configuration is loaded with koanf from built-in defaults, an optional
// YAML file (--config, CONFIG_PATH, ./threattrace.yaml) and environment
// variables, later sources winning. Common variables:
//
//	THREATTRACE_API_URL   upstream REST base URL (http://localhost:5000)
//	PUSH_TRANSPORT        websocket, nats or none
//	PUSH_WS_URL           upstream push websocket (ws://localhost:5000/ws)
//	NATS_URL              NATS server when PUSH_TRANSPORT=nats
//	NATS_EMBEDDED         run an in-process NATS server
//	HTTP_PORT             downstream API port (8088)
//	LOG_LEVEL, LOG_FORMAT zerolog level and json|console output
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. serve unwinds its supervisor
// tree: the HTTP server drains, websocket clients receive a close frame, the
// view unmounts and the push channel disconnects.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
