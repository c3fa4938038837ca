// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

/*
Package channel delivers upstream push messages to registered handlers.

A Channel is anything that can route a named push event to handlers. There is
no process-wide client: each transport is constructed explicitly and handed to
the dashboard view, so several independent channels can coexist.

# Transports

  - Dispatcher: in-process routing. It backs the other transports and is used
    directly in tests and by the simulator.
  - WebSocketClient: gorilla/websocket client reading {"event","data"} frames.
    Reconnects with exponential backoff (1s to 32s), a 60s read deadline and
    a 30s keep-alive ping. Runs as a suture service through Serve.
  - NATSClient: subscribes to "<prefix>.>" and routes each message by the last
    subject token.
  - EmbeddedServer: an in-process nats-server for single-node deployments and
    tests.

# Handlers

Handlers are called synchronously on the transport's read goroutine, in
registration order. They must not block on I/O.

	ch := channel.NewDispatcher("inprocess")
	unsubscribe := ch.Subscribe("stats_update", func(data []byte) { ... })
	defer unsubscribe()

Unsubscribe functions are idempotent.
*/
package channel
