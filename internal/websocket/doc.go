// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

/*
Package websocket relays reconciled dashboard state to browser clients.

This is the outbound side of ThreatTrace: the inbound push channel lives in
package channel. A Hub attached to a dashboard.View forwards every view
Change to all connected clients, and greets each new client with a full
snapshot so it never has to stitch state together from deltas.

Key Components:

  - Hub: client registry and broadcast loop, run under suture via Serve
  - Client: one gorilla/websocket connection with read and write pumps
  - Message: {"type", "refresh_seq", "data"} frame

Message Types:

  - snapshot: complete models.ViewSnapshot, sent once on connect
  - feed, points, stats, charts, top_threats, notices, refresh, mount,
    unmount: one per dashboard.ChangeKind, carrying the changed section
  - pong: reply to a client "ping" frame

Usage:

	hub := websocket.NewHub()
	detach := hub.Attach(view)
	defer detach()

	upgrader := websocket.Upgrader(cfg.AllowedOrigins)
	r.Get("/api/v1/ws", func(w http.ResponseWriter, r *http.Request) {
	    websocket.ServeWS(hub, &upgrader, w, r)
	})

Slow clients whose 256-message buffer fills are disconnected rather than
allowed to stall the broadcast loop.
*/
package websocket
