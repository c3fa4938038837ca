// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

/*
Package supervisor runs ThreatTrace's long-lived components under a suture v4
tree.

# Layers

	RootSupervisor ("threattrace")
	├── "push-layer"
	│   ├── EmbeddedServer ("embedded-nats", when NATS_EMBEDDED)
	│   └── WebSocketClient ("push-websocket") or NATSClient ("push-nats")
	├── "view-layer"
	│   ├── View ("dashboard-view")
	│   ├── Hub ("websocket-hub")
	│   └── FuncService ("simulator", serve --simulate only)
	└── "api-layer"
	    └── HTTPServerService ("http-server")

Each layer counts failures independently. A push client that cannot reach
its broker backs off without restarting the view, so downstream clients
keep receiving the last reconciled state and REST refreshes continue.

# Events

Supervisor events (service panics, terminations, backoff) are logged
through sutureslog onto an slog.Logger. The command wires that logger to
zerolog with logging.NewSlogLogger so supervisor events share the
application's log format.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
	    FailureThreshold: cfg.Supervisor.FailureThreshold,
	    ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	tree.AddPushService(pushClient)
	tree.AddViewService(view)
	tree.AddViewService(hub)
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Supervisor.ShutdownTimeout))
	err = tree.Serve(ctx)
*/
package supervisor
