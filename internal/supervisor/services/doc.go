// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

// Package services adapts components that do not implement suture.Service
// themselves.
//
//   - HTTPServerService wraps an *http.Server
//   - FuncService wraps a plain run function
//
// The dashboard view, websocket hub, push clients and embedded NATS server
// implement Serve directly and are added to the tree as-is.
package services
