// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

/*
Package dashboard reconciles REST refreshes and push messages into one
dashboard view.

# View

A View owns the stores of one session: the activity feed
(reconcile.BoundedEventLog), the point map (reconcile.PointAggregator), the
counters, the chart series, the top-threats panel and the notices. Every
mutation takes the view lock, so one REST result or one push message applies
atomically and readers never observe a partial apply.

	view := dashboard.NewView(coordinator, pushChannel, dashboard.DefaultOptions())
	if err := view.Mount(ctx); err != nil { ... }
	defer view.Unmount()

Mount creates fresh stores, subscribes the view to the push channel and
starts the refresh loop: an immediate refresh, then one every
RefreshInterval (30s). Unmount stops the loop, removes the push handlers and
drops the stores.

# Refresh Sequence

Each refresh takes a token from BeginRefresh. ApplyRefresh discards a result
when the view was unmounted after the token was issued, or when a newer
refresh was already applied. REST counters never overwrite a counter that a
push update wrote after the token was issued.

A failed refresh leaves the previous state in place and raises the notice
"Failed to load dashboard data".

# Push Messages

ChannelSubscriber registers one handler per push event. Each handler decodes
its payload with payload.Decode and hands it to View.Apply:

	stats_update      -> counters patch
	threat_location   -> point map, plus a feed event when it has a message
	activity_update   -> feed (one event or a batch)
	scan_progress     -> feed
	new_alert         -> feed, notice, throttled refresh
	tamper_alert      -> feed, notice, throttled refresh
	ransomware_alert  -> feed, notice, throttled refresh
	system_log        -> feed for WARNING, ERROR and CRITICAL only
	chart_update      -> trend series, type or severity chart

Undecodable payloads are logged and counted, then dropped.

# Observers

Observe registers a callback that receives a Change after every mutation,
outside the lock. The websocket hub uses it to broadcast updates.
*/
package dashboard
