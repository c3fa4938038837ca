// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

/*
Package reconcile provides the bounded, deduplicated stores behind the
dashboard views.

Components:

  - Key: deterministic deduplication identity of an event
  - BoundedEventLog: activity feed, newest first, capacity-limited, O(1) dedup
  - PointAggregator: map points coalesced by exact coordinate with a
    severity that only upgrades, inside a rolling recency window
  - ApplyPatch: pure merge of a partial counter update

Usage:

	feed := reconcile.NewBoundedEventLog(reconcile.DefaultFeedCapacity)
	feed.InsertBatch(bulk)          // REST load, batch order preserved
	feed.Insert(ev)                 // push event, false on duplicate

	points := reconcile.NewPointAggregator(reconcile.DefaultMapWindow)
	points.ReplaceAll(restPoints)   // keeps selection markers
	points.Observe(pushed)          // count += 1, severity only upgrades

	stats = reconcile.ApplyPatch(stats, patch) // nil entries never overwrite

Thread Safety:

None of the stores lock. They are owned by a single dashboard view, which
serializes every mutation and snapshot.
*/
package reconcile
