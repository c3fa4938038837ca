// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package dashboard

import (
	"sort"

	"github.com/tomtom215/threattrace/internal/models"
)

// ChangeKind names the part of the view a mutation touched.
type ChangeKind string

// Change kinds.
const (
	ChangeMount      ChangeKind = "mount"
	ChangeUnmount    ChangeKind = "unmount"
	ChangeFeed       ChangeKind = "feed"
	ChangePoints     ChangeKind = "points"
	ChangeStats      ChangeKind = "stats"
	ChangeCharts     ChangeKind = "charts"
	ChangeTopThreats ChangeKind = "top_threats"
	ChangeNotices    ChangeKind = "notices"
	ChangeRefresh    ChangeKind = "refresh"
)

// Change describes one store mutation. Data is a copy of the changed
// section taken under the view lock, so observers never see a partial apply.
// Seq numbers mutations in the order they took the lock; every Change of one
// mutation shares it, and observers receive them in increasing Seq order.
type Change struct {
	Kind       ChangeKind `json:"kind"`
	Seq        uint64     `json:"seq"`
	RefreshSeq uint64     `json:"refresh_seq"`
	Data       any        `json:"data,omitempty"`
}

// changeBatch is the output of one mutation.
type changeBatch struct {
	seq     uint64
	changes []Change
}

// Observe registers fn to be called after every mutation, outside the view
// lock. Changes reach observers one at a time in Seq order, usually on the
// goroutine that made the change; while another goroutine is delivering, it
// delivers on that producer's behalf. fn must not block and must not mount
// or unmount the view. The returned function removes the observer.
func (v *View) Observe(fn func(Change)) func() {
	v.obsMu.Lock()
	v.nextObs++
	id := v.nextObs
	v.observers[id] = fn
	v.obsMu.Unlock()

	return func() {
		v.obsMu.Lock()
		delete(v.observers, id)
		v.obsMu.Unlock()
	}
}

func (v *View) hasObservers() bool {
	v.obsMu.RLock()
	defer v.obsMu.RUnlock()
	return len(v.observers) > 0
}

// collect takes the next change sequence number and queues Change values
// for kinds. Caller holds v.mu and calls notify after releasing it.
func (v *View) collect(kinds ...ChangeKind) {
	v.changeSeq++
	if len(kinds) == 0 || !v.hasObservers() {
		return
	}
	b := changeBatch{seq: v.changeSeq, changes: make([]Change, 0, len(kinds))}
	for _, k := range kinds {
		c := Change{Kind: k, Seq: b.seq, RefreshSeq: v.lastApplied}
		if v.s != nil {
			switch k {
			case ChangeFeed:
				c.Data = v.s.feed.Snapshot()
			case ChangePoints:
				c.Data = v.s.points.Snapshot()
			case ChangeStats:
				c.Data = v.s.stats.Clone()
			case ChangeCharts:
				c.Data = v.s.charts()
			case ChangeTopThreats:
				c.Data = append([]models.TopThreat{}, v.s.top...)
			case ChangeNotices:
				c.Data = append([]models.Notice{}, v.s.notices...)
			case ChangeRefresh:
				c.Data = map[string]any{"locations_source": v.s.locationsSource}
			}
		}
		b.changes = append(b.changes, c)
	}

	v.queueMu.Lock()
	v.pending = append(v.pending, b)
	v.queueMu.Unlock()
}

// notify drains the change queue unless another goroutine already is.
func (v *View) notify() {
	v.queueMu.Lock()
	if v.delivering {
		v.queueMu.Unlock()
		return
	}
	v.delivering = true
	defer func() {
		v.delivering = false
		v.queueMu.Unlock()
	}()

	for len(v.pending) > 0 {
		b := v.pending[0]
		v.pending[0] = changeBatch{}
		v.pending = v.pending[1:]
		v.queueMu.Unlock()
		v.deliver(b)
		v.queueMu.Lock()
	}
}

func (v *View) deliver(b changeBatch) {
	v.obsMu.RLock()
	ids := make([]uint64, 0, len(v.observers))
	for id := range v.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(Change), len(ids))
	for i, id := range ids {
		fns[i] = v.observers[id]
	}
	v.obsMu.RUnlock()

	for _, c := range b.changes {
		for _, fn := range fns {
			fn(c)
		}
	}
}
