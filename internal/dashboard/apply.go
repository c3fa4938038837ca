// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package dashboard

import (
	"fmt"

	"github.com/tomtom215/threattrace/internal/metrics"
	"github.com/tomtom215/threattrace/internal/models"
	"github.com/tomtom215/threattrace/internal/payload"
	"github.com/tomtom215/threattrace/internal/reconcile"
)

// insertResult records the outcome of one feed insert for logging after
// the lock is released.
type insertResult struct {
	key      string
	inserted bool
}

// Apply routes one decoded push payload to the stores. The whole payload
// applies atomically. It returns ErrNotMounted when the view has no stores.
func (v *View) Apply(p payload.Payload) error {
	event := p.EventName()

	v.mu.Lock()
	if v.s == nil {
		v.mu.Unlock()
		metrics.RecordPushDropped(event, "unmounted")
		return ErrNotMounted
	}
	s := v.s

	var (
		kinds   []ChangeKind
		results []insertResult
		alert   bool
		ignored string
	)
	insert := func(ev models.Event) {
		ok := s.feed.Insert(ev)
		results = append(results, insertResult{key: reconcile.Key(&ev, 0), inserted: ok})
		if ok {
			kinds = append(kinds, ChangeFeed)
		}
	}

	switch m := p.(type) {
	case payload.StatsUpdate:
		keys := reconcile.PatchKeys(m.Patch)
		if len(keys) > 0 {
			v.mutations++
			for _, k := range keys {
				s.statOwner[k] = v.mutations
			}
			s.stats = reconcile.ApplyPatch(s.stats, m.Patch)
			kinds = append(kinds, ChangeStats)
		}
		if len(m.Skipped) > 0 {
			ignored = fmt.Sprintf("non-scalar counters %v", m.Skipped)
		}

	case payload.ThreatLocation:
		v.mutations++
		s.recordPush(v.mutations, m.Point)
		s.points.Observe(m.Point)
		kinds = append(kinds, ChangePoints)
		if m.Event != nil {
			insert(*m.Event)
		}

	case payload.ActivityUpdate:
		batch := insertBatch(s.feed, m.Events)
		results = append(results, batch...)
		if len(batch) > 0 {
			kinds = append(kinds, ChangeFeed)
		}

	case payload.ScanProgress:
		insert(m.AsEvent())

	case payload.Alert:
		insert(m.AsEvent())
		s.addNotice(m.NoticeText(), models.NoticeLevelFor(m.Severity), v.opts.Now())
		kinds = append(kinds, ChangeNotices)
		alert = true

	case payload.SystemLog:
		if !m.Relevant() {
			ignored = "log level " + m.Level
			break
		}
		insert(m.AsEvent())

	case payload.ChartUpdate:
		switch m.Chart {
		case payload.ChartTrends:
			s.appendTrend(*m.Trend)
		case payload.ChartTypes:
			s.types = append(make([]models.ThreatTypeCount, 0, len(m.Types)), m.Types...)
		case payload.ChartSeverity:
			s.severity = *m.Severity
		}
		kinds = append(kinds, ChangeCharts)
	}

	s.updateGauges()
	v.collect(dedupKinds(kinds)...)
	v.mu.Unlock()

	v.recordInserts(event, results)
	if ignored != "" {
		v.logger.LogPushIgnored(event, ignored)
		if _, ok := p.(payload.SystemLog); ok {
			metrics.RecordPushDropped(event, "filtered")
		}
	} else {
		v.logger.LogPushReceived(event)
	}
	if alert {
		v.requestAlertRefresh()
	}

	v.notify()
	return nil
}

// insertBatch runs feed.InsertBatch and reports the outcome per event.
func insertBatch(feed *reconcile.BoundedEventLog, events []models.Event) []insertResult {
	results := make([]insertResult, len(events))
	seen := make(map[string]bool, len(events))
	for i := range events {
		key := reconcile.Key(&events[i], i)
		results[i] = insertResult{key: key, inserted: !seen[key] && !feed.Contains(key)}
		seen[key] = true
	}
	feed.InsertBatch(events)
	return results
}

func (v *View) recordInserts(event string, results []insertResult) {
	for _, r := range results {
		metrics.RecordFeedInsert(r.inserted)
		if !r.inserted {
			v.logger.LogDuplicate(event, r.key)
		}
	}
}

func dedupKinds(kinds []ChangeKind) []ChangeKind {
	seen := make(map[ChangeKind]bool, len(kinds))
	out := kinds[:0]
	for _, k := range kinds {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
