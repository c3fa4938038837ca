// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package dashboard

import (
	"context"
	"time"

	"github.com/tomtom215/threattrace/internal/fetch"
	"github.com/tomtom215/threattrace/internal/logging"
	"github.com/tomtom215/threattrace/internal/metrics"
	"github.com/tomtom215/threattrace/internal/models"
	"github.com/tomtom215/threattrace/internal/reconcile"
)

// RefreshFailedMessage is the notice raised when a refresh fails.
const RefreshFailedMessage = "Failed to load dashboard data"

// RefreshOutcome says what happened to one refresh.
type RefreshOutcome string

// Refresh outcomes, also used as metric labels.
const (
	OutcomeApplied   RefreshOutcome = "applied"
	OutcomeFailed    RefreshOutcome = "failed"
	OutcomeStale     RefreshOutcome = "stale"
	OutcomeUnmounted RefreshOutcome = "unmounted"
	OutcomeCanceled  RefreshOutcome = "canceled"
)

// RefreshToken identifies one refresh. Tokens are strictly increasing in
// the order BeginRefresh hands them out.
type RefreshToken struct {
	Seq uint64

	epoch     uint64
	mutations uint64
	started   time.Time
}

// BeginRefresh reserves the next refresh sequence number.
func (v *View) BeginRefresh() (RefreshToken, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.s == nil {
		return RefreshToken{}, ErrNotMounted
	}
	v.nextSeq++
	return RefreshToken{
		Seq:       v.nextSeq,
		epoch:     v.epoch,
		mutations: v.mutations,
		started:   time.Now(),
	}, nil
}

// discardReason returns why tok may not be applied, or "". Caller holds v.mu.
func (v *View) discardReason(tok RefreshToken) RefreshOutcome {
	if v.s == nil || tok.epoch != v.epoch {
		return OutcomeUnmounted
	}
	if tok.Seq <= v.lastApplied {
		return OutcomeStale
	}
	return ""
}

// ApplyRefresh installs a REST result. It is discarded when the view was
// unmounted since tok was issued, or when a newer refresh has already been
// applied. Counters written and map points observed by push after tok was
// issued are kept.
func (v *View) ApplyRefresh(ctx context.Context, tok RefreshToken, res *fetch.Result) RefreshOutcome {
	if res.CorrelationID != "" {
		ctx = logging.ContextWithCorrelationID(ctx, res.CorrelationID)
	}

	v.mu.Lock()
	if reason := v.discardReason(tok); reason != "" {
		v.mu.Unlock()
		v.logger.LogRefreshDiscarded(ctx, tok.Seq, string(reason))
		metrics.RecordRefresh(string(reason), 0)
		return reason
	}

	s := v.s
	replayed := s.replacePoints(res.Locations, tok.mutations)
	s.locationsSource = res.LocationsSource
	s.replaceTrends(res.Trends)
	s.types = append(make([]models.ThreatTypeCount, 0, len(res.Types)), res.Types...)
	s.severity = res.Severity

	guarded := 0
	patch := make(models.StatsPatch, len(res.Stats))
	for k, val := range res.Stats {
		if s.statOwner[k] > tok.mutations {
			guarded++
			continue
		}
		patch[k] = val
	}
	s.stats = reconcile.ApplyPatch(s.stats, patch)

	s.top = append(make([]models.TopThreat, 0, len(res.TopThreats)), res.TopThreats...)
	events := make([]models.Event, len(res.TopThreats))
	for i := range res.TopThreats {
		events[i] = res.TopThreats[i].AsEvent()
	}
	inserted := insertBatch(s.feed, events)

	v.lastApplied = tok.Seq
	s.updateGauges()
	v.collect(ChangePoints, ChangeStats, ChangeCharts, ChangeTopThreats, ChangeFeed, ChangeRefresh)
	v.mu.Unlock()

	v.recordInserts("refresh", inserted)
	if guarded > 0 {
		metrics.StatsGuarded.Add(float64(guarded))
	}
	took := res.Duration
	if took <= 0 {
		took = time.Since(tok.started)
	}
	metrics.RecordRefresh(string(OutcomeApplied), took)
	v.logger.LogRefreshApplied(ctx, tok.Seq, res.LocationsSource, guarded, replayed, took)

	v.notify()
	return OutcomeApplied
}

// FailRefresh records a failed refresh. Prior state is left in place and a
// notice is raised, unless the failure is already outdated.
func (v *View) FailRefresh(ctx context.Context, tok RefreshToken, err error) RefreshOutcome {
	v.mu.Lock()
	if reason := v.discardReason(tok); reason != "" {
		v.mu.Unlock()
		v.logger.LogRefreshDiscarded(ctx, tok.Seq, string(reason))
		metrics.RecordRefresh(string(reason), 0)
		return reason
	}
	v.s.addNotice(RefreshFailedMessage, models.NoticeError, v.opts.Now())
	v.collect(ChangeNotices)
	v.mu.Unlock()

	metrics.RecordRefresh(string(OutcomeFailed), time.Since(tok.started))
	v.logger.LogRefreshFailed(ctx, tok.Seq, err)

	v.notify()
	return OutcomeFailed
}

// Refresh runs one full refresh cycle synchronously and returns the fetch
// error, if any.
func (v *View) Refresh(ctx context.Context) (RefreshOutcome, error) {
	tok, err := v.BeginRefresh()
	if err != nil {
		return OutcomeUnmounted, err
	}
	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}

	res, err := v.fetcher.RefreshAll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			v.logger.LogRefreshDiscarded(ctx, tok.Seq, string(OutcomeCanceled))
			metrics.RecordRefresh(string(OutcomeCanceled), 0)
			return OutcomeCanceled, err
		}
		return v.FailRefresh(ctx, tok, err), err
	}
	return v.ApplyRefresh(ctx, tok, res), nil
}

// RequestRefresh asks the refresh loop for an immediate refresh. Requests
// made while one is pending are coalesced. It reports false when the view
// is not mounted.
func (v *View) RequestRefresh() bool {
	if !v.Mounted() {
		return false
	}
	select {
	case v.trigger <- struct{}{}:
	default:
	}
	return true
}

// requestAlertRefresh is RequestRefresh for alerts; the loop spaces these
// out by AlertRefreshInterval.
func (v *View) requestAlertRefresh() {
	select {
	case v.alertTrigger <- struct{}{}:
	default:
	}
}

func (v *View) refreshLoop(ctx context.Context, epoch uint64, done chan struct{}) {
	defer close(done)

	log := logging.WithComponent("dashboard")
	log.Debug().Uint64("epoch", epoch).Dur("interval", v.opts.RefreshInterval).Msg("refresh loop started")

	ticker := time.NewTicker(v.opts.RefreshInterval)
	defer ticker.Stop()

	// Outcomes are logged and counted by Refresh.
	run := func() { _, _ = v.Refresh(ctx) }

	run()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Uint64("epoch", epoch).Msg("refresh loop stopped")
			return
		case <-ticker.C:
			run()
		case <-v.trigger:
			run()
		case <-v.alertTrigger:
			if err := v.alertLimiter.Wait(ctx); err != nil {
				continue
			}
			run()
		}
	}
}
