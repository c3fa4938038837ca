// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/threattrace/internal/channel"
	"github.com/tomtom215/threattrace/internal/fetch"
	"github.com/tomtom215/threattrace/internal/logging"
	"github.com/tomtom215/threattrace/internal/models"
	"github.com/tomtom215/threattrace/internal/reconcile"
)

var (
	// ErrAlreadyMounted is returned by Mount on a mounted view.
	ErrAlreadyMounted = errors.New("dashboard view already mounted")
	// ErrNotMounted is returned by operations that need a mounted view.
	ErrNotMounted = errors.New("dashboard view not mounted")
	// ErrUnknownPoint is returned when selecting a coordinate with no point.
	ErrUnknownPoint = errors.New("no point at coordinate")
)

// Fetcher gathers one full REST refresh. *fetch.Coordinator implements it.
type Fetcher interface {
	RefreshAll(ctx context.Context) (*fetch.Result, error)
}

// Options configures a View.
type Options struct {
	FeedCapacity   int
	MapWindow      int
	TrendCapacity  int
	NoticeCapacity int

	// RefreshInterval is the periodic REST refresh cadence.
	RefreshInterval time.Duration
	// AlertRefreshInterval is the minimum spacing of alert-triggered
	// refreshes.
	AlertRefreshInterval time.Duration

	// DisableRefreshLoop leaves refreshing entirely to explicit Refresh
	// calls, for one-shot consumers.
	DisableRefreshLoop bool

	// Now is the clock used for notice times. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the standard view settings.
func DefaultOptions() Options {
	return Options{
		FeedCapacity:         reconcile.DefaultFeedCapacity,
		MapWindow:            reconcile.DefaultMapWindow,
		TrendCapacity:        48,
		NoticeCapacity:       50,
		RefreshInterval:      30 * time.Second,
		AlertRefreshInterval: 5 * time.Second,
		Now:                  time.Now,
	}
}

func (o *Options) applyDefaults() {
	d := DefaultOptions()
	if o.FeedCapacity <= 0 {
		o.FeedCapacity = d.FeedCapacity
	}
	if o.TrendCapacity <= 0 {
		o.TrendCapacity = d.TrendCapacity
	}
	if o.NoticeCapacity <= 0 {
		o.NoticeCapacity = d.NoticeCapacity
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = d.RefreshInterval
	}
	if o.AlertRefreshInterval <= 0 {
		o.AlertRefreshInterval = d.AlertRefreshInterval
	}
	if o.Now == nil {
		o.Now = d.Now
	}
}

// View is one dashboard view session. It owns the feed, point map, counters,
// charts and notices, and serializes every mutation under one lock: each
// REST result and each push message applies atomically.
//
// Stores exist only while mounted. Unmount stops the refresh loop, drops the
// push handlers and discards the stores; REST results arriving afterwards
// are ignored.
type View struct {
	opts       Options
	fetcher    Fetcher
	channel    channel.Channel
	subscriber *ChannelSubscriber
	logger     *logging.ReconcileLogger

	alertLimiter *rate.Limiter
	trigger      chan struct{}
	alertTrigger chan struct{}

	// lifeMu serializes Mount and Unmount.
	lifeMu sync.Mutex

	mu          sync.Mutex
	s           *session
	epoch       uint64
	nextSeq     uint64
	lastApplied uint64
	mutations   uint64
	cancelLoop  context.CancelFunc
	loopDone    chan struct{}
	changeSeq   uint64

	obsMu     sync.RWMutex
	observers map[uint64]func(Change)
	nextObs   uint64

	queueMu    sync.Mutex
	pending    []changeBatch
	delivering bool
}

// NewView creates an unmounted view. ch may be nil for a REST-only view.
func NewView(fetcher Fetcher, ch channel.Channel, opts Options) *View {
	opts.applyDefaults()
	v := &View{
		opts:         opts,
		fetcher:      fetcher,
		channel:      ch,
		logger:       logging.NewReconcileLogger(),
		alertLimiter: rate.NewLimiter(rate.Every(opts.AlertRefreshInterval), 1),
		trigger:      make(chan struct{}, 1),
		alertTrigger: make(chan struct{}, 1),
		observers:    make(map[uint64]func(Change)),
	}
	v.subscriber = NewChannelSubscriber(v)
	return v
}

// Options returns the effective options.
func (v *View) Options() Options {
	return v.opts
}

// Mounted reports whether the view currently holds stores.
func (v *View) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.s != nil
}

// Mount creates fresh stores, subscribes to the push channel and starts the
// refresh loop, which refreshes immediately and then every RefreshInterval.
// The loop stops when ctx is canceled or Unmount is called.
func (v *View) Mount(ctx context.Context) error {
	v.lifeMu.Lock()
	defer v.lifeMu.Unlock()

	v.mu.Lock()
	if v.s != nil {
		v.mu.Unlock()
		return ErrAlreadyMounted
	}
	v.epoch++
	v.s = newSession(&v.opts)
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	v.cancelLoop = cancel
	v.loopDone = done
	epoch := v.epoch
	v.collect(ChangeMount)
	v.mu.Unlock()

	log := logging.WithComponent("dashboard")
	if v.channel != nil {
		if err := v.subscriber.Subscribe(v.channel); err != nil {
			log.Warn().Err(err).Uint64("epoch", epoch).Msg("push subscription not registered")
		}
	}

	if v.opts.DisableRefreshLoop {
		close(done)
	} else {
		go v.refreshLoop(loopCtx, epoch, done)
	}

	v.notify()
	log.Info().Uint64("epoch", epoch).Msg("dashboard view mounted")
	return nil
}

// Unmount tears the session down. It is idempotent. It must not be called
// from an observer.
func (v *View) Unmount() {
	v.lifeMu.Lock()
	defer v.lifeMu.Unlock()

	v.mu.Lock()
	if v.s == nil {
		v.mu.Unlock()
		return
	}
	v.s = nil
	cancel, done := v.cancelLoop, v.loopDone
	v.cancelLoop, v.loopDone = nil, nil
	v.collect(ChangeUnmount)
	v.mu.Unlock()

	v.subscriber.Unsubscribe()
	if cancel != nil {
		cancel()
		<-done
	}

	v.notify()
	log := logging.WithComponent("dashboard")
	log.Info().Msg("dashboard view unmounted")
}

// Serve implements suture.Service: it mounts the view, holds it until ctx
// is canceled, then unmounts.
func (v *View) Serve(ctx context.Context) error {
	if err := v.Mount(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	v.Unmount()
	return ctx.Err()
}

func (v *View) String() string {
	return "dashboard-view"
}

// Snapshot returns a consistent copy of the whole view. An unmounted view
// yields empty collections and Mounted false.
func (v *View) Snapshot() models.ViewSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.s == nil {
		return models.ViewSnapshot{
			Feed:       []models.Event{},
			Points:     []models.GeoPoint{},
			Stats:      models.DashboardStats{},
			Charts:     models.Charts{Trends: []models.TrendPoint{}, Types: []models.ThreatTypeCount{}},
			TopThreats: []models.TopThreat{},
			Notices:    []models.Notice{},
			RefreshSeq: v.lastApplied,
		}
	}
	return models.ViewSnapshot{
		Mounted:    true,
		Feed:       v.s.feed.Snapshot(),
		Points:     v.s.points.Snapshot(),
		Stats:      v.s.stats.Clone(),
		Charts:     v.s.charts(),
		TopThreats: append([]models.TopThreat{}, v.s.top...),
		Notices:    append([]models.Notice{}, v.s.notices...),
		RefreshSeq: v.lastApplied,
		LastSource: v.s.locationsSource,
	}
}

// FeedStats returns the activity feed counters of the current session.
func (v *View) FeedStats() (reconcile.LogStats, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.s == nil {
		return reconcile.LogStats{}, ErrNotMounted
	}
	return v.s.feed.Stats(), nil
}

// SelectPoint marks the point at (lat, lng) as selected.
func (v *View) SelectPoint(lat, lng float64) (models.GeoPoint, error) {
	v.mu.Lock()
	if v.s == nil {
		v.mu.Unlock()
		return models.GeoPoint{}, ErrNotMounted
	}
	if _, ok := v.s.points.Lookup(lat, lng); !ok {
		v.mu.Unlock()
		return models.GeoPoint{}, ErrUnknownPoint
	}
	v.s.points.Deselect()
	v.s.points.Select(lat, lng)
	p, _ := v.s.points.Lookup(lat, lng)
	v.collect(ChangePoints)
	v.mu.Unlock()

	v.notify()
	return p, nil
}

// ClearSelection removes every selection marker.
func (v *View) ClearSelection() error {
	v.mu.Lock()
	if v.s == nil {
		v.mu.Unlock()
		return ErrNotMounted
	}
	v.s.points.Deselect()
	v.collect(ChangePoints)
	v.mu.Unlock()

	v.notify()
	return nil
}

// DismissNotice removes a notice by ID and reports whether it existed.
func (v *View) DismissNotice(id string) (bool, error) {
	v.mu.Lock()
	if v.s == nil {
		v.mu.Unlock()
		return false, ErrNotMounted
	}
	ok := v.s.dismissNotice(id)
	if ok {
		v.collect(ChangeNotices)
	}
	v.mu.Unlock()

	v.notify()
	return ok, nil
}
