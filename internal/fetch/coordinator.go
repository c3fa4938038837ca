// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/threattrace/internal/logging"
	"github.com/tomtom215/threattrace/internal/metrics"
	"github.com/tomtom215/threattrace/internal/models"
)

// Where the locations of a refresh came from.
const (
	LocationsRecent  = "recent"
	LocationsThreats = "threat-locations"
	LocationsNone    = "none"
)

// Result is the data gathered by one successful RefreshAll.
type Result struct {
	CorrelationID string
	Duration      time.Duration

	Locations       []models.GeoPoint
	LocationsSource string
	Trends          []models.TrendPoint
	Types           []models.ThreatTypeCount
	Severity        models.SeverityBreakdown
	Stats           models.StatsPatch
	TopThreats      []models.TopThreat
}

// Coordinator fans a refresh out over a Source.
type Coordinator struct {
	source Source
	hours  int
	logger zerolog.Logger
}

// NewCoordinator creates a coordinator. hours is clamped to 1..168.
func NewCoordinator(source Source, hours int) *Coordinator {
	return &Coordinator{
		source: source,
		hours:  ClampHours(hours),
		logger: logging.WithComponent("fetch"),
	}
}

// Hours returns the recent-locations window in use.
func (c *Coordinator) Hours() int {
	return c.hours
}

// RefreshAll fetches every dataset in parallel. Locations never fail the
// refresh; any other failure returns a *RefreshError and a nil Result.
// Overlapping calls are safe.
func (c *Coordinator) RefreshAll(ctx context.Context) (*Result, error) {
	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	correlationID := logging.CorrelationIDFromContext(ctx)
	log := c.logger.With().Str("correlation_id", correlationID).Logger()
	start := time.Now()

	res := &Result{CorrelationID: correlationID}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures = make(map[string]error)
	)
	fail := func(endpoint string, err error) {
		mu.Lock()
		failures[endpoint] = err
		mu.Unlock()
	}

	wg.Add(6)
	go func() {
		defer wg.Done()
		res.Locations, res.LocationsSource = c.locations(ctx, log)
	}()
	go func() {
		defer wg.Done()
		v, err := c.source.ThreatTrends(ctx)
		if err != nil {
			fail(EndpointThreatTrends, err)
			return
		}
		res.Trends = v
	}()
	go func() {
		defer wg.Done()
		v, err := c.source.ThreatTypes(ctx)
		if err != nil {
			fail(EndpointThreatTypes, err)
			return
		}
		res.Types = v
	}()
	go func() {
		defer wg.Done()
		v, err := c.source.SeverityStats(ctx)
		if err != nil {
			fail(EndpointSeverityStats, err)
			return
		}
		res.Severity = v
	}()
	go func() {
		defer wg.Done()
		v, err := c.source.Stats(ctx)
		if err != nil {
			fail(EndpointStats, err)
			return
		}
		res.Stats = v
	}()
	go func() {
		defer wg.Done()
		v, err := c.source.TopThreats(ctx)
		if err != nil {
			fail(EndpointTopThreats, err)
			return
		}
		res.TopThreats = v
	}()
	wg.Wait()

	res.Duration = time.Since(start)
	metrics.LocationsSource.WithLabelValues(res.LocationsSource).Inc()

	if len(failures) > 0 {
		rerr := &RefreshError{}
		for _, endpoint := range []string{
			EndpointThreatTrends,
			EndpointThreatTypes,
			EndpointSeverityStats,
			EndpointStats,
			EndpointTopThreats,
		} {
			if err, ok := failures[endpoint]; ok {
				rerr.Failures = append(rerr.Failures, &EndpointError{Endpoint: endpoint, Err: err})
			}
		}
		log.Debug().Strs("endpoints", rerr.Endpoints()).Dur("took", res.Duration).Msg("refresh fetch failed")
		return nil, rerr
	}

	if res.Trends == nil {
		res.Trends = []models.TrendPoint{}
	}
	if res.Types == nil {
		res.Types = []models.ThreatTypeCount{}
	}
	if res.Stats == nil {
		res.Stats = models.StatsPatch{}
	}
	if res.TopThreats == nil {
		res.TopThreats = []models.TopThreat{}
	}

	log.Debug().
		Str("locations_source", res.LocationsSource).
		Int("locations", len(res.Locations)).
		Dur("took", res.Duration).
		Msg("refresh fetch complete")
	return res, nil
}

// locations runs the fallback chain: recent, then threat-locations, then
// an empty set.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (c *Coordinator) locations(ctx context.Context, log zerolog.Logger) ([]models.GeoPoint, string) {
	points, err := c.source.RecentLocations(ctx, c.hours)
	if err == nil {
		return nonNilPoints(points), LocationsRecent
	}
	log.Debug().Err(err).Msg("recent locations unavailable, trying threat locations")

	points, err = c.source.ThreatLocations(ctx)
	if err == nil {
		return nonNilPoints(points), LocationsThreats
	}
	log.Warn().Err(err).Msg("no location source available")
	return []models.GeoPoint{}, LocationsNone
}

func nonNilPoints(p []models.GeoPoint) []models.GeoPoint {
	if p == nil {
		return []models.GeoPoint{}
	}
	return p
}
