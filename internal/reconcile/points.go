// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package reconcile

import (
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tomtom215/threattrace/internal/models"
)

// DefaultMapWindow is the number of distinct coordinates kept on the map.
const DefaultMapWindow = 500

// coord is the exact-equality identity of a map point.
type coord struct {
	lat float64
	lng float64
}

func coordOf(p *models.GeoPoint) coord {
	return coord{lat: p.Lat, lng: p.Lng}
}

// PointAggregator merges geolocated threat observations, coalescing repeats
// at the same coordinate into a count. It keeps a rolling window of the most
// recently observed coordinates.
//
// PointAggregator is not safe for concurrent use. The dashboard view
// serializes access to it.
type PointAggregator struct {
	window int
	points *lru.Cache[coord, *models.GeoPoint]

	// selected coordinates persist across ReplaceAll
	selected map[coord]struct{}

	evicted uint64
}

// NewPointAggregator creates an aggregator keeping at most window distinct
// coordinates. A window of zero or less disables the cap.
func NewPointAggregator(window int) *PointAggregator {
	size := window
	if size <= 0 {
		size = math.MaxInt32
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[coord, *models.GeoPoint](size)
	return &PointAggregator{
		window:   window,
		points:   cache,
		selected: make(map[coord]struct{}),
	}
}

// Observe merges one observation. A repeat at an existing coordinate adds
// the observation's count (or 1 when it carries none) and upgrades the stored
// severity only if the new one outranks it; severity is never downgraded.
func (a *PointAggregator) Observe(p models.GeoPoint) {
	key := coordOf(&p)
	inc := p.Count
	if inc < 1 {
		inc = 1
	}

	if existing, ok := a.points.Get(key); ok {
		existing.Count += inc
		if p.Severity.Outranks(existing.Severity) {
			existing.Severity = p.Severity
		}
		if p.Timestamp != "" {
			existing.Timestamp = p.Timestamp
		}
		if existing.ID == "" {
			existing.ID = p.ID
		}
		if existing.EventID == "" {
			existing.EventID = p.EventID
		}
		return
	}

	stored := p
	stored.Count = inc
	stored.Selected = false
	if stored.Severity == "" {
		stored.Severity = models.SeverityUnknown
	}
	if a.points.Add(key, &stored) {
		a.evicted++
	}
}

// ReplaceAll swaps the aggregate set for a bulk load that already carries
// authoritative counts. points[0] is treated as the most recent observation.
// Coordinates repeated inside the load are coalesced as Observe would.
// Selection markers survive the replacement.
func (a *PointAggregator) ReplaceAll(points []models.GeoPoint) {
	a.points.Purge()
	for i := len(points) - 1; i >= 0; i-- {
		a.Observe(points[i])
	}
}

// Select flags the point at (lat, lng) as selected.
func (a *PointAggregator) Select(lat, lng float64) {
	a.selected[coord{lat: lat, lng: lng}] = struct{}{}
}

// Deselect clears every selection marker.
func (a *PointAggregator) Deselect() {
	clear(a.selected)
}

// Lookup returns the aggregated point at (lat, lng) without touching recency.
func (a *PointAggregator) Lookup(lat, lng float64) (models.GeoPoint, bool) {
	key := coord{lat: lat, lng: lng}
	p, ok := a.points.Peek(key)
	if !ok {
		return models.GeoPoint{}, false
	}
	out := *p
	_, out.Selected = a.selected[key]
	return out, true
}

// Snapshot returns the aggregated points, most recently observed first.
func (a *PointAggregator) Snapshot() []models.GeoPoint {
	keys := a.points.Keys()
	out := make([]models.GeoPoint, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		p, ok := a.points.Peek(keys[i])
		if !ok {
			continue
		}
		cp := *p
		_, cp.Selected = a.selected[keys[i]]
		out = append(out, cp)
	}
	return out
}

// Len returns the number of distinct coordinates held.
func (a *PointAggregator) Len() int {
	return a.points.Len()
}

// Window returns the configured recency window; zero means unbounded.
func (a *PointAggregator) Window() int {
	if a.window < 0 {
		return 0
	}
	return a.window
}

// Evicted returns how many coordinates fell out of the recency window.
func (a *PointAggregator) Evicted() uint64 {
	return a.evicted
}
