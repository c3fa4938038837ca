// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package dashboard

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/threattrace/internal/metrics"
	"github.com/tomtom215/threattrace/internal/models"
	"github.com/tomtom215/threattrace/internal/reconcile"
)

// session holds the stores of one mounted view. It is not synchronized;
// View.mu guards every access.
type session struct {
	feed     *reconcile.BoundedEventLog
	points   *reconcile.PointAggregator
	stats    models.DashboardStats
	trends   []models.TrendPoint
	types    []models.ThreatTypeCount
	severity models.SeverityBreakdown
	top      []models.TopThreat
	notices  []models.Notice

	locationsSource string

	// statOwner maps a counter to the push mutation that last wrote it.
	statOwner map[string]uint64

	// pushed holds map observations from push, oldest first, until a refresh
	// begun after them has been applied.
	pushed []pushedPoint

	trendCap  int
	noticeCap int
}

func newSession(opts *Options) *session {
	return &session{
		feed:      reconcile.NewBoundedEventLog(opts.FeedCapacity),
		points:    reconcile.NewPointAggregator(opts.MapWindow),
		stats:     models.DashboardStats{},
		trends:    []models.TrendPoint{},
		types:     []models.ThreatTypeCount{},
		top:       []models.TopThreat{},
		notices:   []models.Notice{},
		statOwner: make(map[string]uint64),
		trendCap:  opts.TrendCapacity,
		noticeCap: opts.NoticeCapacity,
	}
}

// maxPushedPoints caps the push observations kept for replay while no
// refresh applies.
const maxPushedPoints = 1024

type pushedPoint struct {
	mutation uint64
	point    models.GeoPoint
}

// recordPush remembers a push observation made as mutation.
func (s *session) recordPush(mutation uint64, p models.GeoPoint) {
	s.pushed = append(s.pushed, pushedPoint{mutation: mutation, point: p})
	if over := len(s.pushed) - maxPushedPoints; over > 0 {
		s.pushed = append([]pushedPoint(nil), s.pushed[over:]...)
	}
}

// replacePoints installs a bulk load begun at mutation, then replays the
// push observations made after it. It returns how many were replayed.
// Observations the load already covered are dropped from the record.
func (s *session) replacePoints(points []models.GeoPoint, mutation uint64) int {
	s.points.ReplaceAll(points)
	keep := s.pushed[:0]
	for _, pp := range s.pushed {
		if pp.mutation > mutation {
			s.points.Observe(pp.point)
			keep = append(keep, pp)
		}
	}
	clear(s.pushed[len(keep):])
	s.pushed = keep
	return len(keep)
}

// appendTrend extends the trend series, dropping the oldest point past cap.
func (s *session) appendTrend(tp models.TrendPoint) {
	s.trends = append(s.trends, tp)
	if over := len(s.trends) - s.trendCap; over > 0 {
		s.trends = append([]models.TrendPoint(nil), s.trends[over:]...)
	}
}

// replaceTrends keeps the newest trendCap points of series.
func (s *session) replaceTrends(series []models.TrendPoint) {
	if over := len(series) - s.trendCap; over > 0 {
		series = series[over:]
	}
	s.trends = append(make([]models.TrendPoint, 0, len(series)), series...)
}

// addNotice prepends a notice, dropping the oldest past cap.
func (s *session) addNotice(msg string, sev models.NoticeLevel, now time.Time) models.Notice {
	n := models.Notice{
		ID:       uuid.NewString(),
		Message:  msg,
		Severity: sev,
		Time:     now.UTC().Format(time.RFC3339),
	}
	s.notices = append([]models.Notice{n}, s.notices...)
	if len(s.notices) > s.noticeCap {
		s.notices = s.notices[:s.noticeCap]
	}
	metrics.NoticesRaised.WithLabelValues(string(sev)).Inc()
	return n
}

func (s *session) dismissNotice(id string) bool {
	for i := range s.notices {
		if s.notices[i].ID == id {
			s.notices = append(s.notices[:i:i], s.notices[i+1:]...)
			return true
		}
	}
	return false
}

func (s *session) charts() models.Charts {
	return models.Charts{
		Trends:   append([]models.TrendPoint{}, s.trends...),
		Types:    append([]models.ThreatTypeCount{}, s.types...),
		Severity: s.severity,
	}
}

func (s *session) updateGauges() {
	metrics.UpdateStoreGauges(s.feed.Len(), s.points.Len())
}
