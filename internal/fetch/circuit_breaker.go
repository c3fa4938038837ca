// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/threattrace/internal/logging"
	"github.com/tomtom215/threattrace/internal/metrics"
	"github.com/tomtom215/threattrace/internal/models"
	"github.com/tomtom215/threattrace/internal/validation"
)

// BreakerConfig tunes the per-endpoint circuit breakers.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval after which closed-state counts reset.
	Interval time.Duration
	// Timeout spent open before probing again.
	Timeout time.Duration
	// MinRequests before the failure ratio is considered.
	MinRequests uint32
	// FailureRatio at which the breaker opens.
	FailureRatio float64
}

// DefaultBreakerConfig returns the standard breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// BreakerClient is a Source that guards every endpoint of a Client with its
// own circuit breaker.
type BreakerClient struct {
	client   *Client
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

var _ Source = (*BreakerClient)(nil)

// NewBreakerClient wraps client.
func NewBreakerClient(client *Client, cfg BreakerConfig) *BreakerClient {
	def := DefaultBreakerConfig()
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = def.MaxRequests
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = def.MinRequests
	}
	if cfg.FailureRatio <= 0 || cfg.FailureRatio > 1 {
		cfg.FailureRatio = def.FailureRatio
	}

	b := &BreakerClient{
		client:   client,
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
	for _, endpoint := range []string{
		EndpointRecentLocations,
		EndpointThreatLocations,
		EndpointThreatTrends,
		EndpointThreatTypes,
		EndpointSeverityStats,
		EndpointStats,
		EndpointTopThreats,
		EndpointIngest,
	} {
		b.breakers[endpoint] = newBreaker("upstream-"+endpoint, cfg)
	}
	return b
}

func newBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker[any] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRatio
			if shouldTrip {
				logging.Warn().Str("breaker", name).Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		// Canceled callers and rejected request bodies say nothing about
		// upstream health.
		IsSuccessful: func(err error) bool {
			var verr *validation.RequestValidationError
			return err == nil || errors.Is(err, context.Canceled) || errors.As(err, &verr)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})
}

// State returns the breaker state of endpoint as a string.
func (b *BreakerClient) State(endpoint string) string {
	cb, ok := b.breakers[endpoint]
	if !ok {
		return "unknown"
	}
	return stateToString(cb.State())
}

// States returns the state of every breaker keyed by endpoint.
func (b *BreakerClient) States() map[string]string {
	out := make(map[string]string, len(b.breakers))
	for endpoint, cb := range b.breakers {
		out[endpoint] = stateToString(cb.State())
	}
	return out
}

func execute[T any](b *BreakerClient, endpoint string, fn func() (T, error)) (T, error) {
	var zero T
	cb := b.breakers[endpoint]

	result, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "rejected").Inc()
			logging.Warn().Str("breaker", cb.Name()).Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
			return zero, fmt.Errorf("%s: %w", endpoint, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cb.Name()).Set(float64(cb.Counts().ConsecutiveFailures))
		return zero, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cb.Name()).Set(0)

	out, ok := result.(T)
	if !ok && result != nil {
		return zero, fmt.Errorf("circuit breaker: unexpected result type for %s", endpoint)
	}
	return out, nil
}

func (b *BreakerClient) RecentLocations(ctx context.Context, hours int) ([]models.GeoPoint, error) {
	return execute(b, EndpointRecentLocations, func() ([]models.GeoPoint, error) {
		return b.client.RecentLocations(ctx, hours)
	})
}

func (b *BreakerClient) ThreatLocations(ctx context.Context) ([]models.GeoPoint, error) {
	return execute(b, EndpointThreatLocations, func() ([]models.GeoPoint, error) {
		return b.client.ThreatLocations(ctx)
	})
}

func (b *BreakerClient) ThreatTrends(ctx context.Context) ([]models.TrendPoint, error) {
	return execute(b, EndpointThreatTrends, func() ([]models.TrendPoint, error) {
		return b.client.ThreatTrends(ctx)
	})
}

func (b *BreakerClient) ThreatTypes(ctx context.Context) ([]models.ThreatTypeCount, error) {
	return execute(b, EndpointThreatTypes, func() ([]models.ThreatTypeCount, error) {
		return b.client.ThreatTypes(ctx)
	})
}

func (b *BreakerClient) SeverityStats(ctx context.Context) (models.SeverityBreakdown, error) {
	return execute(b, EndpointSeverityStats, func() (models.SeverityBreakdown, error) {
		return b.client.SeverityStats(ctx)
	})
}

func (b *BreakerClient) Stats(ctx context.Context) (models.StatsPatch, error) {
	return execute(b, EndpointStats, func() (models.StatsPatch, error) {
		return b.client.Stats(ctx)
	})
}

func (b *BreakerClient) TopThreats(ctx context.Context) ([]models.TopThreat, error) {
	return execute(b, EndpointTopThreats, func() ([]models.TopThreat, error) {
		return b.client.TopThreats(ctx)
	})
}

// IngestLocationEvent posts through the ingest breaker.
func (b *BreakerClient) IngestLocationEvent(ctx context.Context, in *models.LocationIngestRequest) (*models.LocationIngestResponse, error) {
	return execute(b, EndpointIngest, func() (*models.LocationIngestResponse, error) {
		return b.client.IngestLocationEvent(ctx, in)
	})
}

// stateToFloat maps breaker states to the gauge value: 0 closed,
// 1 half-open, 2 open.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
