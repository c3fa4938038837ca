// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/threattrace/internal/api"
	"github.com/tomtom215/threattrace/internal/channel"
	"github.com/tomtom215/threattrace/internal/config"
	"github.com/tomtom215/threattrace/internal/dashboard"
	"github.com/tomtom215/threattrace/internal/fetch"
	"github.com/tomtom215/threattrace/internal/simulate"
	"github.com/tomtom215/threattrace/internal/supervisor"
)

// upstream is the REST client, optionally guarded by circuit breakers.
type upstream struct {
	client   *fetch.Client
	breakers *fetch.BreakerClient
}

func newUpstream(cfg *config.Config) (*upstream, error) {
	client, err := fetch.NewClient(fetch.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
	})
	if err != nil {
		return nil, err
	}
	up := &upstream{client: client}
	if cfg.Breaker.Enabled {
		up.breakers = fetch.NewBreakerClient(client, fetch.BreakerConfig{
			MaxRequests:  cfg.Breaker.MaxRequests,
			Interval:     cfg.Breaker.Interval,
			Timeout:      cfg.Breaker.Timeout,
			MinRequests:  cfg.Breaker.MinRequests,
			FailureRatio: cfg.Breaker.FailureThreshold,
		})
	}
	return up, nil
}

func (u *upstream) source() fetch.Source {
	if u.breakers != nil {
		return u.breakers
	}
	return u.client
}

func (u *upstream) ingester() simulate.Ingester {
	if u.breakers != nil {
		return u.breakers
	}
	return u.client
}

// breakerStates is nil when breakers are disabled so health omits them.
func (u *upstream) breakerStates() api.BreakerStates {
	if u.breakers == nil {
		return nil
	}
	return u.breakers
}

// pushChannel is a push client the supervisor can run.
type pushChannel interface {
	channel.Channel
	suture.Service
	IsConnected() bool
}

// newPush builds the configured push client. Both results are nil for
// PUSH_TRANSPORT=none. The embedded server, when configured, is already
// accepting connections.
func newPush(cfg *config.Config) (pushChannel, *channel.EmbeddedServer, error) {
	switch cfg.Push.Transport {
	case config.TransportNone:
		return nil, nil, nil

	case config.TransportNATS:
		n := cfg.Push.NATS
		url := n.URL
		var embedded *channel.EmbeddedServer
		if n.Embedded {
			var err error
			embedded, err = channel.NewEmbeddedServer(channel.EmbeddedServerConfig{
				Host: n.EmbeddedHost,
				Port: n.EmbeddedPort,
			})
			if err != nil {
				return nil, nil, fmt.Errorf("failed to start embedded NATS: %w", err)
			}
			url = embedded.ClientURL()
		}
		client, err := channel.NewNATSClient(channel.NATSConfig{
			URL:           url,
			SubjectPrefix: n.SubjectPrefix,
			MaxReconnects: n.MaxReconnects,
			ReconnectWait: n.ReconnectWait,
		})
		if err != nil {
			if embedded != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				_ = embedded.Shutdown(ctx)
				cancel()
			}
			return nil, nil, err
		}
		return client, embedded, nil

	default:
		ws := cfg.Push.WebSocket
		wc := channel.DefaultWebSocketConfig(ws.URL)
		wc.Token = cfg.API.Token
		wc.ReconnectMin = ws.ReconnectMin
		wc.ReconnectMax = ws.ReconnectMax
		wc.ReadTimeout = ws.ReadTimeout
		wc.PingInterval = ws.PingInterval
		client, err := channel.NewWebSocketClient(wc)
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	}
}

func viewOptions(cfg *config.Config) dashboard.Options {
	opts := dashboard.DefaultOptions()
	opts.FeedCapacity = cfg.Dashboard.FeedCapacity
	opts.MapWindow = cfg.Dashboard.MapWindow
	opts.TrendCapacity = cfg.Dashboard.TrendCapacity
	opts.NoticeCapacity = cfg.Dashboard.NoticeCapacity
	opts.RefreshInterval = cfg.Dashboard.RefreshInterval
	opts.AlertRefreshInterval = cfg.Dashboard.AlertRefreshInterval
	return opts
}

func middlewareConfig(cfg *config.Config) *api.ChiMiddlewareConfig {
	mc := api.DefaultChiMiddlewareConfig()
	mc.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mc.RateLimitRequests = cfg.Server.RateLimitReqs
	mc.RateLimitWindow = cfg.Server.RateLimitWindow
	mc.RateLimitDisabled = cfg.Server.RateLimitDisabled
	return mc
}

func treeConfig(cfg *config.Config) supervisor.TreeConfig {
	return supervisor.TreeConfig{
		FailureThreshold: cfg.Supervisor.FailureThreshold,
		FailureDecay:     cfg.Supervisor.FailureDecay,
		FailureBackoff:   cfg.Supervisor.FailureBackoff,
		ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	}
}
