// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package channel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/threattrace/internal/logging"
	"github.com/tomtom215/threattrace/internal/metrics"
)

// DefaultSubjectPrefix is the subject namespace push events are published on.
const DefaultSubjectPrefix = "threattrace.push"

// NATSConfig configures a NATSClient.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
}

// NATSClient is a push Channel fed by a NATS subscription on
// "<prefix>.>". The last subject token is the event name.
type NATSClient struct {
	*Dispatcher

	cfg    NATSConfig
	logger zerolog.Logger

	mu   sync.Mutex
	conn *nats.Conn
	sub  *nats.Subscription
}

// NewNATSClient creates a client. Nothing is connected until Connect or
// Serve runs.
func NewNATSClient(cfg NATSConfig) (*NATSClient, error) {
	if cfg.URL == "" {
		return nil, errors.New("NATS URL is required")
	}
	cfg.SubjectPrefix = strings.TrimSuffix(cfg.SubjectPrefix, ".")
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = DefaultSubjectPrefix
	}
	if cfg.Name == "" {
		cfg.Name = "threattrace"
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = 10
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = time.Second
	}

	return &NATSClient{
		Dispatcher: NewDispatcher(TransportNATS),
		cfg:        cfg,
		logger:     logging.WithComponent("channel").With().Str("transport", TransportNATS).Logger(),
	}, nil
}

// Subject returns the wildcard subject the client listens on.
func (c *NATSClient) Subject() string {
	return c.cfg.SubjectPrefix + ".>"
}

// SubjectFor returns the subject an event is published on.
func (c *NATSClient) SubjectFor(event string) string {
	return c.cfg.SubjectPrefix + "." + event
}

// Connect dials the server and subscribes. Calling it on a connected client
// is a no-op.
func (c *NATSClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := nats.Connect(c.cfg.URL,
		nats.Name(c.cfg.Name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(c.cfg.MaxReconnects),
		nats.ReconnectWait(c.cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			metrics.SetPushConnected(TransportNATS, false)
			if err != nil {
				c.logger.Warn().Err(err).Msg("push NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			metrics.SetPushConnected(TransportNATS, true)
			metrics.PushReconnects.WithLabelValues(TransportNATS).Inc()
			c.logger.Info().Str("url", nc.ConnectedUrl()).Msg("push NATS reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}

	sub, err := conn.Subscribe(c.Subject(), c.handleMsg)
	if err != nil {
		conn.Close()
		return fmt.Errorf("subscribe %s: %w", c.Subject(), err)
	}
	if err := conn.Flush(); err != nil {
		c.logger.Debug().Err(err).Msg("initial NATS flush failed")
	}

	c.conn = conn
	c.sub = sub
	metrics.SetPushConnected(TransportNATS, conn.IsConnected())
	c.logger.Info().Str("subject", c.Subject()).Msg("push NATS subscribed")
	return nil
}

func (c *NATSClient) handleMsg(msg *nats.Msg) {
	event := msg.Subject
	if i := strings.LastIndexByte(event, '.'); i >= 0 {
		event = event[i+1:]
	}
	c.Dispatch(event, msg.Data)
}

// Publish sends data as event. Used by producers and tests.
func (c *NATSClient) Publish(event string, data []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New("NATS client not connected")
	}
	if err := conn.Publish(c.SubjectFor(event), data); err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}
	return nil
}

// Flush waits for the server to process everything published so far.
func (c *NATSClient) Flush() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New("NATS client not connected")
	}
	return conn.Flush()
}

// IsConnected reports whether the underlying connection is up.
func (c *NATSClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && c.conn.IsConnected()
}

// Close unsubscribes and closes the connection. Safe to call more than once.
func (c *NATSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	if c.sub != nil {
		_ = c.sub.Unsubscribe()
		c.sub = nil
	}
	c.conn.Close()
	c.conn = nil
	metrics.SetPushConnected(TransportNATS, false)
	return nil
}

// Serve implements suture.Service.
func (c *NATSClient) Serve(ctx context.Context) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	_ = c.Close()
	return ctx.Err()
}

func (c *NATSClient) String() string {
	return "push-nats"
}
