// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package channel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/threattrace/internal/logging"
	"github.com/tomtom215/threattrace/internal/metrics"
)

// WebSocketConfig configures a WebSocketClient.
type WebSocketConfig struct {
	URL   string
	Token string

	HandshakeTimeout time.Duration
	ReconnectMin     time.Duration
	ReconnectMax     time.Duration
	ReadTimeout      time.Duration
	PingInterval     time.Duration
}

// DefaultWebSocketConfig returns the standard timings for url.
func DefaultWebSocketConfig(url string) WebSocketConfig {
	return WebSocketConfig{
		URL:              url,
		HandshakeTimeout: 10 * time.Second,
		ReconnectMin:     time.Second,
		ReconnectMax:     32 * time.Second,
		ReadTimeout:      60 * time.Second,
		PingInterval:     30 * time.Second,
	}
}

func (c *WebSocketConfig) applyDefaults() {
	d := DefaultWebSocketConfig(c.URL)
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.ReconnectMin <= 0 {
		c.ReconnectMin = d.ReconnectMin
	}
	if c.ReconnectMax < c.ReconnectMin {
		c.ReconnectMax = max(d.ReconnectMax, c.ReconnectMin)
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.PingInterval <= 0 {
		c.PingInterval = d.PingInterval
	}
}

// Frame is one message on the push websocket.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// WebSocketClient is a push Channel fed by a websocket connection.
// Serve owns the connection; it dials, reads, and reconnects until its
// context is canceled or Close is called.
type WebSocketClient struct {
	*Dispatcher

	cfg    WebSocketConfig
	dialer *websocket.Dialer
	logger zerolog.Logger

	connMu sync.Mutex
	conn   *websocket.Conn

	connected  atomic.Bool
	reconnects atomic.Int64

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewWebSocketClient creates a client. Nothing is dialed until Serve runs.
func NewWebSocketClient(cfg WebSocketConfig) (*WebSocketClient, error) {
	if cfg.URL == "" {
		return nil, errors.New("websocket URL is required")
	}
	cfg.applyDefaults()

	return &WebSocketClient{
		Dispatcher: NewDispatcher(TransportWebSocket),
		cfg:        cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout:  cfg.HandshakeTimeout,
			EnableCompression: true,
		},
		logger:   logging.WithComponent("channel").With().Str("transport", TransportWebSocket).Logger(),
		stopChan: make(chan struct{}),
	}, nil
}

// IsConnected reports whether a connection is currently established.
func (c *WebSocketClient) IsConnected() bool {
	return c.connected.Load()
}

// Reconnects returns how many times the connection has been re-established
// after a loss.
func (c *WebSocketClient) Reconnects() int64 {
	return c.reconnects.Load()
}

// Close stops Serve and closes the connection. Safe to call more than once.
func (c *WebSocketClient) Close() error {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
	c.closeConnection()
	return nil
}

// String implements fmt.Stringer for suture.
func (c *WebSocketClient) String() string {
	return "push-websocket"
}

// Serve implements suture.Service.
func (c *WebSocketClient) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
		case <-c.stopChan:
			cancel()
		}
		c.closeConnection()
	}()
	go func() {
		defer wg.Done()
		c.pingLoop(ctx)
	}()
	defer wg.Wait()

	delay := c.cfg.ReconnectMin
	everConnected := false
	for {
		if ctx.Err() != nil {
			return c.exitErr(ctx)
		}

		conn, err := c.dial(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Dur("retry_in", delay).Msg("push websocket dial failed")
			select {
			case <-ctx.Done():
				return c.exitErr(ctx)
			case <-time.After(delay):
			}
			delay = min(delay*2, c.cfg.ReconnectMax)
			continue
		}

		if everConnected {
			c.reconnects.Add(1)
			metrics.PushReconnects.WithLabelValues(TransportWebSocket).Inc()
		}
		everConnected = true
		delay = c.cfg.ReconnectMin

		c.listen(ctx, conn)
	}
}

// exitErr keeps a closed client from being restarted by its supervisor.
func (c *WebSocketClient) exitErr(ctx context.Context) error {
	select {
	case <-c.stopChan:
		return suture.ErrDoNotRestart
	default:
		return ctx.Err()
	}
}

func (c *WebSocketClient) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if c.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.cfg.URL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: status %d: %w", c.cfg.URL, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	})

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	// Close may have raced the dial.
	if ctx.Err() != nil {
		c.closeConnection()
		return nil, ctx.Err()
	}

	c.connected.Store(true)
	metrics.SetPushConnected(TransportWebSocket, true)
	c.logger.Info().Str("url", c.cfg.URL).Msg("push websocket connected")
	return conn, nil
}

// listen reads frames until the connection fails or is closed.
func (c *WebSocketClient) listen(ctx context.Context, conn *websocket.Conn) {
	defer c.closeConnection()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
			return
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn().Err(err).Msg("push websocket read failed")
			}
			return
		}
		c.handleMessage(message)
	}
}

func (c *WebSocketClient) handleMessage(message []byte) {
	var frame Frame
	if err := json.Unmarshal(message, &frame); err != nil {
		c.logger.Warn().Err(err).Int("bytes", len(message)).Msg("malformed push frame")
		metrics.RecordPushDropped("unknown", "frame")
		return
	}
	if frame.Event == "" {
		metrics.RecordPushDropped("unknown", "frame")
		return
	}
	c.Dispatch(frame.Event, frame.Data)
}

func (c *WebSocketClient) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.connMu.Lock()
			conn := c.conn
			c.connMu.Unlock()
			if conn == nil {
				continue
			}
			deadline := time.Now().Add(10 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.Debug().Err(err).Msg("push websocket ping failed")
				c.closeConnection()
			}
		}
	}
}

func (c *WebSocketClient) closeConnection() {
	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	c.connMu.Unlock()

	if conn == nil {
		return
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = conn.Close()

	if c.connected.Swap(false) {
		metrics.SetPushConnected(TransportWebSocket, false)
		c.logger.Info().Msg("push websocket disconnected")
	}
}
