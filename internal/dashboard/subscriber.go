// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package dashboard

import (
	"errors"
	"sync"

	"github.com/tomtom215/threattrace/internal/channel"
	"github.com/tomtom215/threattrace/internal/logging"
	"github.com/tomtom215/threattrace/internal/metrics"
	"github.com/tomtom215/threattrace/internal/payload"
)

// ErrAlreadySubscribed is returned by Subscribe while a subscription is live.
var ErrAlreadySubscribed = errors.New("channel subscriber already subscribed")

// ChannelSubscriber binds a View to a push channel: one handler per push
// event, each decoding its payload and applying it to the view.
//
// It moves between two states, unsubscribed and subscribed. Unsubscribe is
// idempotent.
type ChannelSubscriber struct {
	view   *View
	logger *logging.ReconcileLogger

	mu        sync.Mutex
	unsubs    []func()
	transport string
}

// NewChannelSubscriber creates an unsubscribed subscriber for view.
func NewChannelSubscriber(view *View) *ChannelSubscriber {
	return &ChannelSubscriber{
		view:   view,
		logger: view.logger,
	}
}

// Subscribe registers a handler for every push event on ch.
func (s *ChannelSubscriber) Subscribe(ch channel.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubs != nil {
		return ErrAlreadySubscribed
	}
	s.unsubs = make([]func(), 0, len(payload.EventNames))
	for _, event := range payload.EventNames {
		s.unsubs = append(s.unsubs, ch.Subscribe(event, s.handler(event)))
	}
	s.transport = ch.Transport()
	s.logger.LogSubscribed(s.transport, len(payload.EventNames))
	return nil
}

// Unsubscribe removes every handler. Calling it again is a no-op.
func (s *ChannelSubscriber) Unsubscribe() {
	s.mu.Lock()
	unsubs := s.unsubs
	transport := s.transport
	s.unsubs = nil
	s.mu.Unlock()

	if unsubs == nil {
		return
	}
	for _, unsub := range unsubs {
		unsub()
	}
	s.logger.LogUnsubscribed(transport)
}

// Subscribed reports whether handlers are registered.
func (s *ChannelSubscriber) Subscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsubs != nil
}

func (s *ChannelSubscriber) handler(event string) channel.Handler {
	return func(data []byte) {
		p, err := payload.Decode(event, data)
		if err != nil {
			s.logger.LogPushDropped(event, err)
			metrics.RecordPushDropped(event, "decode")
			return
		}
		// ErrNotMounted here means the view unmounted mid-dispatch; Apply
		// already counted the drop.
		_ = s.view.Apply(p)
	}
}
