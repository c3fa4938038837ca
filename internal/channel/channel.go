// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package channel

import (
	"sort"
	"sync"

	"github.com/tomtom215/threattrace/internal/metrics"
)

// Transport names used in logs and metrics.
const (
	TransportInProcess = "inprocess"
	TransportWebSocket = "websocket"
	TransportNATS      = "nats"
)

// Handler receives the raw payload of one push message.
type Handler func(data []byte)

// Channel routes named push events to handlers.
type Channel interface {
	// Subscribe registers h for event and returns a function that removes
	// it. The returned function may be called any number of times.
	Subscribe(event string, h Handler) (unsubscribe func())

	// Transport names the underlying transport.
	Transport() string
}

// Dispatcher is a handler registry. It is a Channel by itself and the
// routing core of the network transports.
type Dispatcher struct {
	transport string

	mu       sync.RWMutex
	handlers map[string]map[uint64]Handler
	nextID   uint64
}

// NewDispatcher creates an empty registry labelled with transport.
func NewDispatcher(transport string) *Dispatcher {
	if transport == "" {
		transport = TransportInProcess
	}
	return &Dispatcher{
		transport: transport,
		handlers:  make(map[string]map[uint64]Handler),
	}
}

// Transport implements Channel.
func (d *Dispatcher) Transport() string {
	return d.transport
}

// Subscribe implements Channel.
func (d *Dispatcher) Subscribe(event string, h Handler) func() {
	if h == nil {
		return func() {}
	}

	d.mu.Lock()
	d.nextID++
	id := d.nextID
	if d.handlers[event] == nil {
		d.handlers[event] = make(map[uint64]Handler)
	}
	d.handlers[event][id] = h
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.handlers[event], id)
			if len(d.handlers[event]) == 0 {
				delete(d.handlers, event)
			}
		})
	}
}

// Dispatch calls every handler registered for event, oldest registration
// first, and returns how many were called. Handlers run outside the lock,
// so they may subscribe or unsubscribe.
func (d *Dispatcher) Dispatch(event string, data []byte) int {
	d.mu.RLock()
	set := d.handlers[event]
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	hs := make([]Handler, len(ids))
	for i, id := range ids {
		hs[i] = set[id]
	}
	d.mu.RUnlock()

	if len(hs) == 0 {
		metrics.RecordPushDropped(event, "unhandled")
		return 0
	}

	metrics.RecordPushMessage(d.transport, event)
	for _, h := range hs {
		h(data)
	}
	return len(hs)
}

// HandlerCount returns the number of handlers registered for event.
func (d *Dispatcher) HandlerCount(event string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[event])
}
