// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package reconcile

import (
	"strconv"
	"strings"

	"github.com/tomtom215/threattrace/internal/models"
)

// Sentinels substituted for missing fields in derived keys.
const (
	noTimestamp = "<no-timestamp>"
	noMessage   = "<no-message>"
)

// Key computes the deduplication identity of an event.
//
// Events carrying a server-assigned ID are keyed by it. Otherwise the key is
// derived from timestamp, message and the event's ordinal within its batch,
// so two otherwise identical minimal events in one batch still differ. The
// two key spaces are prefixed and cannot collide with each other.
//
//	Key(&Event{ID: "e1"}, 3)                           // "id:e1"
//	Key(&Event{Timestamp: "T1", Message: "m1"}, 0)     // "dk:2:T1|m1|0"
func Key(ev *models.Event, ordinal int) string {
	if ev.ID != "" {
		return "id:" + ev.ID
	}

	ts := ev.Timestamp
	if ts == "" {
		ts = noTimestamp
	}
	msg := ev.Message
	if msg == "" {
		msg = noMessage
	}

	// The timestamp is length-prefixed so a '|' inside either field cannot
	// shift the boundary between them.
	var b strings.Builder
	b.Grow(len(ts) + len(msg) + 16)
	b.WriteString("dk:")
	b.WriteString(strconv.Itoa(len(ts)))
	b.WriteByte(':')
	b.WriteString(ts)
	b.WriteByte('|')
	b.WriteString(msg)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(ordinal))
	return b.String()
}
