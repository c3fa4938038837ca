// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package reconcile

import (
	"github.com/tomtom215/threattrace/internal/models"
)

// DefaultFeedCapacity matches the number of rows the activity feed shows.
const DefaultFeedCapacity = 50

// logEntry is a node in the feed's doubly-linked list.
type logEntry struct {
	key   string
	event models.Event
	prev  *logEntry
	next  *logEntry
}

// LogStats reports lifetime counters for a BoundedEventLog.
type LogStats struct {
	Inserted   uint64
	Duplicates uint64
	Evicted    uint64
}

// BoundedEventLog is an ordered, capacity-limited, deduplicated collection of
// events. The newest insertion is at the front; eviction removes from the
// back. Order reflects arrival, not event time.
//
// Insert, eviction and duplicate detection are O(1): a map indexes the nodes
// of a doubly-linked list bounded by two sentinels.
//
// BoundedEventLog is not safe for concurrent use. The dashboard view
// serializes access to it.
type BoundedEventLog struct {
	capacity int

	// items maps derived keys to list nodes
	items map[string]*logEntry

	// head.next is the newest entry, tail.prev the oldest
	head *logEntry
	tail *logEntry

	stats LogStats
}

// NewBoundedEventLog creates a log holding at most capacity events.
// A non-positive capacity selects DefaultFeedCapacity.
func NewBoundedEventLog(capacity int) *BoundedEventLog {
	if capacity <= 0 {
		capacity = DefaultFeedCapacity
	}

	l := &BoundedEventLog{
		capacity: capacity,
		items:    make(map[string]*logEntry, capacity),
		head:     &logEntry{},
		tail:     &logEntry{},
	}
	l.head.next = l.tail
	l.tail.prev = l.head
	return l
}

// Insert adds ev at the front of the log. It returns false and leaves the log
// untouched when an entry with the same key already exists; the stored entry
// keeps its position and content.
func (l *BoundedEventLog) Insert(ev models.Event) bool {
	key := Key(&ev, 0)
	if _, exists := l.items[key]; exists {
		l.stats.Duplicates++
		return false
	}
	l.pushFront(key, ev)
	l.evictOverflow()
	return true
}

// InsertBatch inserts a bulk load. The batch keeps its own order at the front
// of the log, so events[0] becomes the newest entry. Within-batch duplicates
// keep only their first occurrence, and keys already in the log are skipped.
// Each event's ordinal within the batch feeds its derived key. It returns the
// number of events inserted.
func (l *BoundedEventLog) InsertBatch(events []models.Event) int {
	if len(events) == 0 {
		return 0
	}

	type pending struct {
		key string
		idx int
	}
	accepted := make([]pending, 0, len(events))
	seen := make(map[string]struct{}, len(events))

	for i := range events {
		key := Key(&events[i], i)
		if _, dup := seen[key]; dup {
			l.stats.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		if _, exists := l.items[key]; exists {
			l.stats.Duplicates++
			continue
		}
		accepted = append(accepted, pending{key: key, idx: i})
	}

	// Prepend back-to-front so the batch reads in its original order.
	for i := len(accepted) - 1; i >= 0; i-- {
		l.pushFront(accepted[i].key, events[accepted[i].idx])
	}
	l.evictOverflow()

	return len(accepted)
}

// Contains reports whether an entry with the given derived key is present.
func (l *BoundedEventLog) Contains(key string) bool {
	_, ok := l.items[key]
	return ok
}

// Snapshot returns the events newest first. The slice and each event's
// details are copies; mutating them does not affect the log.
func (l *BoundedEventLog) Snapshot() []models.Event {
	out := make([]models.Event, 0, len(l.items))
	for e := l.head.next; e != l.tail; e = e.next {
		out = append(out, e.event.Clone())
	}
	return out
}

// Len returns the number of events held.
func (l *BoundedEventLog) Len() int {
	return len(l.items)
}

// Capacity returns the maximum number of events held.
func (l *BoundedEventLog) Capacity() int {
	return l.capacity
}

// Stats returns lifetime insert/duplicate/eviction counters.
func (l *BoundedEventLog) Stats() LogStats {
	return l.stats
}

// Internal methods

// pushFront links a new entry at the head of the list and indexes it.
func (l *BoundedEventLog) pushFront(key string, ev models.Event) {
	entry := &logEntry{key: key, event: ev.Clone()}
	entry.prev = l.head
	entry.next = l.head.next
	l.head.next.prev = entry
	l.head.next = entry
	l.items[key] = entry
	l.stats.Inserted++
}

// evictOverflow drops entries from the tail until size == capacity.
func (l *BoundedEventLog) evictOverflow() {
	for len(l.items) > l.capacity {
		oldest := l.tail.prev
		if oldest == l.head {
			return
		}
		oldest.prev.next = oldest.next
		oldest.next.prev = oldest.prev
		delete(l.items, oldest.key)
		l.stats.Evicted++
	}
}
