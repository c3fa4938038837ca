// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package reconcile

import (
	"testing"

	"github.com/tomtom215/threattrace/internal/models"
)

func TestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		event   models.Event
		ordinal int
		want    string
	}{
		{"id wins over content", models.Event{ID: "e1", Timestamp: "T1", Message: "m1"}, 3, "id:e1"},
		{"derived", models.Event{Timestamp: "T1", Message: "m1"}, 0, "dk:2:T1|m1|0"},
		{"derived ordinal", models.Event{Timestamp: "T1", Message: "m1"}, 7, "dk:2:T1|m1|7"},
		{"no timestamp", models.Event{Message: "m"}, 0, "dk:14:<no-timestamp>|m|0"},
		{"no message", models.Event{Timestamp: "T"}, 1, "dk:1:T|<no-message>|1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Key(&tt.event, tt.ordinal); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_SeparatorInFieldsDoesNotCollide(t *testing.T) {
	t.Parallel()

	a := models.Event{Timestamp: "T|x", Message: "m"}
	b := models.Event{Timestamp: "T", Message: "x|m"}
	if Key(&a, 0) == Key(&b, 0) {
		t.Errorf("distinct events produced the same key %q", Key(&a, 0))
	}
}

func TestKey_IDSpaceDisjointFromDerived(t *testing.T) {
	t.Parallel()

	derived := models.Event{Timestamp: "T1", Message: "m1"}
	withID := models.Event{ID: Key(&derived, 0)}
	if Key(&withID, 0) == Key(&derived, 0) {
		t.Error("an ID equal to a derived key must not collide with it")
	}
}
