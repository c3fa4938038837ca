// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package reconcile

import (
	"sort"
	"testing"

	"github.com/tomtom215/threattrace/internal/models"
)

func TestApplyPatch(t *testing.T) {
	t.Parallel()

	current := models.DashboardStats{
		"a": models.Number(1),
		"b": models.Number(2),
	}
	patch := models.StatsPatch{"b": nil}
	patch.Set("c", models.Number(3))

	got := ApplyPatch(current, patch)

	want := map[string]string{"a": "1", "b": "2", "c": "3"}
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k].String() != v {
			t.Errorf("%s = %s, want %s", k, got[k], v)
		}
	}

	if _, ok := current["c"]; ok {
		t.Error("ApplyPatch must not modify its input")
	}
}

func TestApplyPatch_OverwritesNamedKeys(t *testing.T) {
	t.Parallel()

	current := models.DashboardStats{models.StatUptime: models.Text("99.90%")}
	patch := models.StatsPatch{}
	patch.Set(models.StatUptime, models.Text("99.97%"))

	got := ApplyPatch(current, patch)
	if got[models.StatUptime].String() != "99.97%" {
		t.Errorf("uptime = %s, want 99.97%%", got[models.StatUptime])
	}
}

func TestApplyPatch_EmptyInputs(t *testing.T) {
	t.Parallel()

	if got := ApplyPatch(nil, nil); got == nil || len(got) != 0 {
		t.Errorf("ApplyPatch(nil, nil) = %v, want empty non-nil map", got)
	}
}

func TestPatchKeys(t *testing.T) {
	t.Parallel()

	patch := models.StatsPatch{"skip": nil}
	patch.Set("x", models.Number(1))
	patch.Set("y", models.Text("z"))

	keys := PatchKeys(patch)
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "x" || keys[1] != "y" {
		t.Errorf("PatchKeys() = %v, want [x y]", keys)
	}
}
