// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package reconcile

import (
	"github.com/tomtom215/threattrace/internal/models"
)

// ApplyPatch merges a partial counter update onto current and returns the
// result; current is not modified. Named keys are overwritten (last writer
// wins per key), every other counter keeps its value, and nil patch entries
// never overwrite.
func ApplyPatch(current models.DashboardStats, patch models.StatsPatch) models.DashboardStats {
	next := make(models.DashboardStats, len(current)+len(patch))
	for k, v := range current {
		next[k] = v
	}
	for k, v := range patch {
		if v == nil {
			continue
		}
		next[k] = *v
	}
	return next
}

// PatchKeys returns the names a patch would actually overwrite.
func PatchKeys(patch models.StatsPatch) []string {
	keys := make([]string, 0, len(patch))
	for k, v := range patch {
		if v != nil {
			keys = append(keys, k)
		}
	}
	return keys
}
