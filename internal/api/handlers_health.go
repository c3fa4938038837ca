// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	Mounted       bool              `json:"mounted"`
	RefreshSeq    uint64            `json:"refresh_seq"`
	PushTransport string            `json:"push_transport,omitempty"`
	PushConnected bool              `json:"push_connected"`
	Breakers      map[string]string `json:"breakers,omitempty"`
	WSClients     int               `json:"ws_clients"`
	Uptime        float64           `json:"uptime_seconds"`
}

// Health reports overall status. It answers 200 even when degraded so
// dashboards can always read the details.
//
// Status is healthy when the view is mounted, the push transport (if any)
// is connected and no breaker is open.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.view.Snapshot()
	hs := HealthStatus{
		Status:     "healthy",
		Version:    h.version,
		Mounted:    snap.Mounted,
		RefreshSeq: snap.RefreshSeq,
		Uptime:     time.Since(h.startTime).Seconds(),
	}
	if h.hub != nil {
		hs.WSClients = h.hub.GetClientCount()
	}
	if h.push != nil {
		hs.PushTransport = h.push.Transport()
		hs.PushConnected = h.push.IsConnected()
		if !hs.PushConnected {
			hs.Status = "degraded"
		}
	}
	if h.breakers != nil {
		hs.Breakers = h.breakers.States()
		for _, state := range hs.Breakers {
			if state == "open" {
				hs.Status = "degraded"
			}
		}
	}
	if !snap.Mounted {
		hs.Status = "unavailable"
	}
	respondData(w, http.StatusOK, hs, snap.RefreshSeq)
}

// HealthLive always answers 200 while the process serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "alive"}, 0)
}

// HealthReady answers 200 once the view is mounted.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.view.Mounted() {
		respondError(w, http.StatusServiceUnavailable, CodeNotMounted, "dashboard view is not mounted", nil)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "ready"}, 0)
}
