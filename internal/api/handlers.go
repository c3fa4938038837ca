// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/threattrace/internal/dashboard"
	"github.com/tomtom215/threattrace/internal/middleware"
	"github.com/tomtom215/threattrace/internal/models"
	"github.com/tomtom215/threattrace/internal/reconcile"
	ws "github.com/tomtom215/threattrace/internal/websocket"
)

// Dashboard is the view the handlers serve. *dashboard.View implements it.
type Dashboard interface {
	Snapshot() models.ViewSnapshot
	Mounted() bool
	RequestRefresh() bool
	SelectPoint(lat, lng float64) (models.GeoPoint, error)
	ClearSelection() error
	DismissNotice(id string) (bool, error)
	FeedStats() (reconcile.LogStats, error)
}

// PushStatus reports the state of the inbound push transport.
type PushStatus interface {
	Transport() string
	IsConnected() bool
}

// BreakerStates reports upstream circuit breaker states by endpoint.
type BreakerStates interface {
	States() map[string]string
}

// Handler holds the dependencies of the HTTP handlers. Push and Breakers
// are optional.
type Handler struct {
	view      Dashboard
	hub       *ws.Hub
	upgrader  gorillaws.Upgrader
	push      PushStatus
	breakers  BreakerStates
	perf      *middleware.PerformanceMonitor
	version   string
	startTime time.Time
}

// HandlerDeps groups the optional dependencies of NewHandler.
type HandlerDeps struct {
	Push           PushStatus
	Breakers       BreakerStates
	Perf           *middleware.PerformanceMonitor
	AllowedOrigins []string
	Version        string
}

// NewHandler creates the API handler.
func NewHandler(view Dashboard, hub *ws.Hub, deps HandlerDeps) *Handler {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		view:      view,
		hub:       hub,
		upgrader:  ws.Upgrader(deps.AllowedOrigins),
		push:      deps.Push,
		breakers:  deps.Breakers,
		perf:      deps.Perf,
		version:   version,
		startTime: time.Now(),
	}
}

// mountedSnapshot returns the snapshot, or answers 503 and false when the
// view is not mounted.
func (h *Handler) mountedSnapshot(w http.ResponseWriter) (models.ViewSnapshot, bool) {
	snap := h.view.Snapshot()
	if !snap.Mounted {
		respondError(w, http.StatusServiceUnavailable, CodeNotMounted, "dashboard view is not mounted", nil)
		return snap, false
	}
	return snap, true
}

// Snapshot returns the complete view.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.mountedSnapshot(w)
	if !ok {
		return
	}
	respondData(w, http.StatusOK, snap, snap.RefreshSeq)
}

// Feed returns the activity feed, newest insertion first. limit truncates;
// order=time sorts by event timestamp instead.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.mountedSnapshot(w)
	if !ok {
		return
	}
	feed := snap.Feed
	if r.URL.Query().Get("order") == "time" {
		models.SortByTimestamp(feed)
	}
	if limit := getIntParam(r, "limit", 0); limit > 0 && limit < len(feed) {
		feed = feed[:limit]
	}
	respondData(w, http.StatusOK, feed, snap.RefreshSeq)
}

// FeedStats returns the feed's insert, duplicate and eviction counters.
func (h *Handler) FeedStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.view.FeedStats()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, CodeNotMounted, "dashboard view is not mounted", nil)
		return
	}
	respondData(w, http.StatusOK, map[string]uint64{
		"inserted":   st.Inserted,
		"duplicates": st.Duplicates,
		"evicted":    st.Evicted,
	}, 0)
}

// Points returns the aggregated map points, most recently observed first.
func (h *Handler) Points(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.mountedSnapshot(w)
	if !ok {
		return
	}
	respondData(w, http.StatusOK, snap.Points, snap.RefreshSeq)
}

// Stats returns the dashboard counters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.mountedSnapshot(w)
	if !ok {
		return
	}
	respondData(w, http.StatusOK, snap.Stats, snap.RefreshSeq)
}

// Charts returns the trend, type and severity datasets.
func (h *Handler) Charts(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.mountedSnapshot(w)
	if !ok {
		return
	}
	respondData(w, http.StatusOK, snap.Charts, snap.RefreshSeq)
}

// TopThreats returns the active-threats panel.
func (h *Handler) TopThreats(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.mountedSnapshot(w)
	if !ok {
		return
	}
	respondData(w, http.StatusOK, snap.TopThreats, snap.RefreshSeq)
}

// Notices returns the pending notices, newest first.
func (h *Handler) Notices(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.mountedSnapshot(w)
	if !ok {
		return
	}
	respondData(w, http.StatusOK, snap.Notices, snap.RefreshSeq)
}

// DismissNotice removes one notice.
func (h *Handler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	found, err := h.view.DismissNotice(id)
	switch {
	case err != nil:
		respondError(w, http.StatusServiceUnavailable, CodeNotMounted, "dashboard view is not mounted", nil)
	case !found:
		respondError(w, http.StatusNotFound, CodeNotFound, "notice not found", nil)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// Refresh asks the view for an immediate REST refresh. The refresh runs
// asynchronously.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !h.view.RequestRefresh() {
		respondError(w, http.StatusServiceUnavailable, CodeNotMounted, "dashboard view is not mounted", nil)
		return
	}
	respondData(w, http.StatusAccepted, map[string]bool{"requested": true}, 0)
}

// SelectPointRequest is the body of POST /points/select.
type SelectPointRequest struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

// SelectPoint marks the point at a coordinate as selected.
func (h *Handler) SelectPoint(w http.ResponseWriter, r *http.Request) {
	var req SelectPointRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		status := http.StatusBadRequest
		if apiErr.Code == CodeUnsupportedType {
			status = http.StatusUnsupportedMediaType
		}
		respondAPIError(w, status, apiErr)
		return
	}

	p, err := h.view.SelectPoint(*req.Lat, *req.Lng)
	switch {
	case errors.Is(err, dashboard.ErrUnknownPoint):
		respondError(w, http.StatusNotFound, CodeNotFound, "no point at that coordinate", nil)
	case err != nil:
		respondError(w, http.StatusServiceUnavailable, CodeNotMounted, "dashboard view is not mounted", nil)
	default:
		respondData(w, http.StatusOK, p, 0)
	}
}

// ClearSelection removes the selection marker.
func (h *Handler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	if err := h.view.ClearSelection(); err != nil {
		respondError(w, http.StatusServiceUnavailable, CodeNotMounted, "dashboard view is not mounted", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WebSocket upgrades the connection and streams view changes.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	ws.ServeWS(h.hub, &h.upgrader, w, r)
}

// Performance returns per-route latency percentiles and the most recent
// samples. It responds 404 when no monitor is configured.
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	if h.perf == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Performance monitoring is disabled", nil)
		return
	}
	limit := getIntParam(r, "recent", 20)
	if limit < 0 {
		limit = 0
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"routes": h.perf.Stats(),
		"recent": h.perf.Recent(limit),
	}, 0)
}

// perfMiddleware records requests when a monitor is configured.
func (h *Handler) perfMiddleware(next http.Handler) http.Handler {
	if h.perf == nil {
		return next
	}
	return h.perf.Middleware(next)
}
