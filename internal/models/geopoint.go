// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package models

// GeoPoint is a threat marker on the map. The aggregator keeps at most one
// GeoPoint per exact (Lat, Lng) pair.
type GeoPoint struct {
	Lat       float64  `json:"lat" validate:"latitude"`
	Lng       float64  `json:"lng" validate:"longitude"`
	Severity  Severity `json:"severity"`
	Count     int      `json:"count"`
	ID        string   `json:"id,omitempty"`
	EventID   string   `json:"event_id,omitempty"`
	City      string   `json:"city,omitempty"`
	Country   string   `json:"country,omitempty"`
	Type      string   `json:"type,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`

	// Selected is a presentation marker. It survives bulk replacement.
	Selected bool `json:"selected,omitempty"`
}

// CorrelationID returns the event ID the point links to, preferring EventID.
func (p *GeoPoint) CorrelationID() string {
	if p.EventID != "" {
		return p.EventID
	}
	return p.ID
}
