// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package simulate

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/tomtom215/threattrace/internal/models"
)

// threatProfile is one kind of synthetic attack.
type threatProfile struct {
	eventType  string
	title      string
	source     string
	severities []string
	// failCount bounds, zero for non-authentication threats
	minFails, maxFails int
}

var profiles = []threatProfile{
	{"brute_force", "SSH brute force", "sshd", []string{"high", "critical"}, 5, 60},
	{"brute_force", "RDP brute force", "rdp-gateway", []string{"medium", "high"}, 3, 40},
	{"port_scan", "Port scan", "firewall", []string{"low", "medium"}, 0, 0},
	{"malware", "Malware beacon", "edr", []string{"high", "critical"}, 0, 0},
	{"ransomware", "Ransomware activity", "edr", []string{"critical"}, 0, 0},
	{"sql_injection", "SQL injection attempt", "waf", []string{"medium", "high"}, 0, 0},
	{"phishing", "Phishing link clicked", "mail-gateway", []string{"low", "medium"}, 0, 0},
	{"ddos", "Volumetric DDoS", "edge", []string{"high"}, 0, 0},
}

// Generator produces synthetic location ingest requests. It is not safe for
// concurrent use.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a generator. A non-zero seed makes the sequence
// reproducible.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{faker: gofakeit.New(seed)}
}

// Next returns one request. Coordinates are always set so the event lands
// on the map without upstream geolocation.
func (g *Generator) Next() models.LocationIngestRequest {
	f := g.faker
	p := profiles[f.IntRange(0, len(profiles)-1)]

	lat := round4(f.Float64Range(-60, 70))
	lng := round4(f.Float64Range(-180, 180))
	ip := f.IPv4Address()

	req := models.LocationIngestRequest{
		SourceIP:  ip,
		EventType: p.eventType,
		Severity:  f.RandomString(p.severities),
		Source:    p.source,
		Title:     p.title,
		Message:   fmt.Sprintf("%s from %s (%s)", p.title, ip, f.Country()),
		Lat:       &lat,
		Lng:       &lng,
		Meta: map[string]any{
			"simulated": true,
			"city":      f.City(),
			"user":      f.Username(),
		},
	}
	if p.maxFails > 0 {
		req.FailCount = f.IntRange(p.minFails, p.maxFails)
	}
	return req
}

func round4(v float64) float64 {
	return float64(int64(v*1e4)) / 1e4
}
