// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/threattrace/internal/logging"
	"github.com/tomtom215/threattrace/internal/metrics"
	"github.com/tomtom215/threattrace/internal/models"
	"github.com/tomtom215/threattrace/internal/validation"
)

// Endpoint names used in logs, metrics, breakers and RefreshError.
const (
	EndpointRecentLocations = "locations_recent"
	EndpointThreatLocations = "threat_locations"
	EndpointThreatTrends    = "threat_trends"
	EndpointThreatTypes     = "threat_types"
	EndpointSeverityStats   = "severity_stats"
	EndpointStats           = "stats"
	EndpointTopThreats      = "top_threats"
	EndpointIngest          = "locations_ingest"
)

// Upstream paths.
const (
	pathRecentLocations = "/api/locations/recent"
	pathThreatLocations = "/api/dashboard/threat-locations"
	pathThreatTrends    = "/api/dashboard/threat-trends"
	pathThreatTypes     = "/api/dashboard/threat-types"
	pathSeverityStats   = "/api/dashboard/severity-stats"
	pathStats           = "/api/dashboard/stats"
	pathTopThreats      = "/api/dashboard/top-threats"
	pathIngest          = "/api/locations/ingest"
)

// Hours window accepted by the recent-locations endpoint.
const (
	DefaultHours = 24
	MinHours     = 1
	MaxHours     = 168
)

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 512

// ClampHours limits h to MinHours..MaxHours. Zero or negative selects
// DefaultHours.
func ClampHours(h int) int {
	switch {
	case h <= 0:
		return DefaultHours
	case h < MinHours:
		return MinHours
	case h > MaxHours:
		return MaxHours
	default:
		return h
	}
}

// Source is the read side of the upstream API.
type Source interface {
	RecentLocations(ctx context.Context, hours int) ([]models.GeoPoint, error)
	ThreatLocations(ctx context.Context) ([]models.GeoPoint, error)
	ThreatTrends(ctx context.Context) ([]models.TrendPoint, error)
	ThreatTypes(ctx context.Context) ([]models.ThreatTypeCount, error)
	SeverityStats(ctx context.Context) (models.SeverityBreakdown, error)
	Stats(ctx context.Context) (models.StatsPatch, error)
	TopThreats(ctx context.Context) ([]models.TopThreat, error)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to the upstream REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ Source = (*Client)(nil)

// NewClient creates a client for cfg.BaseURL.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, errors.New("API base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: base,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// BaseURL returns the normalized upstream base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}
	return req, nil
}

// do executes req and returns the body of a 2xx response.
func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w", endpoint, err)
	}
	return data, nil
}

// getEnvelope fetches path and decodes the member key of the response
// object into T. A missing or null member yields the zero T.
func getEnvelope[T any](ctx context.Context, c *Client, endpoint, path string, query url.Values, key string) (T, error) {
	var zero T
	start := time.Now()

	out, err := func() (T, error) {
		req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
		if err != nil {
			return zero, err
		}
		data, err := c.do(req, endpoint)
		if err != nil {
			return zero, err
		}
		return decodeEnvelope[T](data, endpoint, key)
	}()

	metrics.RecordUpstreamRequest(endpoint, time.Since(start), err)
	return out, err
}

func decodeEnvelope[T any](data []byte, endpoint, key string) (T, error) {
	var zero T
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return zero, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return zero, fmt.Errorf("%s: failed to decode response: %w", endpoint, err)
	}
	raw := bytes.TrimSpace(envelope[key])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return zero, nil
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("%s: failed to decode %q: %w", endpoint, key, err)
	}
	return out, nil
}

// RecentLocations returns points seen in the last hours (clamped to 1..168).
func (c *Client) RecentLocations(ctx context.Context, hours int) ([]models.GeoPoint, error) {
	q := url.Values{}
	q.Set("hours", strconv.Itoa(ClampHours(hours)))
	points, err := getEnvelope[[]models.GeoPoint](ctx, c, EndpointRecentLocations, pathRecentLocations, q, "points")
	if err != nil {
		return nil, err
	}
	return normalizePoints(points), nil
}

// ThreatLocations returns the dashboard threat-location set.
func (c *Client) ThreatLocations(ctx context.Context) ([]models.GeoPoint, error) {
	points, err := getEnvelope[[]models.GeoPoint](ctx, c, EndpointThreatLocations, pathThreatLocations, nil, "threats")
	if err != nil {
		return nil, err
	}
	return normalizePoints(points), nil
}

// ThreatTrends returns the trend series.
func (c *Client) ThreatTrends(ctx context.Context) ([]models.TrendPoint, error) {
	return getEnvelope[[]models.TrendPoint](ctx, c, EndpointThreatTrends, pathThreatTrends, nil, "data")
}

// ThreatTypes returns the attack-type distribution.
func (c *Client) ThreatTypes(ctx context.Context) ([]models.ThreatTypeCount, error) {
	return getEnvelope[[]models.ThreatTypeCount](ctx, c, EndpointThreatTypes, pathThreatTypes, nil, "data")
}

// SeverityStats returns the per-severity breakdown.
func (c *Client) SeverityStats(ctx context.Context) (models.SeverityBreakdown, error) {
	return getEnvelope[models.SeverityBreakdown](ctx, c, EndpointSeverityStats, pathSeverityStats, nil, "data")
}

// Stats returns the counter set as a patch; null counters are nil entries.
func (c *Client) Stats(ctx context.Context) (models.StatsPatch, error) {
	return getEnvelope[models.StatsPatch](ctx, c, EndpointStats, pathStats, nil, "stats")
}

// TopThreats returns the active-threats panel rows.
func (c *Client) TopThreats(ctx context.Context) ([]models.TopThreat, error) {
	return getEnvelope[[]models.TopThreat](ctx, c, EndpointTopThreats, pathTopThreats, nil, "threats")
}

// IngestLocationEvent posts one location event to the upstream ingest
// endpoint. The request is validated before it is sent.
func (c *Client) IngestLocationEvent(ctx context.Context, in *models.LocationIngestRequest) (*models.LocationIngestResponse, error) {
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, fmt.Errorf("invalid ingest request: %w", verr)
	}
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode ingest request: %w", err)
	}

	start := time.Now()
	out, err := func() (*models.LocationIngestResponse, error) {
		req, err := c.newRequest(ctx, http.MethodPost, pathIngest, nil, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		data, err := c.do(req, EndpointIngest)
		if err != nil {
			return nil, err
		}
		var resp models.LocationIngestResponse
		if len(bytes.TrimSpace(data)) > 0 {
			if err := json.Unmarshal(data, &resp); err != nil {
				return nil, fmt.Errorf("%s: failed to decode response: %w", EndpointIngest, err)
			}
		}
		return &resp, nil
	}()
	metrics.RecordUpstreamRequest(EndpointIngest, time.Since(start), err)
	return out, err
}

// normalizePoints drops points with out-of-range coordinates and applies
// severity and count defaults.
func normalizePoints(points []models.GeoPoint) []models.GeoPoint {
	out := points[:0]
	for i := range points {
		p := points[i]
		if verr := validation.ValidateStruct(&p); verr != nil {
			logging.Debug().Str("component", "fetch").Err(verr).Msg("skipping invalid location point")
			continue
		}
		p.Severity = models.ParseSeverity(string(p.Severity))
		if p.Count < 1 {
			p.Count = 1
		}
		p.Selected = false
		out = append(out, p)
	}
	if out == nil {
		return []models.GeoPoint{}
	}
	return out
}
