// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// parseURLWithScheme parses raw and checks that it has a host and one of
// schemes. The error names field so it points at the variable to fix.
func parseURLWithScheme(raw, field string, schemes ...string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s failed to parse URL: %w", field, err)
	}

	ok := false
	for _, s := range schemes {
		if u.Scheme == s {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("%s scheme must be %s, got: %q",
			field, joinOr(schemes), u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%s host is required", field)
	}
	return u, nil
}

// joinOr renders ["a","b","c"] as "a, b or c".
func joinOr(words []string) string {
	if len(words) < 2 {
		return strings.Join(words, "")
	}
	return strings.Join(words[:len(words)-1], ", ") + " or " + words[len(words)-1]
}

// validateHTTPURL checks the upstream REST base URL. Endpoint paths are
// appended by the fetch client, so the URL itself carries no path or query.
func validateHTTPURL(raw, field string) error {
	u, err := parseURLWithScheme(raw, field, "http", "https")
	if err != nil {
		return err
	}
	if u.Path != "" && u.Path != "/" {
		return fmt.Errorf("%s should be base URL only, remove path: %s", field, u.Path)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", field, u.RawQuery)
	}
	return nil
}

// validateWebSocketURL checks the push endpoint. A path is allowed.
func validateWebSocketURL(raw, field string) error {
	_, err := parseURLWithScheme(raw, field, "ws", "wss")
	return err
}

// validateNATSURL checks a server URL as accepted by nats.Connect.
func validateNATSURL(raw string) error {
	_, err := parseURLWithScheme(raw, "server URL", "nats", "tls", "ws", "wss")
	return err
}
