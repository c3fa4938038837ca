// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

/*
Package payload decodes push-channel messages into a closed set of typed
variants before they reach the dashboard stores.

Variants:

	stats_update      StatsUpdate     {"stats": {...}} or a flat counter map
	threat_location   ThreatLocation  lat/lng required and range-checked
	activity_update   ActivityUpdate  one event, a list, or {"activities": [...]}
	scan_progress     ScanProgress    progress 0..100
	new_alert         Alert           Kind AlertNew, default severity medium
	tamper_alert      Alert           Kind AlertTamper, default severity critical
	ransomware_alert  Alert           Kind AlertRansomware, default severity critical
	system_log        SystemLog       level upper-cased, default INFO
	chart_update      ChartUpdate     chart is trends, types or severity

Consumers switch on the concrete type:

	p, err := payload.Decode(name, raw)
	if err != nil {
	    var derr *payload.DecodeError
	    errors.As(err, &derr) // log and drop
	    return
	}
	switch v := p.(type) {
	case payload.StatsUpdate:
	    ...
	}

Validation uses the shared go-playground/validator instance from
internal/validation. JSON decoding uses github.com/goccy/go-json.
*/
package payload
