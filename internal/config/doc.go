// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

// Package config loads ThreatTrace configuration with koanf.
//
// # Layers
//
// Sources are merged in order, later ones winning:
//
//  1. built-in defaults (defaultConfig)
//  2. an optional YAML file, from CONFIG_PATH or the first existing entry
//     of DefaultConfigPaths
//  3. environment variables with an entry in envMappings
//
// Unmapped environment variables are ignored. Comma-separated values are
// split for the paths in sliceConfigPaths (CORS_ORIGINS).
//
// # Example File
//
//	api:
//	  base_url: http://localhost:5000
//	  location_hours: 24
//	push:
//	  transport: nats
//	  nats:
//	    embedded: true
//	dashboard:
//	  feed_capacity: 50
//	  refresh_interval: 30s
//
// # Validation
//
// Load calls Validate, which reports the first invalid setting using its
// environment variable name.
package config
