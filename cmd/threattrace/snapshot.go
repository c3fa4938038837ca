// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/threattrace/internal/config"
	"github.com/tomtom215/threattrace/internal/dashboard"
	"github.com/tomtom215/threattrace/internal/fetch"
	"github.com/tomtom215/threattrace/internal/models"
)

var (
	snapshotJSON  bool
	snapshotLimit int
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch the dashboard once and print it",
	Long: `snapshot mounts a view without a push channel, runs one full REST
refresh and prints the reconciled result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		snap, err := takeSnapshot(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if snapshotJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		renderSnapshot(w, snap, snapshotLimit)
		return nil
	},
}

func init() {
	snapshotCmd.Flags().BoolVar(&snapshotJSON, "json", false, "print the snapshot as JSON")
	snapshotCmd.Flags().IntVar(&snapshotLimit, "limit", 10, "rows per table")
}

func takeSnapshot(ctx context.Context, cfg *config.Config) (models.ViewSnapshot, error) {
	up, err := newUpstream(cfg)
	if err != nil {
		return models.ViewSnapshot{}, err
	}

	opts := viewOptions(cfg)
	opts.DisableRefreshLoop = true
	view := dashboard.NewView(fetch.NewCoordinator(up.source(), cfg.API.LocationHours), nil, opts)
	if err := view.Mount(ctx); err != nil {
		return models.ViewSnapshot{}, err
	}
	defer view.Unmount()

	if _, err := view.Refresh(ctx); err != nil {
		return models.ViewSnapshot{}, fmt.Errorf("refresh failed: %w", err)
	}
	return view.Snapshot(), nil
}

func renderSnapshot(w io.Writer, snap models.ViewSnapshot, limit int) {
	if limit <= 0 {
		limit = 10
	}

	successColor.Fprintf(w, "✓ Refresh #%d", snap.RefreshSeq)
	if snap.LastSource != "" {
		infoColor.Fprintf(w, " (locations: %s)", snap.LastSource)
	}
	fmt.Fprintln(w)

	section(w, "Stats")
	keys := make([]string, 0, len(snap.Stats))
	for k := range snap.Stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	st := newTable("COUNTER", "VALUE")
	for _, k := range keys {
		st.add(plain(k), plain(snap.Stats[k].String()))
	}
	st.render(w)

	section(w, "Severity")
	sv := newTable("SEVERITY", "COUNT")
	sb := snap.Charts.Severity
	sv.add(severityCell(models.SeverityCritical), plain(strconv.Itoa(sb.Critical)))
	sv.add(severityCell(models.SeverityHigh), plain(strconv.Itoa(sb.High)))
	sv.add(severityCell(models.SeverityMedium), plain(strconv.Itoa(sb.Medium)))
	sv.add(severityCell(models.SeverityLow), plain(strconv.Itoa(sb.Low)))
	sv.render(w)

	if len(snap.Charts.Types) > 0 {
		section(w, "Threat Types")
		tt := newTable("TYPE", "COUNT")
		for i, tc := range snap.Charts.Types {
			if i == limit {
				break
			}
			tt.add(plain(tc.Type), plain(strconv.Itoa(tc.Count)))
		}
		tt.render(w)
	}

	if len(snap.TopThreats) > 0 {
		section(w, "Top Threats")
		th := newTable("NAME", "SEVERITY", "SOURCE", "STATUS")
		for i, t := range snap.TopThreats {
			if i == limit {
				break
			}
			th.add(plain(truncate(t.Name, 48)), severityCell(models.ParseSeverity(t.Severity)), plain(t.Source), plain(t.Status))
		}
		th.render(w)
	}

	section(w, fmt.Sprintf("Activity (%d)", len(snap.Feed)))
	ft := newTable("TIME", "SEVERITY", "TYPE", "MESSAGE")
	for i, ev := range snap.Feed {
		if i == limit {
			break
		}
		ft.add(plain(ev.Timestamp), severityCell(ev.Severity), plain(string(ev.Type)), plain(truncate(ev.Message, 60)))
	}
	ft.render(w)

	section(w, fmt.Sprintf("Locations (%d)", len(snap.Points)))
	pt := newTable("LAT", "LNG", "SEVERITY", "COUNT", "PLACE")
	for i, p := range snap.Points {
		if i == limit {
			break
		}
		place := p.City
		if p.Country != "" {
			if place != "" {
				place += ", "
			}
			place += p.Country
		}
		pt.add(
			plain(strconv.FormatFloat(p.Lat, 'f', 4, 64)),
			plain(strconv.FormatFloat(p.Lng, 'f', 4, 64)),
			severityCell(p.Severity),
			plain(strconv.Itoa(p.Count)),
			plain(place),
		)
	}
	pt.render(w)
}
