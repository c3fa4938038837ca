// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/threattrace/internal/simulate"
)

var (
	simCount int
	simRate  float64
	simSeed  int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Post synthetic threat location events upstream",
	Long: `simulate posts generated location events to the upstream ingest
endpoint, which republishes them as threat_location pushes. --count 0 runs
until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sc := simulate.Config{Rate: cfg.Simulate.Rate, Count: cfg.Simulate.Count, Seed: cfg.Simulate.Seed}
		if cmd.Flags().Changed("count") {
			sc.Count = simCount
		}
		if cmd.Flags().Changed("rate") {
			sc.Rate = simRate
		}
		if cmd.Flags().Changed("seed") {
			sc.Seed = simSeed
		}

		up, err := newUpstream(cfg)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		infoColor.Fprintf(w, "Posting to %s at %.1f events/s\n", cfg.API.BaseURL, sc.Rate)

		rep, err := simulate.NewRunner(up.ingester(), sc).Run(cmd.Context())
		successColor.Fprintf(w, "✓ %d sent", rep.Sent)
		if rep.Failed > 0 {
			errorColor.Fprintf(w, ", %d failed", rep.Failed)
		}
		infoColor.Fprintf(w, " in %s\n", rep.Elapsed.Round(time.Millisecond))
		return err
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simCount, "count", 10, "events to post, 0 for unbounded")
	simulateCmd.Flags().Float64Var(&simRate, "rate", 2, "events per second")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "fixed generator seed")
}
