package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/unisignals/internal/loadtest"
)

func newLoadCmd() *cobra.Command {
	cfg := loadtest.NewConfig()

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load test a running unisig server",
		Long: `Submits synthetic matches concurrently, waits until the server has stored
them, then reads every match back and checks it against local normalization
and the ordering of GET /v1/matches.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := loadtest.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"submitted=%d accepted=%d duplicate=%d throttled=%d failed=%d retrieved=%d listed=%d duration=%s\n",
				stats.Submitted, stats.Accepted, stats.Duplicate, stats.Throttled, stats.Failed,
				stats.Retrieved, stats.Listed, stats.Duration)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "Base URL of the service")
	cmd.Flags().IntVar(&cfg.Count, "count", cfg.Count, "Number of matches to submit")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Generator seed")
	cmd.Flags().IntVar(&cfg.TopN, "top", cfg.TopN, "Entries to fetch from the listing")
	cmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent HTTP workers")
	cmd.Flags().Float64Var(&cfg.RPS, "rps", cfg.RPS, "Client request rate, 0 for unlimited")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout")
	cmd.Flags().DurationVar(&cfg.Settle, "settle", cfg.Settle, "How long to wait for processing")
	return cmd
}
