package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/unisignals/internal/domain/sport"
)

func newClassifyCmd() *cobra.Command {
	var showConfig bool

	cmd := &cobra.Command{
		Use:     "classify <sport>...",
		Short:   "Show the canonical sport type for free-form sport names",
		Example: `  unisig classify "English Premier League" NBA UFC`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, raw := range args {
				t := sport.Classify(raw)
				if !showConfig {
					fmt.Fprintf(w, "%s\t%s\n", raw, t)
					continue
				}
				cfg := sport.ConfigFor(t)
				fmt.Fprintf(w, "%s\t%s\tdraws=%t unit=%s tempo=%.2f..%.2f home_adv=%.3f\n",
					raw, t, cfg.HasDraw, cfg.ScoringUnit, cfg.TempoLow, cfg.TempoHigh, cfg.HomeAdvantage)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showConfig, "config", false, "Also print the per-sport constants")
	return cmd
}
