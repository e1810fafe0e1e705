package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/unisignals/internal/loadtest"
)

func newGenerateCmd() *cobra.Command {
	var (
		count int
		seed  int64
		noIDs bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic match submissions as JSON lines",
		Long: `Generates plausible random match inputs for POST /v1/matches.
The same seed always produces the same output, IDs included.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			return runGenerate(cmd.OutOrStdout(), count, seed, !noIDs)
		},
	}

	cmd.Flags().IntVar(&count, "count", 10, "Number of matches to generate")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")
	cmd.Flags().BoolVar(&noIDs, "no-ids", false, "Omit match_id so the server derives one")
	return cmd
}

func runGenerate(w io.Writer, count int, seed int64, withIDs bool) error {
	subs, err := loadtest.Generate(seed, count, withIDs)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	for i, s := range subs {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("write match %d: %w", i, err)
		}
	}
	return nil
}
