package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/unisignals/internal/domain/model"
	"github.com/okian/unisignals/internal/domain/signals"
	"github.com/okian/unisignals/pkg/logger"
)

func newNormalizeCmd() *cobra.Command {
	var (
		promptOnly bool
		pretty     bool
	)

	cmd := &cobra.Command{
		Use:   "normalize [file|-]",
		Short: "Normalize raw match inputs read as JSON",
		Long: `Reads one or more JSON match inputs from a file or stdin and writes one
signal bundle per input. Inputs may be a single object or a stream of objects
(for example the output of "unisig generate").`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				in = f
			}
			return runNormalize(in, cmd.OutOrStdout(), normalizeOpts{promptOnly: promptOnly, pretty: pretty})
		},
	}

	cmd.Flags().BoolVar(&promptOnly, "prompt", false, "Print only the five prompt labels")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent JSON output")
	return cmd
}

type normalizeOpts struct {
	promptOnly bool
	pretty     bool
}

func runNormalize(r io.Reader, w io.Writer, opts normalizeOpts) error {
	log := logger.Named("normalize")
	dec := json.NewDecoder(r)
	enc := json.NewEncoder(w)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}

	count := 0
	for {
		var in model.RawMatchInput
		err := dec.Decode(&in)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("decode input %d: %w", count+1, err)
		}

		out := signals.Normalize(in)
		var v any = out
		if opts.promptOnly {
			v = out.PromptFields()
		}
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("write output %d: %w", count+1, err)
		}
		count++
	}

	if count == 0 {
		return errors.New("no match input found")
	}
	log.Debug(context.Background(), "normalized inputs", logger.Int("count", count))
	return nil
}
