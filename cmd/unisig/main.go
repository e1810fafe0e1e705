// Package main provides the unisig CLI: offline normalization, sport
// classification, synthetic data and load testing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/unisignals/pkg/logger"
)

var version = "dev"

func main() {
	// Command output goes to stdout, logs to stderr.
	if err := logger.InitWithWriter(os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "unisig",
		Short: "Universal sports signals from raw match statistics",
		Long: `unisig turns raw per-match statistics from any supported sport into the
same five prompt labels plus a structured display bundle.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return logger.SetLevelString(logLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newNormalizeCmd(),
		newClassifyCmd(),
		newGenerateCmd(),
		newLoadCmd(),
	)
	return rootCmd
}
