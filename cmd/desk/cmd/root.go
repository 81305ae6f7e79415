package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "desk",
	Short: "A multi-analyst options desk with consensus gating and outcome learning",
	Long: `Desk runs a structured decision pipeline for index options trading.

It provides tools for:
  - Validating and deciding analyst/trader/risk request payloads
  - Recording decisions and their outcomes in a SQLite experience ledger
  - Learning per-symbol strategy priors from closed outcomes
  - Backtesting decided actions against realized market moves
  - Sweeping signal thresholds to rank candidate configurations`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
