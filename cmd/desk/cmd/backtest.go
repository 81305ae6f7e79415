package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantdesk/desk/backtest"
	"github.com/quantdesk/desk/dataset"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay decided actions against realized market moves",
	Long: `Backtest loads a dataset of action/return rows, applies friction
assumptions, and prints performance statistics.

With --baseline a second dataset is evaluated under the same
assumptions and the metric deltas are included.

Example:
  desk backtest --input decisions.json --baseline holdout.json`,
	RunE: runBacktestCmd,
}

var (
	btInput      string
	btBaseline   string
	btCostBps    float64
	btSlipBps    float64
	btAnnualFctr int
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	defaults := backtest.DefaultAssumptions()
	backtestCmd.Flags().StringVarP(&btInput, "input", "i", "", "path to candidate dataset (.json or .csv) (required)")
	backtestCmd.Flags().StringVarP(&btBaseline, "baseline", "b", "", "path to baseline dataset (.json or .csv)")
	backtestCmd.Flags().Float64Var(&btCostBps, "cost-bps", defaults.TransactionCostBps, "transaction cost in basis points per trade")
	backtestCmd.Flags().Float64Var(&btSlipBps, "slippage-bps", defaults.SlippageBps, "slippage in basis points per trade")
	backtestCmd.Flags().IntVar(&btAnnualFctr, "annualization", defaults.AnnualizationFactor, "periods per year for Sharpe/Sortino scaling")

	backtestCmd.MarkFlagRequired("input")
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	candidate, err := dataset.LoadBacktestRows(btInput)
	if err != nil {
		return fmt.Errorf("load candidate: %w", err)
	}

	assumptions := backtest.Assumptions{
		TransactionCostBps:  btCostBps,
		SlippageBps:         btSlipBps,
		AnnualizationFactor: btAnnualFctr,
	}

	var baseline []backtest.Row
	if btBaseline != "" {
		baseline, err = dataset.LoadBacktestRows(btBaseline)
		if err != nil {
			return fmt.Errorf("load baseline: %w", err)
		}
	}

	comparison, err := backtest.Compare(candidate, baseline, assumptions)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}
	return printJSON(comparison)
}
