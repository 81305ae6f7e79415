package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantdesk/desk/journal"
)

var outcomeCmd = &cobra.Command{
	Use:   "outcome <experience-id>",
	Short: "Record the outcome of a decided experience",
	Long: `Attach a WIN/LOSS/BREAKEVEN outcome to an experience. With --note a
reflection is appended and the symbol's strategy prior is re-estimated
in the same transaction.

Examples:
  desk outcome 42 --label WIN --pnl 1.8
  desk outcome 42 --label LOSS --pnl -0.9 --note "Entered against the trend."`,
	Args: cobra.ExactArgs(1),
	RunE: runOutcome,
}

var (
	outcomeDBPath  string
	outcomeLabel   string
	outcomePnL     float64
	outcomeNote    string
	outcomeQuality float64
	outcomeRisk    float64
	outcomeTiming  float64
)

func init() {
	rootCmd.AddCommand(outcomeCmd)

	outcomeCmd.Flags().StringVarP(&outcomeDBPath, "db", "d", "./desk.db", "path to SQLite experience ledger")
	outcomeCmd.Flags().StringVarP(&outcomeLabel, "label", "l", "", "outcome label: WIN, LOSS, or BREAKEVEN (required)")
	outcomeCmd.Flags().Float64VarP(&outcomePnL, "pnl", "p", 0, "realized P&L percent")
	outcomeCmd.Flags().StringVarP(&outcomeNote, "note", "n", "", "reflection note; triggers the composite update")
	outcomeCmd.Flags().Float64Var(&outcomeQuality, "decision-quality", -1, "optional decision quality score in [0,1]")
	outcomeCmd.Flags().Float64Var(&outcomeRisk, "risk-efficiency", -1, "optional risk efficiency score in [0,1]")
	outcomeCmd.Flags().Float64Var(&outcomeTiming, "timing-quality", -1, "optional timing quality score in [0,1]")

	outcomeCmd.MarkFlagRequired("label")
}

func runOutcome(cmd *cobra.Command, args []string) error {
	experienceID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad experience id %q: %w", args[0], err)
	}

	j, err := journal.NewSQLite(outcomeDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	label := journal.OutcomeLabel(strings.ToUpper(strings.TrimSpace(outcomeLabel)))

	if outcomeNote == "" {
		updated, err := j.UpdateOutcome(experienceID, label, outcomePnL)
		if err != nil {
			return fmt.Errorf("update outcome: %w", err)
		}
		if !updated {
			return fmt.Errorf("experience %d not found or outcome already set", experienceID)
		}
		return printJSON(map[string]any{"experience_id": experienceID, "updated": true})
	}

	prior, err := j.UpdateOutcomeWithReflection(experienceID, journal.OutcomeReflection{
		OutcomeLabel:    label,
		PnLPct:          outcomePnL,
		Note:            outcomeNote,
		DecisionQuality: optionalScore(outcomeQuality),
		RiskEfficiency:  optionalScore(outcomeRisk),
		TimingQuality:   optionalScore(outcomeTiming),
	})
	if err != nil {
		return fmt.Errorf("update outcome: %w", err)
	}

	return printJSON(map[string]any{
		"experience_id":  experienceID,
		"updated":        true,
		"strategy_prior": prior,
	})
}

// optionalScore treats negative sentinel values as not provided.
func optionalScore(v float64) *float64 {
	if v < 0 {
		return nil
	}
	return &v
}
