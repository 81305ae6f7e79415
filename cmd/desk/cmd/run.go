package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quantdesk/desk/config"
	"github.com/quantdesk/desk/dataset"
	"github.com/quantdesk/desk/signal"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the signal engine over a recorded dataset",
	Long: `Run decides every snapshot in the dataset with the configured signal
engine and writes a report with per-row decisions plus an aggregate
summary.

Example:
  desk run --input sessions.json --tag aug --outdir reports`,
	RunE: runBatch,
}

var (
	runInput  string
	runOutdir string
	runTag    string
	runConfig string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "path to dataset (.json or .csv) (required)")
	runCmd.Flags().StringVarP(&runOutdir, "outdir", "o", "reports", "output directory")
	runCmd.Flags().StringVarP(&runTag, "tag", "t", "run", "run tag used in output filenames")
	runCmd.Flags().StringVarP(&runConfig, "config", "c", "", "path to config file (defaults apply when omitted)")

	runCmd.MarkFlagRequired("input")
}

func runBatch(cmd *cobra.Command, args []string) error {
	signalCfg := signal.DefaultConfig()
	if runConfig != "" {
		cfg, err := config.LoadFromFile(runConfig)
		if err != nil {
			return err
		}
		signalCfg = cfg.Signal
	}

	ds, err := dataset.LoadMarketInputs(runInput)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	engine := signal.NewEngine(signalCfg)
	decisions := make([]signal.Output, 0, len(ds))
	for _, market := range ds {
		decisions = append(decisions, engine.Decide(market))
	}
	summary := signal.Summarize(decisions)

	if err := os.MkdirAll(runOutdir, 0755); err != nil {
		return fmt.Errorf("create outdir: %w", err)
	}

	reportFile := filepath.Join(runOutdir, runTag+"_report.json")
	summaryFile := filepath.Join(runOutdir, runTag+"_summary.json")

	if err := writeJSON(reportFile, map[string]any{
		"run_tag":      runTag,
		"input_file":   runInput,
		"record_count": len(ds),
		"summary":      summary,
		"decisions":    decisions,
	}); err != nil {
		return err
	}
	if err := writeJSON(summaryFile, map[string]any{
		"run_tag":      runTag,
		"record_count": len(ds),
		"summary":      summary,
	}); err != nil {
		return err
	}

	return printJSON(map[string]any{"report": reportFile, "summary": summaryFile})
}
