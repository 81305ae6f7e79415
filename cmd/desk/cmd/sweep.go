package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantdesk/desk/dataset"
	"github.com/quantdesk/desk/sweep"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep signal thresholds and rank candidate configs",
	Long: `Sweep evaluates every valid combination of the given threshold values
over a recorded dataset, ranks the results by a veto-aware score, and
writes two JSON artifacts to the output directory:

  <tag>_threshold_sweep_summary.json
  <tag>_threshold_sweep_ranked.json

Example:
  desk sweep --input sessions.csv --tag aug --bullish-values 0.3,0.4,0.5`,
	RunE: runSweep,
}

var (
	sweepInput       string
	sweepOutdir      string
	sweepTag         string
	sweepBullish     string
	sweepBearish     string
	sweepStrongMove  string
	sweepMaxVetoPct  float64
	sweepTopK        int
)

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().StringVarP(&sweepInput, "input", "i", "", "path to dataset (.json or .csv) (required)")
	sweepCmd.Flags().StringVarP(&sweepOutdir, "outdir", "o", "reports", "output directory")
	sweepCmd.Flags().StringVarP(&sweepTag, "tag", "t", "sweep", "run tag used in output filenames")
	sweepCmd.Flags().StringVar(&sweepBullish, "bullish-values", "0.3,0.4,0.5,0.6", "comma-separated bullish threshold candidates")
	sweepCmd.Flags().StringVar(&sweepBearish, "bearish-values", "-0.3,-0.4,-0.5,-0.6", "comma-separated bearish threshold candidates")
	sweepCmd.Flags().StringVar(&sweepStrongMove, "strong-move-values", "0.8,1.0", "comma-separated strong-move threshold candidates")
	sweepCmd.Flags().Float64Var(&sweepMaxVetoPct, "max-veto-pct", 30.0, "veto percentage guard for best-config selection")
	sweepCmd.Flags().IntVar(&sweepTopK, "top-k", 5, "number of top results in the summary artifact")

	sweepCmd.MarkFlagRequired("input")
}

func runSweep(cmd *cobra.Command, args []string) error {
	ds, err := dataset.LoadMarketInputs(sweepInput)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	bullish, err := parseFloatList(sweepBullish)
	if err != nil {
		return fmt.Errorf("bullish-values: %w", err)
	}
	bearish, err := parseFloatList(sweepBearish)
	if err != nil {
		return fmt.Errorf("bearish-values: %w", err)
	}
	strongMove, err := parseFloatList(sweepStrongMove)
	if err != nil {
		return fmt.Errorf("strong-move-values: %w", err)
	}

	grid, err := sweep.BuildGrid(bullish, bearish, strongMove)
	if err != nil {
		return err
	}

	results, err := sweep.NewOptimizer(ds).Run(grid)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	ranked := sweep.Rank(results)
	selection := sweep.Pick(ranked, sweepMaxVetoPct)

	report := sweep.NewReport(sweepTag, sweepInput, len(ds), time.Now(), sweepMaxVetoPct, ranked, selection, sweepTopK)

	if err := os.MkdirAll(sweepOutdir, 0755); err != nil {
		return fmt.Errorf("create outdir: %w", err)
	}

	summaryFile := filepath.Join(sweepOutdir, sweepTag+"_threshold_sweep_summary.json")
	rankedFile := filepath.Join(sweepOutdir, sweepTag+"_threshold_sweep_ranked.json")

	if err := writeJSON(summaryFile, report); err != nil {
		return err
	}
	if err := writeJSON(rankedFile, sweep.RankedReport{
		RunTag:        sweepTag,
		TotalConfigs:  len(ranked),
		RankedResults: ranked,
	}); err != nil {
		return err
	}

	return printJSON(map[string]any{
		"summary":       summaryFile,
		"ranked":        rankedFile,
		"total_configs": len(ranked),
	})
}

func parseFloatList(raw string) ([]float64, error) {
	var values []float64
	for _, part := range strings.Split(raw, ",") {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", token, err)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("at least one value is required")
	}
	return values, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
