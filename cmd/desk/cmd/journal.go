package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantdesk/desk/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the experience ledger",
	Long: `Query and display records from the SQLite experience ledger.

Subcommands:
  recent      - List recent experiences
  reflections - List recent reflections
  prior       - Show the strategy prior for a symbol

Examples:
  desk journal recent --symbol NIFTY50 --limit 10
  desk journal reflections
  desk journal prior NIFTY50`,
}

var journalRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recent experiences",
	Args:  cobra.NoArgs,
	RunE:  runJournalRecent,
}

var journalReflectionsCmd = &cobra.Command{
	Use:   "reflections",
	Short: "List recent reflections",
	Args:  cobra.NoArgs,
	RunE:  runJournalReflections,
}

var journalPriorCmd = &cobra.Command{
	Use:   "prior <symbol>",
	Short: "Show the strategy prior for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalPrior,
}

var (
	journalDBPath string
	journalSymbol string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRecentCmd)
	journalCmd.AddCommand(journalReflectionsCmd)
	journalCmd.AddCommand(journalPriorCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./desk.db", "path to SQLite experience ledger")
	journalCmd.PersistentFlags().StringVarP(&journalSymbol, "symbol", "s", "", "filter by symbol")
	journalCmd.PersistentFlags().IntVarP(&journalLimit, "limit", "n", 20, "maximum records to return")
}

func runJournalRecent(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListRecent(journalSymbol, journalLimit)
	if err != nil {
		return fmt.Errorf("query experiences: %w", err)
	}
	return printJSON(recs)
}

func runJournalReflections(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.RecentReflections(journalSymbol, journalLimit)
	if err != nil {
		return fmt.Errorf("query reflections: %w", err)
	}
	return printJSON(recs)
}

func runJournalPrior(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	prior, err := j.GetStrategyPrior(args[0])
	if err != nil {
		return fmt.Errorf("query prior: %w", err)
	}
	return printJSON(prior)
}
