package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantdesk/desk/desk"
	"github.com/quantdesk/desk/journal"
	"github.com/quantdesk/desk/pkg/id"
)

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Validate a desk request and emit the consensus decision",
	Long: `Read a desk request payload (analyst outputs, trader proposal, risk
review), run consensus gating, and print the resulting decision as JSON.

The decision is recorded in the experience ledger unless --no-record is set.

Example:
  desk decide --input request.json --db ./desk.db`,
	RunE: runDecide,
}

var (
	decideInput    string
	decideDBPath   string
	decideOwner    string
	decideNoRecord bool
)

func init() {
	rootCmd.AddCommand(decideCmd)

	decideCmd.Flags().StringVarP(&decideInput, "input", "i", "", "path to request JSON (required)")
	decideCmd.Flags().StringVarP(&decideDBPath, "db", "d", "./desk.db", "path to SQLite experience ledger")
	decideCmd.Flags().StringVar(&decideOwner, "owner", "desk", "owner recorded with the experience")
	decideCmd.Flags().BoolVar(&decideNoRecord, "no-record", false, "skip recording the decision in the ledger")

	decideCmd.MarkFlagRequired("input")
}

func runDecide(cmd *cobra.Command, args []string) error {
	payload, err := os.ReadFile(decideInput)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}

	req, err := desk.ParseRequest(payload)
	if err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	decision := desk.NewEngine().Decide(req)

	out := map[string]any{
		"trace_id": id.New(),
		"decision": decision,
	}

	if !decideNoRecord {
		j, err := journal.NewSQLite(decideDBPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer j.Close()

		experienceID, err := j.RecordDecision(decideOwner, payload, decision)
		if err != nil {
			return fmt.Errorf("record decision: %w", err)
		}
		out["experience_id"] = experienceID
	}

	return printJSON(out)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
