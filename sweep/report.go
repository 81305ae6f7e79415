package sweep

import "time"

// SelectionPolicy documents how the best config was chosen.
type SelectionPolicy struct {
	Objective  string  `json:"objective"`
	MaxVetoPct float64 `json:"max_veto_pct"`
}

// Report is the summary artifact written after a sweep run.
type Report struct {
	RunTag          string          `json:"run_tag"`
	InputFile       string          `json:"input_file"`
	RecordCount     int             `json:"record_count"`
	EvaluatedAt     time.Time       `json:"evaluated_at"`
	SelectionPolicy SelectionPolicy `json:"selection_policy"`
	TotalConfigs    int             `json:"total_configs"`
	BestConfig      *Result         `json:"best_config"`
	GuardRelaxed    bool            `json:"guard_relaxed"`
	TopResults      []Result        `json:"top_results"`
}

// RankedReport is the full ranked list artifact.
type RankedReport struct {
	RunTag        string   `json:"run_tag"`
	TotalConfigs  int      `json:"total_configs"`
	RankedResults []Result `json:"ranked_results"`
}

// NewReport assembles the summary artifact from a ranked sweep. topK
// values below 1 are treated as 1.
func NewReport(tag, inputFile string, recordCount int, evaluatedAt time.Time, maxVetoPct float64, ranked []Result, sel Selection, topK int) Report {
	if topK < 1 {
		topK = 1
	}
	if topK > len(ranked) {
		topK = len(ranked)
	}
	return Report{
		RunTag:      tag,
		InputFile:   inputFile,
		RecordCount: recordCount,
		EvaluatedAt: evaluatedAt.UTC(),
		SelectionPolicy: SelectionPolicy{
			Objective:  "maximize score with veto guard",
			MaxVetoPct: maxVetoPct,
		},
		TotalConfigs: len(ranked),
		BestConfig:   sel.Best,
		GuardRelaxed: sel.GuardRelaxed,
		TopResults:   ranked[:topK],
	}
}
