package signal

import "math"

// Summary aggregates a batch of signal outputs.
type Summary struct {
	TotalDecisions        int                `json:"total_decisions"`
	ActionCounts          map[string]int     `json:"action_counts"`
	ActionDistributionPct map[string]float64 `json:"action_distribution_pct"`
	ConfidenceCounts      map[string]int     `json:"confidence_counts"`
	RiskVetoCount         int                `json:"risk_veto_count"`
	RiskVetoPct           float64            `json:"risk_veto_pct"`
}

// Summarize counts actions, confidence levels, and guard vetoes over
// one decision batch. Percentages are rounded to two decimals.
func Summarize(outputs []Output) Summary {
	total := len(outputs)
	actions := map[string]int{}
	confidences := map[string]int{}
	vetoes := 0

	for _, out := range outputs {
		actions[string(out.Action)]++
		confidences[string(out.Confidence)]++
		if out.RiskChecks.Veto() {
			vetoes++
		}
	}

	pct := func(n int) float64 {
		if total == 0 {
			return 0
		}
		return math.Round(float64(n)*100.0/float64(total)*100) / 100
	}

	dist := map[string]float64{}
	for action, n := range actions {
		dist[action] = pct(n)
	}

	return Summary{
		TotalDecisions:        total,
		ActionCounts:          actions,
		ActionDistributionPct: dist,
		ConfidenceCounts:      confidences,
		RiskVetoCount:         vetoes,
		RiskVetoPct:           pct(vetoes),
	}
}
