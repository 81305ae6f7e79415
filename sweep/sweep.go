// Package sweep grid-searches signal thresholds over a recorded
// dataset and ranks candidate configurations by a veto-aware score.
package sweep

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/quantdesk/desk/desk"
	"github.com/quantdesk/desk/signal"
)

// Config is one candidate threshold triple.
type Config struct {
	BullishThreshold    float64 `json:"bullish_threshold"`
	BearishThreshold    float64 `json:"bearish_threshold"`
	StrongMoveThreshold float64 `json:"strong_move_threshold"`
}

// ModelVersion names the signal engine variant this triple produces.
func (c Config) ModelVersion() string {
	return fmt.Sprintf("sweep_b%.2f_s%.2f_br%.2f",
		c.BullishThreshold, c.StrongMoveThreshold, c.BearishThreshold)
}

// ErrEmptyGrid means every candidate combination was rejected by the
// sign and magnitude filters.
var ErrEmptyGrid = errors.New("threshold grid is empty after validation")

// BuildGrid crosses the three value lists, dropping combinations with
// a non-positive bullish threshold, a non-negative bearish threshold,
// a non-positive strong-move threshold, or a magnitude above 10.
func BuildGrid(bullish, bearish, strongMove []float64) ([]Config, error) {
	var grid []Config
	for _, b := range bullish {
		for _, s := range bearish {
			if b <= 0 || s >= 0 {
				continue
			}
			if math.Abs(b) > 10 || math.Abs(s) > 10 {
				continue
			}
			for _, m := range strongMove {
				if m <= 0 {
					continue
				}
				grid = append(grid, Config{
					BullishThreshold:    b,
					BearishThreshold:    s,
					StrongMoveThreshold: m,
				})
			}
		}
	}
	if len(grid) == 0 {
		return nil, ErrEmptyGrid
	}
	return grid, nil
}

// Derived holds the ranking inputs computed from one config's batch
// summary.
type Derived struct {
	ActiveCount       int     `json:"active_count"`
	VetoCount         int     `json:"veto_count"`
	VetoPct           float64 `json:"veto_pct"`
	HighMediumConfCnt int     `json:"high_medium_confidence_count"`
	Score             float64 `json:"score"`
}

// Result pairs one candidate config with its evaluation.
type Result struct {
	Config  Config         `json:"config"`
	Summary signal.Summary `json:"summary"`
	Derived Derived        `json:"derived"`
}

// Evaluator turns one candidate config into decision outputs over the
// dataset. Summarizer aggregates those outputs. Both are injectable
// so tests can substitute fixtures.
type (
	Evaluator  func(cfg Config) ([]signal.Output, error)
	Summarizer func(outputs []signal.Output) (signal.Summary, error)
)

// CollaboratorError wraps a failure from an injected collaborator,
// identifying the candidate config being evaluated.
type CollaboratorError struct {
	Config Config
	Err    error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("evaluate config %s: %v", e.Config.ModelVersion(), e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// Optimizer runs the full grid through its collaborators and ranks
// the results.
type Optimizer struct {
	Evaluate  Evaluator
	Summarize Summarizer
}

// NewOptimizer builds an optimizer that runs a real signal engine
// over the given dataset for each candidate config.
func NewOptimizer(dataset []signal.MarketInput) *Optimizer {
	return &Optimizer{
		Evaluate: func(cfg Config) ([]signal.Output, error) {
			sc := signal.DefaultConfig()
			sc.BullishThreshold = cfg.BullishThreshold
			sc.BearishThreshold = cfg.BearishThreshold
			sc.StrongMoveThreshold = cfg.StrongMoveThreshold
			sc.ModelVersion = cfg.ModelVersion()

			engine := signal.NewEngine(sc)
			outputs := make([]signal.Output, 0, len(dataset))
			for _, market := range dataset {
				outputs = append(outputs, engine.Decide(market))
			}
			return outputs, nil
		},
		Summarize: func(outputs []signal.Output) (signal.Summary, error) {
			return signal.Summarize(outputs), nil
		},
	}
}

// Run evaluates every config in the grid, in grid order.
func (o *Optimizer) Run(grid []Config) ([]Result, error) {
	results := make([]Result, 0, len(grid))
	for _, cfg := range grid {
		outputs, err := o.Evaluate(cfg)
		if err != nil {
			return nil, &CollaboratorError{Config: cfg, Err: err}
		}
		summary, err := o.Summarize(outputs)
		if err != nil {
			return nil, &CollaboratorError{Config: cfg, Err: err}
		}
		results = append(results, Result{
			Config:  cfg,
			Summary: summary,
			Derived: derive(summary),
		})
	}
	return results, nil
}

func derive(s signal.Summary) Derived {
	active := s.ActionCounts[string(desk.BuyCall)] + s.ActionCounts[string(desk.BuyPut)]
	highMed := s.ConfidenceCounts[string(desk.High)] + s.ConfidenceCounts[string(desk.Medium)]
	score := float64(active) - 0.5*float64(s.RiskVetoCount) + 0.1*float64(highMed)
	return Derived{
		ActiveCount:       active,
		VetoCount:         s.RiskVetoCount,
		VetoPct:           s.RiskVetoPct,
		HighMediumConfCnt: highMed,
		Score:             math.Round(score*10000) / 10000,
	}
}

// Rank sorts results best-first. The ordering key is score, then
// active count, then lower veto percentage, then high-plus-medium
// confidence count. The sort is stable so equal keys preserve grid
// order.
func Rank(results []Result) []Result {
	ranked := make([]Result, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Derived, ranked[j].Derived
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.ActiveCount != b.ActiveCount {
			return a.ActiveCount > b.ActiveCount
		}
		if a.VetoPct != b.VetoPct {
			return a.VetoPct < b.VetoPct
		}
		return a.HighMediumConfCnt > b.HighMediumConfCnt
	})
	return ranked
}

// Selection is the outcome of applying the veto guard to a ranked
// list. GuardRelaxed is set when no candidate satisfied the guard and
// the overall top was taken instead.
type Selection struct {
	Best         *Result `json:"best"`
	GuardRelaxed bool    `json:"guard_relaxed"`
}

// Pick returns the highest-ranked result whose veto percentage is
// within maxVetoPct. When none qualifies it falls back to the top
// result with GuardRelaxed set. An empty list yields a nil Best.
func Pick(ranked []Result, maxVetoPct float64) Selection {
	for i := range ranked {
		if ranked[i].Derived.VetoPct <= maxVetoPct {
			return Selection{Best: &ranked[i]}
		}
	}
	if len(ranked) == 0 {
		return Selection{}
	}
	return Selection{Best: &ranked[0], GuardRelaxed: true}
}
