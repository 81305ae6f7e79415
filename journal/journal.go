// Package journal persists every desk decision and its eventual
// outcome, and maintains the per-symbol strategy priors learned from
// those outcomes.
package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/quantdesk/desk/desk"
)

// OutcomeLabel classifies a closed experience.
type OutcomeLabel string

const (
	Win       OutcomeLabel = "WIN"
	Loss      OutcomeLabel = "LOSS"
	Breakeven OutcomeLabel = "BREAKEVEN"
)

func (l OutcomeLabel) Valid() bool {
	switch l {
	case Win, Loss, Breakeven:
		return true
	}
	return false
}

// Reward is the online-learning signal for one outcome.
func (l OutcomeLabel) Reward() float64 {
	switch l {
	case Win:
		return 1
	case Loss:
		return -1
	}
	return 0
}

// LearningRate scales each reward when updating a strategy prior.
const LearningRate = 0.1

// Experience is one persisted decision plus, once known, its outcome.
// OutcomeLabel is empty and PnLPct nil until the outcome is recorded.
type Experience struct {
	ID           int64           `json:"experience_id"`
	CreatedAt    time.Time       `json:"created_at"`
	Owner        string          `json:"owner"`
	Symbol       string          `json:"symbol"`
	Action       desk.Action     `json:"action"`
	Confidence   desk.Confidence `json:"confidence"`
	Approved     bool            `json:"approved"`
	Rationale    string          `json:"rationale"`
	HardBlocks   []string        `json:"hard_blocks"`
	OutcomeLabel OutcomeLabel    `json:"outcome_label,omitempty"`
	PnLPct       *float64        `json:"pnl_pct,omitempty"`
}

// Reflection is a qualitative post-mortem appended to an experience.
type Reflection struct {
	ID           int64        `json:"reflection_id"`
	ExperienceID int64        `json:"experience_id"`
	CreatedAt    time.Time    `json:"created_at"`
	Symbol       string       `json:"symbol"`
	OutcomeLabel OutcomeLabel `json:"outcome_label"`
	PnLPct       float64      `json:"pnl_pct"`
	Note         string       `json:"reflection_note"`

	// Optional self-assessment scores in [0, 1].
	DecisionQuality *float64 `json:"decision_quality,omitempty"`
	RiskEfficiency  *float64 `json:"risk_efficiency,omitempty"`
	TimingQuality   *float64 `json:"timing_quality,omitempty"`
}

// OutcomeReflection is the input to the composite outcome update.
type OutcomeReflection struct {
	OutcomeLabel    OutcomeLabel
	PnLPct          float64
	Note            string
	DecisionQuality *float64
	RiskEfficiency  *float64
	TimingQuality   *float64
}

// StrategyPrior is the per-symbol online bias estimate. Both biases
// stay within [-1, 1] by construction.
type StrategyPrior struct {
	Symbol      string    `json:"symbol"`
	BuyCallBias float64   `json:"buy_call_bias"`
	BuyPutBias  float64   `json:"buy_put_bias"`
	SampleCount int       `json:"sample_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Ledger is the persistence contract for experiences, reflections,
// and strategy priors. Implementations must make
// UpdateOutcomeWithReflection atomic.
type Ledger interface {
	// RecordDecision appends a new experience and returns its id.
	RecordDecision(owner string, payload json.RawMessage, d desk.Decision) (int64, error)

	// ListRecent returns experiences most-recent-first, optionally
	// filtered by symbol. limit <= 0 returns an empty slice.
	ListRecent(symbol string, limit int) ([]Experience, error)

	// UpdateOutcome sets the outcome fields at most once. It returns
	// false when the id does not exist or an outcome is already set.
	UpdateOutcome(experienceID int64, label OutcomeLabel, pnlPct float64) (bool, error)

	// UpdateOutcomeWithReflection applies the outcome, appends a
	// reflection, and re-estimates the symbol's strategy prior in a
	// single transaction. It returns the updated prior.
	UpdateOutcomeWithReflection(experienceID int64, r OutcomeReflection) (StrategyPrior, error)

	// GetStrategyPrior returns the symbol's prior, or a zeroed
	// default when the symbol has no outcomes yet. Never errors on an
	// unseen symbol.
	GetStrategyPrior(symbol string) (StrategyPrior, error)

	// RecentReflections returns reflections most-recent-first,
	// optionally filtered by the owning experience's symbol.
	RecentReflections(symbol string, limit int) ([]Reflection, error)

	Close() error
}

// NotFoundError reports a reference to a non-existent experience.
type NotFoundError struct {
	ExperienceID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("experience %d not found", e.ExperienceID)
}

// ErrOutcomeAlreadySet is returned by the composite update when the
// experience already has an outcome recorded.
var ErrOutcomeAlreadySet = fmt.Errorf("outcome already recorded")

func clampBias(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
