// Package desk implements the decision desk: it validates analyst,
// trader, and risk-review inputs and merges them into one auditable
// trading decision.
package desk

import "time"

// SchemaVersion tags every emitted decision record.
const SchemaVersion = "desk.v1"

// Action is the tradeable decision space.
type Action string

const (
	BuyCall Action = "BUY_CALL"
	BuyPut  Action = "BUY_PUT"
	NoTrade Action = "NO_TRADE"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case BuyCall, BuyPut, NoTrade:
		return true
	}
	return false
}

// Confidence is the three-level conviction scale shared by analysts,
// the trader, and the final decision.
type Confidence string

const (
	Low    Confidence = "LOW"
	Medium Confidence = "MEDIUM"
	High   Confidence = "HIGH"
)

func (c Confidence) Valid() bool {
	switch c {
	case Low, Medium, High:
		return true
	}
	return false
}

// Weight maps confidence to its vote weight.
func (c Confidence) Weight() int {
	switch c {
	case Low:
		return 1
	case Medium:
		return 2
	case High:
		return 3
	}
	return 0
}

// Role identifies one of the three required analyst seats.
type Role string

const (
	Technical   Role = "technical"
	Fundamental Role = "fundamental"
	Sentiment   Role = "sentiment"
)

func (r Role) Valid() bool {
	switch r {
	case Technical, Fundamental, Sentiment:
		return true
	}
	return false
}

// RequiredRoles lists the analyst seats a request must fill, one each.
var RequiredRoles = []Role{Technical, Fundamental, Sentiment}

// Stance is an analyst's directional opinion.
type Stance string

const (
	Bullish Stance = "BULLISH"
	Bearish Stance = "BEARISH"
	Neutral Stance = "NEUTRAL"
)

func (s Stance) Valid() bool {
	switch s {
	case Bullish, Bearish, Neutral:
		return true
	}
	return false
}

// AnalystOutput is one analyst's validated directional opinion.
type AnalystOutput struct {
	Role       Role       `json:"role"`
	Stance     Stance     `json:"stance"`
	Confidence Confidence `json:"confidence"`
	Rationale  string     `json:"rationale"`
	Evidence   []string   `json:"evidence"`
}

// TraderProposal is the trader's proposed trade.
type TraderProposal struct {
	Action        Action     `json:"action"`
	Symbol        string     `json:"symbol"`
	Quantity      int        `json:"quantity"`
	Confidence    Confidence `json:"confidence"`
	Rationale     string     `json:"rationale"`
	RiskBudgetPct float64    `json:"risk_budget_pct"`
}

// RiskReview is the risk reviewer's sign-off. Approved=false or any
// hard block vetoes the decision regardless of everything else.
type RiskReview struct {
	Approved       bool     `json:"approved"`
	Reason         string   `json:"reason"`
	HardBlocks     []string `json:"hard_blocks"`
	MaxPositionPct float64  `json:"max_position_pct"`
}

// Request is one fully validated decide request.
type Request struct {
	Analysts       []AnalystOutput `json:"analysts"`
	TraderProposal TraderProposal  `json:"trader_proposal"`
	RiskReview     RiskReview      `json:"risk_review"`

	// RiskContext is optional; when present the policy guards in
	// policy.go run and may add hard blocks of their own.
	RiskContext *RiskContext `json:"risk_context,omitempty"`
}

// RoleVote is the per-analyst audit entry carried on every decision.
type RoleVote struct {
	Role       Role       `json:"role"`
	Stance     Stance     `json:"stance"`
	Confidence Confidence `json:"confidence"`
	Rationale  string     `json:"rationale"`
}

// RiskSnapshot is the risk section embedded in a decision: the
// reviewer's verdict plus the combined hard blocks and, when a risk
// context was supplied, the individual policy check results.
type RiskSnapshot struct {
	Approved       bool          `json:"approved"`
	Reason         string        `json:"reason"`
	HardBlocks     []string      `json:"hard_blocks"`
	MaxPositionPct float64       `json:"max_position_pct"`
	PolicyChecks   []PolicyCheck `json:"policy_checks,omitempty"`
}

// Decision is the immutable output of one consensus run.
type Decision struct {
	SchemaVersion string       `json:"schema_version"`
	Timestamp     time.Time    `json:"timestamp"`
	Approved      bool         `json:"approved"`
	Action        Action       `json:"action"`
	Symbol        string       `json:"symbol"`
	Quantity      int          `json:"quantity"`
	Confidence    Confidence   `json:"confidence"`
	Rationale     string       `json:"rationale"`
	Risk          RiskSnapshot `json:"risk"`
	RoleVotes     []RoleVote   `json:"role_votes"`
	Evidence      []string     `json:"evidence"`
}
