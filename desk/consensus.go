package desk

import "time"

// Score thresholds for the final confidence ladder and the vote
// margin that must separate the two directional camps.
const (
	voteMargin      = 2
	highConfScore   = 8
	mediumConfScore = 5
)

// Engine turns a validated Request into a Decision. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	// Now supplies decision timestamps; defaults to time.Now.
	Now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{}
}

// Decide runs the consensus state machine:
//
//  1. risk veto (reviewer rejection, reviewer hard blocks, or failed
//     policy guards), which takes absolute precedence
//  2. weighted analyst vote with a margin-of-2 tie-break
//  3. trader/consensus alignment check
//  4. approval with score-derived confidence
//
// Every branch emits the full role-vote list and concatenated
// evidence for audit.
func (e *Engine) Decide(req *Request) Decision {
	var checks []PolicyCheck
	var policyBlocks []string
	if req.RiskContext != nil {
		checks, policyBlocks = evaluatePolicy(req.TraderProposal.Symbol, *req.RiskContext)
	}
	hardBlocks := mergeHardBlocks(req.RiskReview.HardBlocks, policyBlocks)

	if !req.RiskReview.Approved || len(hardBlocks) > 0 {
		reason := req.RiskReview.Reason
		if req.RiskReview.Approved {
			reason = "Policy veto triggered"
		}
		return e.emit(req, hardBlocks, checks, emitArgs{
			rationale: "Risk manager veto: " + reason,
		})
	}

	expected := expectedAction(req.Analysts)

	if expected == NoTrade {
		return e.emit(req, hardBlocks, checks, emitArgs{
			rationale: "No directional consensus among analysts.",
		})
	}

	if req.TraderProposal.Action != expected {
		return e.emit(req, hardBlocks, checks, emitArgs{
			rationale: "Trader proposal is misaligned with analyst consensus.",
		})
	}

	return e.emit(req, hardBlocks, checks, emitArgs{
		approved:   true,
		action:     req.TraderProposal.Action,
		quantity:   req.TraderProposal.Quantity,
		confidence: consensusConfidence(req.Analysts, expected),
		rationale:  req.TraderProposal.Rationale,
	})
}

// expectedAction computes the weighted directional vote. A camp must
// lead by at least voteMargin to win; otherwise the desk stands down.
func expectedAction(analysts []AnalystOutput) Action {
	bullish, bearish := 0, 0
	for _, a := range analysts {
		switch a.Stance {
		case Bullish:
			bullish += a.Confidence.Weight()
		case Bearish:
			bearish += a.Confidence.Weight()
		}
	}

	if bullish >= bearish+voteMargin {
		return BuyCall
	}
	if bearish >= bullish+voteMargin {
		return BuyPut
	}
	return NoTrade
}

// consensusConfidence grades the winning camp's total weight.
func consensusConfidence(analysts []AnalystOutput, expected Action) Confidence {
	target := Bullish
	if expected == BuyPut {
		target = Bearish
	}

	score := 0
	for _, a := range analysts {
		if a.Stance == target {
			score += a.Confidence.Weight()
		}
	}

	switch {
	case score >= highConfScore:
		return High
	case score >= mediumConfScore:
		return Medium
	}
	return Low
}

type emitArgs struct {
	approved   bool
	action     Action
	quantity   int
	confidence Confidence
	rationale  string
}

func (e *Engine) emit(req *Request, hardBlocks []string, checks []PolicyCheck, args emitArgs) Decision {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	action := args.action
	if !args.approved {
		action = NoTrade
	}
	confidence := args.confidence
	if confidence == "" {
		confidence = Low
	}

	votes := make([]RoleVote, 0, len(req.Analysts))
	var evidence []string
	for _, a := range req.Analysts {
		votes = append(votes, RoleVote{
			Role:       a.Role,
			Stance:     a.Stance,
			Confidence: a.Confidence,
			Rationale:  a.Rationale,
		})
		evidence = append(evidence, a.Evidence...)
	}

	return Decision{
		SchemaVersion: SchemaVersion,
		Timestamp:     now().UTC(),
		Approved:      args.approved,
		Action:        action,
		Symbol:        req.TraderProposal.Symbol,
		Quantity:      args.quantity,
		Confidence:    confidence,
		Rationale:     args.rationale,
		Risk: RiskSnapshot{
			Approved:       req.RiskReview.Approved,
			Reason:         req.RiskReview.Reason,
			HardBlocks:     hardBlocks,
			MaxPositionPct: req.RiskReview.MaxPositionPct,
			PolicyChecks:   checks,
		},
		RoleVotes: votes,
		Evidence:  evidence,
	}
}
