package desk

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Raw request shapes. Pointers distinguish absent fields from zero
// values so errors can name the exact missing key.
type rawRequest struct {
	Analysts       []rawAnalyst `json:"analysts"`
	TraderProposal *rawProposal `json:"trader_proposal"`
	RiskReview     *rawReview   `json:"risk_review"`
	RiskContext    *RiskContext `json:"risk_context"`
}

type rawAnalyst struct {
	Role       *string  `json:"role"`
	Stance     *string  `json:"stance"`
	Confidence *string  `json:"confidence"`
	Rationale  *string  `json:"rationale"`
	Evidence   []string `json:"evidence"`
}

type rawProposal struct {
	Action        *string  `json:"action"`
	Symbol        *string  `json:"symbol"`
	Quantity      *int     `json:"quantity"`
	Confidence    *string  `json:"confidence"`
	Rationale     *string  `json:"rationale"`
	RiskBudgetPct *float64 `json:"risk_budget_pct"`
}

type rawReview struct {
	Approved       *bool     `json:"approved"`
	Reason         *string   `json:"reason"`
	HardBlocks     *[]string `json:"hard_blocks"`
	MaxPositionPct *float64  `json:"max_position_pct"`
}

// ParseRequest validates a decide payload and normalizes it into a
// strongly typed Request. It has no side effects; every failure is a
// *ValidationError naming the offending field.
func ParseRequest(data []byte) (*Request, error) {
	var raw rawRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, validationf("payload."+typeErr.Field, "must be of type %s", typeErr.Type)
		}
		return nil, validationf("payload", "is not a valid JSON object: %v", err)
	}

	if len(raw.Analysts) < len(RequiredRoles) {
		return nil, validationf("payload.analysts", "must contain at least %d analyst outputs", len(RequiredRoles))
	}
	if raw.TraderProposal == nil {
		return nil, validationf("payload.trader_proposal", "is required")
	}
	if raw.RiskReview == nil {
		return nil, validationf("payload.risk_review", "is required")
	}

	req := &Request{RiskContext: raw.RiskContext}

	seen := map[Role]bool{}
	for _, item := range raw.Analysts {
		analyst, err := parseAnalyst(item)
		if err != nil {
			return nil, err
		}
		if seen[analyst.Role] {
			return nil, validationf("payload.analysts", "has more than one %s analyst", analyst.Role)
		}
		seen[analyst.Role] = true
		req.Analysts = append(req.Analysts, analyst)
	}
	for _, role := range RequiredRoles {
		if !seen[role] {
			return nil, validationf("payload.analysts", "is missing the %s analyst", role)
		}
	}

	proposal, err := parseProposal(*raw.TraderProposal)
	if err != nil {
		return nil, err
	}
	req.TraderProposal = proposal

	review, err := parseReview(*raw.RiskReview)
	if err != nil {
		return nil, err
	}
	req.RiskReview = review

	return req, nil
}

func parseAnalyst(raw rawAnalyst) (AnalystOutput, error) {
	var out AnalystOutput

	role, err := requiredText(raw.Role, "analyst.role")
	if err != nil {
		return out, err
	}
	out.Role = Role(strings.ToLower(role))
	if !out.Role.Valid() {
		return out, validationf("analyst.role", "must be one of %s", enumList(Technical, Fundamental, Sentiment))
	}

	stance, err := requiredText(raw.Stance, "analyst.stance")
	if err != nil {
		return out, err
	}
	out.Stance = Stance(strings.ToUpper(stance))
	if !out.Stance.Valid() {
		return out, validationf("analyst.stance", "must be one of %s", enumList(Bullish, Bearish, Neutral))
	}

	out.Confidence, err = parseConfidence(raw.Confidence, "analyst.confidence")
	if err != nil {
		return out, err
	}

	out.Rationale, err = requiredText(raw.Rationale, "analyst.rationale")
	if err != nil {
		return out, err
	}

	if len(raw.Evidence) == 0 {
		return out, validationf("analyst.evidence", "must be a non-empty list of strings")
	}
	for _, item := range raw.Evidence {
		item = strings.TrimSpace(item)
		if item == "" {
			return out, validationf("analyst.evidence", "must not contain empty entries")
		}
		out.Evidence = append(out.Evidence, item)
	}

	return out, nil
}

func parseProposal(raw rawProposal) (TraderProposal, error) {
	var out TraderProposal

	action, err := requiredText(raw.Action, "trader_proposal.action")
	if err != nil {
		return out, err
	}
	out.Action = Action(strings.ToUpper(action))
	if !out.Action.Valid() {
		return out, validationf("trader_proposal.action", "must be one of %s", enumList(BuyCall, BuyPut, NoTrade))
	}

	out.Symbol, err = requiredText(raw.Symbol, "trader_proposal.symbol")
	if err != nil {
		return out, err
	}

	if raw.Quantity == nil {
		return out, validationf("trader_proposal.quantity", "is required")
	}
	if *raw.Quantity <= 0 {
		return out, validationf("trader_proposal.quantity", "must be a positive integer")
	}
	out.Quantity = *raw.Quantity

	out.Confidence, err = parseConfidence(raw.Confidence, "trader_proposal.confidence")
	if err != nil {
		return out, err
	}

	out.Rationale, err = requiredText(raw.Rationale, "trader_proposal.rationale")
	if err != nil {
		return out, err
	}

	out.RiskBudgetPct, err = boundedPct(raw.RiskBudgetPct, "trader_proposal.risk_budget_pct")
	if err != nil {
		return out, err
	}

	return out, nil
}

func parseReview(raw rawReview) (RiskReview, error) {
	var out RiskReview

	if raw.Approved == nil {
		return out, validationf("risk_review.approved", "is required")
	}
	out.Approved = *raw.Approved

	var err error
	out.Reason, err = requiredText(raw.Reason, "risk_review.reason")
	if err != nil {
		return out, err
	}

	if raw.HardBlocks == nil {
		return out, validationf("risk_review.hard_blocks", "is required")
	}
	for _, item := range *raw.HardBlocks {
		if item = strings.TrimSpace(item); item != "" {
			out.HardBlocks = append(out.HardBlocks, item)
		}
	}

	out.MaxPositionPct, err = boundedPct(raw.MaxPositionPct, "risk_review.max_position_pct")
	if err != nil {
		return out, err
	}

	return out, nil
}

func requiredText(value *string, field string) (string, error) {
	if value == nil {
		return "", validationf(field, "is required")
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return "", validationf(field, "must be a non-empty string")
	}
	return trimmed, nil
}

func parseConfidence(value *string, field string) (Confidence, error) {
	text, err := requiredText(value, field)
	if err != nil {
		return "", err
	}
	conf := Confidence(strings.ToUpper(text))
	if !conf.Valid() {
		return "", validationf(field, "must be one of %s", enumList(Low, Medium, High))
	}
	return conf, nil
}

// boundedPct enforces the (0, 100] range shared by the percentage
// fields.
func boundedPct(value *float64, field string) (float64, error) {
	if value == nil {
		return 0, validationf(field, "is required")
	}
	if *value <= 0 || *value > 100 {
		return 0, validationf(field, "must be a number in (0, 100]")
	}
	return *value, nil
}

func enumList[T ~string](values ...T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}
