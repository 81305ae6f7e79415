package desk

import (
	"encoding/json"
	"sort"
	"strings"
)

// Check statuses used in policy check results.
const (
	CheckPass = "PASS"
	CheckFail = "FAIL"
)

// RiskContext carries the account and market state the desk-level
// policy guards evaluate before any analyst or trader logic runs.
// Limits default to the desk policy values when a payload omits them.
type RiskContext struct {
	DailyRealizedPnLPct     float64  `json:"daily_realized_pnl_pct"`
	MaxDailyLossPct         float64  `json:"max_daily_loss_pct"`
	PerTradeRiskPct         float64  `json:"per_trade_risk_pct"`
	MaxPerTradeRiskPct      float64  `json:"max_per_trade_risk_pct"`
	ConcurrentPositions     int      `json:"concurrent_positions"`
	MaxConcurrentPositions  int      `json:"max_concurrent_positions"`
	SymbolExposurePct       float64  `json:"symbol_exposure_pct"`
	MaxSymbolExposurePct    float64  `json:"max_symbol_exposure_pct"`
	DataCompletenessPct     float64  `json:"data_completeness_pct"`
	MinDataCompletenessPct  float64  `json:"min_data_completeness_pct"`
	BidAskSpreadBps         float64  `json:"bid_ask_spread_bps"`
	MaxBidAskSpreadBps      float64  `json:"max_bid_ask_spread_bps"`
	EventBlackout           bool     `json:"event_blackout"`
	AvailableRiskBudgetPct  float64  `json:"available_risk_budget_pct"`
	RestrictedSymbols       []string `json:"restricted_symbols"`
}

// DefaultRiskContext returns a context with the desk policy limits
// and a fully healthy account/market state.
func DefaultRiskContext() RiskContext {
	return RiskContext{
		MaxDailyLossPct:        2.0,
		MaxPerTradeRiskPct:     0.5,
		MaxConcurrentPositions: 2,
		MaxSymbolExposurePct:   60.0,
		DataCompletenessPct:    100.0,
		MinDataCompletenessPct: 95.0,
		MaxBidAskSpreadBps:     50.0,
		AvailableRiskBudgetPct: 100.0,
	}
}

// UnmarshalJSON layers payload fields over the defaults so omitted
// limits keep their policy values.
func (c *RiskContext) UnmarshalJSON(data []byte) error {
	type alias RiskContext
	tmp := alias(DefaultRiskContext())
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*c = RiskContext(tmp)
	return nil
}

// PolicyCheck is one guard result carried in the decision's risk
// snapshot. Boolean guards encode their value as 0 or 1.
type PolicyCheck struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Status    string  `json:"status"`
}

// evaluatePolicy runs every guard against the context and returns the
// check results plus the hard-block codes of the failed guards,
// sorted and deduplicated.
func evaluatePolicy(symbol string, ctx RiskContext) ([]PolicyCheck, []string) {
	var checks []PolicyCheck
	var blocks []string

	guard := func(name, block string, value, threshold float64, pass bool) {
		status := CheckPass
		if !pass {
			status = CheckFail
			blocks = append(blocks, block)
		}
		checks = append(checks, PolicyCheck{Name: name, Value: value, Threshold: threshold, Status: status})
	}

	lossFloor := -abs(ctx.MaxDailyLossPct)
	guard("daily_loss_guard", "daily_loss_cap",
		ctx.DailyRealizedPnLPct, lossFloor, ctx.DailyRealizedPnLPct > lossFloor)

	guard("per_trade_risk_guard", "per_trade_risk_cap",
		ctx.PerTradeRiskPct, ctx.MaxPerTradeRiskPct, ctx.PerTradeRiskPct <= ctx.MaxPerTradeRiskPct)

	guard("concurrent_positions_guard", "max_concurrent_positions",
		float64(ctx.ConcurrentPositions), float64(ctx.MaxConcurrentPositions),
		ctx.ConcurrentPositions < ctx.MaxConcurrentPositions)

	guard("symbol_exposure_guard", "max_underlying_exposure",
		ctx.SymbolExposurePct, ctx.MaxSymbolExposurePct, ctx.SymbolExposurePct <= ctx.MaxSymbolExposurePct)

	guard("data_quality_guard", "data_quality",
		ctx.DataCompletenessPct, ctx.MinDataCompletenessPct,
		ctx.DataCompletenessPct >= ctx.MinDataCompletenessPct)

	guard("liquidity_guard", "liquidity_spread",
		ctx.BidAskSpreadBps, ctx.MaxBidAskSpreadBps, ctx.BidAskSpreadBps <= ctx.MaxBidAskSpreadBps)

	guard("event_blackout_guard", "event_blackout",
		boolValue(ctx.EventBlackout), 0, !ctx.EventBlackout)

	guard("risk_budget_guard", "risk_budget_unavailable",
		ctx.AvailableRiskBudgetPct, 0, ctx.AvailableRiskBudgetPct > 0)

	restricted := false
	symbolUpper := strings.ToUpper(strings.TrimSpace(symbol))
	for _, item := range ctx.RestrictedSymbols {
		if strings.ToUpper(strings.TrimSpace(item)) == symbolUpper {
			restricted = true
			break
		}
	}
	guard("restricted_symbol_guard", "restricted_symbol",
		boolValue(restricted), 0, !restricted)

	return checks, dedupSorted(blocks)
}

// mergeHardBlocks combines reviewer blocks and policy blocks into one
// sorted, deduplicated list.
func mergeHardBlocks(reviewer, policy []string) []string {
	merged := make([]string, 0, len(reviewer)+len(policy))
	merged = append(merged, reviewer...)
	merged = append(merged, policy...)
	return dedupSorted(merged)
}

func dedupSorted(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
