// Package signal generates rule-based directional signals from index
// snapshots. The engine is deterministic: same input and config, same
// output.
package signal

import (
	"fmt"
	"math"

	"github.com/quantdesk/desk/desk"
)

// Config holds the momentum thresholds and guard limits for one
// engine instance. Zero values are not usable; start from
// DefaultConfig.
type Config struct {
	BullishThreshold    float64 `json:"bullish_threshold" yaml:"bullish_threshold"`
	BearishThreshold    float64 `json:"bearish_threshold" yaml:"bearish_threshold"`
	StrongMoveThreshold float64 `json:"strong_move_threshold" yaml:"strong_move_threshold"`
	MaxDailyLossPct     float64 `json:"max_daily_loss_pct" yaml:"max_daily_loss_pct"`
	MaxSpreadBps        float64 `json:"max_spread_bps" yaml:"max_spread_bps"`
	StopLossPct         float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	TargetPct           float64 `json:"target_pct" yaml:"target_pct"`
	ModelVersion        string  `json:"model_version" yaml:"model_version"`
}

func DefaultConfig() Config {
	return Config{
		BullishThreshold:    0.4,
		BearishThreshold:    -0.4,
		StrongMoveThreshold: 0.8,
		MaxDailyLossPct:     2.0,
		MaxSpreadBps:        50.0,
		StopLossPct:         12.0,
		TargetPct:           24.0,
		ModelVersion:        "baseline_v1",
	}
}

// StrikeSteps maps an underlying to its strike grid spacing. Unknown
// underlyings fall back to 100.
var StrikeSteps = map[string]int{
	"NIFTY50":   50,
	"BANKNIFTY": 100,
	"SENSEX":    100,
}

// MarketInput is one snapshot of an index plus the account state the
// guards need.
type MarketInput struct {
	Timestamp           string  `json:"timestamp"`
	Underlying          string  `json:"underlying"`
	LTP                 float64 `json:"ltp"`
	PrevClose           float64 `json:"prev_close"`
	Session             string  `json:"session"`
	DailyRealizedPnLPct float64 `json:"daily_realized_pnl_pct"`
	BidAskSpreadBps     float64 `json:"bid_ask_spread_bps"`
}

// RiskChecks records each guard verdict as PASS or FAIL.
type RiskChecks struct {
	DailyLossGuard   string `json:"daily_loss_guard"`
	SpreadGuard      string `json:"spread_guard"`
	DataQualityGuard string `json:"data_quality_guard"`
}

// Veto reports whether any guard failed.
func (c RiskChecks) Veto() bool {
	return c.DailyLossGuard == desk.CheckFail ||
		c.SpreadGuard == desk.CheckFail ||
		c.DataQualityGuard == desk.CheckFail
}

// Output is one signal decision with its guard trail.
type Output struct {
	Action          desk.Action     `json:"action"`
	Confidence      desk.Confidence `json:"confidence"`
	Underlying      string          `json:"underlying"`
	PreferredStrike *int            `json:"preferred_strike"`
	StopLossPct     *float64        `json:"stop_loss_pct"`
	TargetPct       *float64        `json:"target_pct"`
	Rationale       string          `json:"rationale"`
	RiskChecks      RiskChecks      `json:"risk_checks"`
	ModelVersion    string          `json:"model_version"`
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Decide evaluates the guards, then the momentum rule. Any guard
// failure forces NO_TRADE/LOW before momentum is considered.
func (e *Engine) Decide(market MarketInput) Output {
	checks := evaluateGuards(market, e.cfg)
	if checks.Veto() {
		return Output{
			Action:       desk.NoTrade,
			Confidence:   desk.Low,
			Underlying:   market.Underlying,
			Rationale:    "Risk veto triggered.",
			RiskChecks:   checks,
			ModelVersion: e.cfg.ModelVersion,
		}
	}

	changePct := (market.LTP - market.PrevClose) / market.PrevClose * 100.0

	var action desk.Action
	var rationale string
	switch {
	case changePct >= e.cfg.BullishThreshold:
		action = desk.BuyCall
		rationale = fmt.Sprintf("Bullish momentum detected (%.2f%%).", changePct)
	case changePct <= e.cfg.BearishThreshold:
		action = desk.BuyPut
		rationale = fmt.Sprintf("Bearish momentum detected (%.2f%%).", changePct)
	default:
		action = desk.NoTrade
		rationale = fmt.Sprintf("No clear momentum edge (%.2f%%).", changePct)
	}

	out := Output{
		Action:          action,
		Confidence:      e.confidence(math.Abs(changePct)),
		Underlying:      market.Underlying,
		PreferredStrike: pickStrike(market.Underlying, market.LTP, action),
		Rationale:       rationale,
		RiskChecks:      checks,
		ModelVersion:    e.cfg.ModelVersion,
	}
	if action != desk.NoTrade {
		sl, tp := e.cfg.StopLossPct, e.cfg.TargetPct
		out.StopLossPct = &sl
		out.TargetPct = &tp
	}
	return out
}

func (e *Engine) confidence(absChange float64) desk.Confidence {
	if absChange >= e.cfg.StrongMoveThreshold {
		return desk.High
	}
	if absChange >= math.Abs(e.cfg.BullishThreshold) {
		return desk.Medium
	}
	return desk.Low
}

func pickStrike(underlying string, ltp float64, action desk.Action) *int {
	step, ok := StrikeSteps[underlying]
	if !ok {
		step = 100
	}
	atm := int(math.Round(ltp/float64(step))) * step
	switch action {
	case desk.BuyCall:
		v := atm + step
		return &v
	case desk.BuyPut:
		v := atm - step
		return &v
	}
	return nil
}

func evaluateGuards(market MarketInput, cfg Config) RiskChecks {
	verdict := func(pass bool) string {
		if pass {
			return desk.CheckPass
		}
		return desk.CheckFail
	}

	dataOK := market.Timestamp != "" &&
		market.Underlying != "" &&
		market.PrevClose > 0

	return RiskChecks{
		DailyLossGuard:   verdict(market.DailyRealizedPnLPct > -cfg.MaxDailyLossPct),
		SpreadGuard:      verdict(market.BidAskSpreadBps <= cfg.MaxSpreadBps),
		DataQualityGuard: verdict(dataOK),
	}
}
