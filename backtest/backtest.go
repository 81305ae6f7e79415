// Package backtest replays decided actions against realized market
// moves and derives return, risk, and activity statistics. Run and
// Compare are pure functions of their inputs.
package backtest

import (
	"errors"
	"math"

	"github.com/quantdesk/desk/desk"
)

// Row pairs one decided action with the market return realized over
// the same period.
type Row struct {
	Action          desk.Action `json:"action"`
	MarketReturnPct float64     `json:"market_return_pct"`
}

// Assumptions are the friction and annualization settings applied to
// every traded row.
type Assumptions struct {
	TransactionCostBps  float64 `json:"transaction_cost_bps" yaml:"transaction_cost_bps"`
	SlippageBps         float64 `json:"slippage_bps" yaml:"slippage_bps"`
	AnnualizationFactor int     `json:"annualization_factor" yaml:"annualization_factor"`
}

// DefaultAssumptions are 5 bps cost, 5 bps slippage, daily bars.
func DefaultAssumptions() Assumptions {
	return Assumptions{TransactionCostBps: 5, SlippageBps: 5, AnnualizationFactor: 252}
}

// ErrAnnualizationFactor rejects a non-positive annualization factor
// before any computation.
var ErrAnnualizationFactor = errors.New("annualization_factor must be > 0")

type Summary struct {
	TotalPeriods int `json:"total_periods"`
	TotalTrades  int `json:"total_trades"`
	BuyCallCount int `json:"buy_call_count"`
	BuyPutCount  int `json:"buy_put_count"`
	NoTradeCount int `json:"no_trade_count"`
}

type Performance struct {
	CumulativeReturnPct float64 `json:"cumulative_return_pct"`
	Sharpe              float64 `json:"sharpe"`
	Sortino             float64 `json:"sortino"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
	HitRatePct          float64 `json:"hit_rate_pct"`
	TurnoverPct         float64 `json:"turnover_pct"`
}

// Result aggregates one backtest. It is a pure function of the rows
// and assumptions; no hidden state.
type Result struct {
	Summary     Summary     `json:"summary"`
	Performance Performance `json:"performance"`
	Assumptions Assumptions `json:"assumptions"`
}

// Run replays the rows through the frictioned simulator.
//
// BUY_CALL nets +market return, BUY_PUT nets the negation, NO_TRADE
// nets zero. Traded rows pay (cost+slippage) bps converted to
// percentage points; untraded rows pay nothing. Equity compounds from
// 1.0 and all percentage outputs are rounded to four decimals.
func Run(rows []Row, a Assumptions) (Result, error) {
	if a.AnnualizationFactor <= 0 {
		return Result{}, ErrAnnualizationFactor
	}

	var summary Summary
	summary.TotalPeriods = len(rows)

	periodReturns := make([]float64, 0, len(rows))
	var tradeReturns []float64
	equity := []float64{1.0}

	for _, row := range rows {
		switch row.Action {
		case desk.BuyCall:
			summary.BuyCallCount++
		case desk.BuyPut:
			summary.BuyPutCount++
		default:
			summary.NoTradeCount++
		}

		net := netReturnPct(row, a) / 100.0
		periodReturns = append(periodReturns, net)
		if traded(row.Action) {
			tradeReturns = append(tradeReturns, net)
		}
		equity = append(equity, equity[len(equity)-1]*(1.0+net))
	}

	summary.TotalTrades = summary.BuyCallCount + summary.BuyPutCount

	avg := mean(periodReturns)
	vol := pstdev(periodReturns)

	sharpe := 0.0
	if vol > 0 {
		sharpe = avg / vol * math.Sqrt(float64(a.AnnualizationFactor))
	}

	var downside []float64
	for _, r := range periodReturns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	sortino := 0.0
	if downsideVol := pstdev(downside); downsideVol > 0 {
		sortino = avg / downsideVol * math.Sqrt(float64(a.AnnualizationFactor))
	}

	profitable := 0
	for _, r := range tradeReturns {
		if r > 0 {
			profitable++
		}
	}

	perf := Performance{
		CumulativeReturnPct: round4((equity[len(equity)-1] - 1.0) * 100.0),
		Sharpe:              round4(sharpe),
		Sortino:             round4(sortino),
		MaxDrawdownPct:      round4(maxDrawdown(equity) * 100.0),
		HitRatePct:          round4(safeDiv(float64(profitable), float64(summary.TotalTrades)) * 100.0),
		TurnoverPct:         round4(safeDiv(float64(summary.TotalTrades), float64(summary.TotalPeriods)) * 100.0),
	}

	return Result{Summary: summary, Performance: perf, Assumptions: a}, nil
}

// Delta holds candidate-minus-baseline differences for the headline
// metrics.
type Delta struct {
	CumulativeReturnPct float64 `json:"cumulative_return_pct"`
	Sharpe              float64 `json:"sharpe"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
	HitRatePct          float64 `json:"hit_rate_pct"`
}

type Comparison struct {
	Candidate Result  `json:"candidate"`
	Baseline  *Result `json:"baseline"`
	Delta     *Delta  `json:"delta"`
}

// Compare runs the candidate and, when baseline is non-nil, the
// baseline under identical assumptions. A nil baseline yields nil
// Baseline and Delta.
func Compare(candidate, baseline []Row, a Assumptions) (Comparison, error) {
	cand, err := Run(candidate, a)
	if err != nil {
		return Comparison{}, err
	}
	if baseline == nil {
		return Comparison{Candidate: cand}, nil
	}

	base, err := Run(baseline, a)
	if err != nil {
		return Comparison{}, err
	}

	delta := Delta{
		CumulativeReturnPct: round4(cand.Performance.CumulativeReturnPct - base.Performance.CumulativeReturnPct),
		Sharpe:              round4(cand.Performance.Sharpe - base.Performance.Sharpe),
		MaxDrawdownPct:      round4(cand.Performance.MaxDrawdownPct - base.Performance.MaxDrawdownPct),
		HitRatePct:          round4(cand.Performance.HitRatePct - base.Performance.HitRatePct),
	}
	return Comparison{Candidate: cand, Baseline: &base, Delta: &delta}, nil
}

func traded(a desk.Action) bool {
	return a == desk.BuyCall || a == desk.BuyPut
}

func netReturnPct(row Row, a Assumptions) float64 {
	gross := 0.0
	switch row.Action {
	case desk.BuyCall:
		gross = row.MarketReturnPct
	case desk.BuyPut:
		gross = -row.MarketReturnPct
	}
	if traded(row.Action) {
		// bps -> percentage points
		return gross - (a.TransactionCostBps+a.SlippageBps)*0.01
	}
	return gross
}

// maxDrawdown is the largest peak-to-trough relative decline over the
// equity curve.
func maxDrawdown(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}
	peak := equity[0]
	maxDD := 0.0
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if dd := safeDiv(peak-e, peak); dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// pstdev is the population standard deviation; it returns 0 for
// fewer than two samples.
func pstdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	avg := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - avg
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
