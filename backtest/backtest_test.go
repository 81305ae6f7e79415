package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/desk/desk"
)

func TestRunAllNoTrade(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{Action: desk.NoTrade, MarketReturnPct: 1.2},
		{Action: desk.NoTrade, MarketReturnPct: -0.7},
		{Action: desk.NoTrade, MarketReturnPct: 0.3},
	}

	res, err := Run(rows, DefaultAssumptions())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Summary.TotalPeriods)
	assert.Zero(t, res.Summary.TotalTrades)
	assert.Equal(t, 3, res.Summary.NoTradeCount)

	assert.Zero(t, res.Performance.CumulativeReturnPct)
	assert.Zero(t, res.Performance.Sharpe)
	assert.Zero(t, res.Performance.Sortino)
	assert.Zero(t, res.Performance.MaxDrawdownPct)
	assert.Zero(t, res.Performance.HitRatePct)
	assert.Zero(t, res.Performance.TurnoverPct)
}

func TestRunEmptyDataset(t *testing.T) {
	t.Parallel()

	res, err := Run(nil, DefaultAssumptions())
	require.NoError(t, err)

	assert.Zero(t, res.Summary.TotalPeriods)
	assert.Zero(t, res.Performance.CumulativeReturnPct)
	assert.Zero(t, res.Performance.TurnoverPct)
}

func TestRunFrictionApplied(t *testing.T) {
	t.Parallel()

	// One traded row: +2% gross, minus (5+5) bps = 0.1 percentage
	// points, nets +1.9%.
	rows := []Row{{Action: desk.BuyCall, MarketReturnPct: 2.0}}

	res, err := Run(rows, DefaultAssumptions())
	require.NoError(t, err)

	assert.Equal(t, 1.9, res.Performance.CumulativeReturnPct)
	assert.Equal(t, 1, res.Summary.TotalTrades)
	assert.Equal(t, 100.0, res.Performance.HitRatePct)
	assert.Equal(t, 100.0, res.Performance.TurnoverPct)
}

func TestRunPutDirection(t *testing.T) {
	t.Parallel()

	// BUY_PUT profits from a falling market: -3% move nets +2.9%.
	rows := []Row{{Action: desk.BuyPut, MarketReturnPct: -3.0}}

	res, err := Run(rows, DefaultAssumptions())
	require.NoError(t, err)

	assert.Equal(t, 2.9, res.Performance.CumulativeReturnPct)
}

func TestRunNoTradePaysNoFriction(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{Action: desk.BuyCall, MarketReturnPct: 1.0},
		{Action: desk.NoTrade, MarketReturnPct: -5.0},
	}

	res, err := Run(rows, DefaultAssumptions())
	require.NoError(t, err)

	// Only the traded row compounds: 1.009 - 1 = 0.9%.
	assert.Equal(t, 0.9, res.Performance.CumulativeReturnPct)
	assert.Equal(t, 50.0, res.Performance.TurnoverPct)
}

func TestRunEquityCompounds(t *testing.T) {
	t.Parallel()

	a := Assumptions{TransactionCostBps: 0, SlippageBps: 0, AnnualizationFactor: 252}
	rows := []Row{
		{Action: desk.BuyCall, MarketReturnPct: 10.0},
		{Action: desk.BuyCall, MarketReturnPct: 10.0},
	}

	res, err := Run(rows, a)
	require.NoError(t, err)

	// 1.1 * 1.1 = 1.21, not 1.20.
	assert.Equal(t, 21.0, res.Performance.CumulativeReturnPct)
}

func TestRunMaxDrawdown(t *testing.T) {
	t.Parallel()

	a := Assumptions{TransactionCostBps: 0, SlippageBps: 0, AnnualizationFactor: 252}
	rows := []Row{
		{Action: desk.BuyCall, MarketReturnPct: 10.0},
		{Action: desk.BuyCall, MarketReturnPct: -20.0},
		{Action: desk.BuyCall, MarketReturnPct: 5.0},
	}

	res, err := Run(rows, a)
	require.NoError(t, err)

	assert.Equal(t, 20.0, res.Performance.MaxDrawdownPct)
}

func TestRunHitRateCountsOnlyTrades(t *testing.T) {
	t.Parallel()

	a := Assumptions{TransactionCostBps: 0, SlippageBps: 0, AnnualizationFactor: 252}
	rows := []Row{
		{Action: desk.BuyCall, MarketReturnPct: 1.0},
		{Action: desk.BuyCall, MarketReturnPct: -1.0},
		{Action: desk.NoTrade, MarketReturnPct: 4.0},
	}

	res, err := Run(rows, a)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Summary.TotalTrades)
	assert.Equal(t, 50.0, res.Performance.HitRatePct)
}

func TestRunSharpeNeedsVariance(t *testing.T) {
	t.Parallel()

	// Identical returns have zero stdev; Sharpe stays 0 instead of
	// dividing by zero.
	a := Assumptions{TransactionCostBps: 0, SlippageBps: 0, AnnualizationFactor: 252}
	rows := []Row{
		{Action: desk.BuyCall, MarketReturnPct: 1.0},
		{Action: desk.BuyCall, MarketReturnPct: 1.0},
	}

	res, err := Run(rows, a)
	require.NoError(t, err)
	assert.Zero(t, res.Performance.Sharpe)
}

func TestRunSortinoUsesDownsideOnly(t *testing.T) {
	t.Parallel()

	a := Assumptions{TransactionCostBps: 0, SlippageBps: 0, AnnualizationFactor: 252}

	// No negative periods, single downside sample, or varied downside.
	allUp := []Row{
		{Action: desk.BuyCall, MarketReturnPct: 1.0},
		{Action: desk.BuyCall, MarketReturnPct: 2.0},
	}
	res, err := Run(allUp, a)
	require.NoError(t, err)
	assert.Zero(t, res.Performance.Sortino)

	mixed := []Row{
		{Action: desk.BuyCall, MarketReturnPct: 2.0},
		{Action: desk.BuyCall, MarketReturnPct: -1.0},
		{Action: desk.BuyCall, MarketReturnPct: -3.0},
	}
	res, err = Run(mixed, a)
	require.NoError(t, err)
	assert.NotZero(t, res.Performance.Sortino)
}

func TestRunRejectsBadAnnualization(t *testing.T) {
	t.Parallel()

	for _, factor := range []int{0, -252} {
		a := DefaultAssumptions()
		a.AnnualizationFactor = factor

		_, err := Run(nil, a)
		assert.ErrorIs(t, err, ErrAnnualizationFactor)
	}
}

func TestRunDeterministic(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{Action: desk.BuyCall, MarketReturnPct: 0.9},
		{Action: desk.BuyPut, MarketReturnPct: -1.4},
		{Action: desk.NoTrade, MarketReturnPct: 0.2},
	}

	first, err := Run(rows, DefaultAssumptions())
	require.NoError(t, err)
	second, err := Run(rows, DefaultAssumptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompareWithBaseline(t *testing.T) {
	t.Parallel()

	a := Assumptions{TransactionCostBps: 0, SlippageBps: 0, AnnualizationFactor: 252}
	candidate := []Row{{Action: desk.BuyCall, MarketReturnPct: 3.0}}
	baseline := []Row{{Action: desk.BuyCall, MarketReturnPct: 1.0}}

	cmp, err := Compare(candidate, baseline, a)
	require.NoError(t, err)

	require.NotNil(t, cmp.Baseline)
	require.NotNil(t, cmp.Delta)
	assert.Equal(t, 2.0, cmp.Delta.CumulativeReturnPct)
	assert.Zero(t, cmp.Delta.HitRatePct)
}

func TestCompareNilBaseline(t *testing.T) {
	t.Parallel()

	candidate := []Row{{Action: desk.BuyCall, MarketReturnPct: 3.0}}

	cmp, err := Compare(candidate, nil, DefaultAssumptions())
	require.NoError(t, err)

	assert.Nil(t, cmp.Baseline)
	assert.Nil(t, cmp.Delta)
	assert.Equal(t, 1, cmp.Candidate.Summary.TotalTrades)
}
