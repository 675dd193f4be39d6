package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratsim/internal/simerr"
	"stratsim/internal/strategy"
)

func runLedger(t *testing.T, closes []float64, kindAt map[int]strategy.Kind, size float64) *Ledger {
	t.Helper()
	candles := bars(closes...)
	sim, err := NewSimulator(ExecClose, size)
	require.NoError(t, err)
	ledger, err := sim.Run(candles, sigs(candles, kindAt))
	require.NoError(t, err)
	return ledger
}

func TestCalculateZeroTrades(t *testing.T) {
	candles := bars(10, 11, 12)
	report, err := Calculate(candles, &Ledger{}, PerfParams{InitialCapital: 1000})
	require.NoError(t, err)

	assert.Equal(t, 0, report.TotalTrades)
	assert.Equal(t, 0.0, report.WinRate, "zero closed trades yields win rate 0, not NaN")
	assert.Equal(t, 0.0, report.TotalRealizedReturn)
	assert.Equal(t, 0.0, report.MaxDrawdown)
	assert.Equal(t, 1000.0, report.FinalEquity)
	assert.False(t, math.IsNaN(report.SharpeRatio))
	assert.False(t, math.IsNaN(report.AverageTradeReturn))
}

func TestCalculateLedgerConsistency(t *testing.T) {
	closes := []float64{10, 12, 11, 9, 13, 15, 14, 8}
	ledger := runLedger(t, closes, map[int]strategy.Kind{
		0: strategy.EnterLong,
		2: strategy.ExitLong, // pnl (11-10)*2 = +2
		3: strategy.EnterLong,
		5: strategy.ExitLong, // pnl (15-9)*2 = +12
		6: strategy.EnterLong,
		7: strategy.ExitLong, // pnl (8-14)*2 = -12
	}, 2)

	report, err := Calculate(bars(closes...), ledger, PerfParams{InitialCapital: 1000})
	require.NoError(t, err)

	var pnlSum float64
	for _, tr := range ledger.Closed {
		pnlSum += tr.RealizedPnL
	}
	assert.InDelta(t, pnlSum, report.TotalRealizedReturn, 1e-9,
		"total realized return must equal the sum of closed-trade pnl")

	assert.Equal(t, 3, report.ClosedTrades)
	assert.InDelta(t, 2.0/3.0, report.WinRate, 1e-9)
	assert.GreaterOrEqual(t, report.WinRate, 0.0)
	assert.LessOrEqual(t, report.WinRate, 1.0)

	assert.InDelta(t, 7.0, report.AverageWin, 1e-9)   // (2+12)/2
	assert.InDelta(t, -12.0, report.AverageLoss, 1e-9)
	assert.InDelta(t, pnlSum/3, report.AverageTradeReturn, 1e-9)
	assert.InDelta(t, 14.0/12.0, report.ProfitFactor, 1e-9)
	assert.InDelta(t, 1000+pnlSum, report.FinalEquity, 1e-9)
}

func TestCalculateMarkToLastOpenPosition(t *testing.T) {
	closes := []float64{10, 11, 12, 14}
	ledger := runLedger(t, closes, map[int]strategy.Kind{
		1: strategy.EnterLong, // entry at 11, never exited
	}, 5)

	report, err := Calculate(bars(closes...), ledger, PerfParams{InitialCapital: 1000})
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalTrades)
	assert.Equal(t, 0, report.ClosedTrades)
	assert.InDelta(t, (14.0-11.0)*5, report.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 1000+(14.0-11.0)*5, report.FinalEquity, 1e-9,
		"final equity values the open position at the last known price")
	assert.Equal(t, 0.0, report.TotalRealizedReturn)
}

func TestCalculateMaxDrawdown(t *testing.T) {
	// Entry at 10, price runs to 20 then collapses to 5 before exit: the
	// equity peak is 1000+(20-10)=1010, the trough 1000+(5-10)=995.
	closes := []float64{10, 20, 5, 5}
	ledger := runLedger(t, closes, map[int]strategy.Kind{
		0: strategy.EnterLong,
		2: strategy.ExitLong,
	}, 1)

	report, err := Calculate(bars(closes...), ledger, PerfParams{InitialCapital: 1000})
	require.NoError(t, err)

	assert.InDelta(t, (1010.0-995.0)/1010.0, report.MaxDrawdown, 1e-9)
	assert.GreaterOrEqual(t, report.MaxDrawdown, 0.0)
}

func TestCalculateSharpeUsesRiskFreeRate(t *testing.T) {
	closes := []float64{10, 11, 12, 11, 13, 12, 14, 13, 15, 14}
	ledger := runLedger(t, closes, map[int]strategy.Kind{
		0: strategy.EnterLong,
		9: strategy.ExitLong,
	}, 10)

	base, err := Calculate(bars(closes...), ledger, PerfParams{InitialCapital: 1000})
	require.NoError(t, err)
	withRf, err := Calculate(bars(closes...), ledger, PerfParams{InitialCapital: 1000, RiskFreeRate: 0.5})
	require.NoError(t, err)

	assert.Greater(t, base.SharpeRatio, withRf.SharpeRatio,
		"raising the risk-free rate lowers the excess return")
	assert.InDelta(t, base.Volatility, withRf.Volatility, 1e-9,
		"the risk-free rate does not change volatility")
}

func TestCalculateEmptyCandles(t *testing.T) {
	_, err := Calculate(nil, &Ledger{}, PerfParams{})
	var perr *simerr.ParameterError
	require.ErrorAs(t, err, &perr)
}

func TestReportFlattenCoversEveryMetric(t *testing.T) {
	closes := []float64{10, 12, 11, 13}
	ledger := runLedger(t, closes, map[int]strategy.Kind{
		0: strategy.EnterLong,
		2: strategy.ExitLong,
	}, 1)
	report, err := Calculate(bars(closes...), ledger, PerfParams{InitialCapital: 1000})
	require.NoError(t, err)

	flat := report.Flatten()
	assert.Equal(t, report.WinRate, flat["win_rate"])
	assert.Equal(t, report.TotalRealizedReturn, flat["total_realized_return"])
	assert.Equal(t, float64(report.TotalTrades), flat["total_trades"])
	assert.Equal(t, report.MaxDrawdown, flat["max_drawdown"])
	for k, v := range flat {
		assert.False(t, math.IsNaN(v), "metric %s must never be NaN", k)
	}
}
