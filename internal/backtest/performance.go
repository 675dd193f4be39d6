package backtest

import (
	"math"

	"stratsim/internal/candle"
	"stratsim/internal/simerr"
)

// PerfParams configure performance aggregation.
type PerfParams struct {
	InitialCapital float64 // equity curve starting value
	RiskFreeRate   float64 // annual rate, e.g. 0.02 for 2%
	PeriodsPerYear int     // bars per year for annualization, default 252
}

func (p PerfParams) withDefaults() PerfParams {
	if p.InitialCapital == 0 {
		p.InitialCapital = 100000
	}
	if p.PeriodsPerYear == 0 {
		p.PeriodsPerYear = 252
	}
	return p
}

// Report is the immutable aggregate of one backtest run. Trade-statistic
// fields are 0 (never NaN) when there are no closed trades, and AverageLoss
// is the mean losing P&L, a non-positive number.
type Report struct {
	InitialCapital float64 `json:"initial_capital"`
	FinalEquity    float64 `json:"final_equity"`

	TotalTrades  int     `json:"total_trades"` // closed plus a still-open one
	ClosedTrades int     `json:"closed_trades"`
	WinRate      float64 `json:"win_rate"`

	TotalRealizedReturn float64 `json:"total_realized_return"` // sum of closed-trade P&L
	UnrealizedPnL       float64 `json:"unrealized_pnl"`        // open position, mark-to-last
	AverageWin          float64 `json:"average_win"`
	AverageLoss         float64 `json:"average_loss"`
	AverageTradeReturn  float64 `json:"average_trade_return"`
	ProfitFactor        float64 `json:"profit_factor"`

	TotalReturn      float64 `json:"total_return"` // relative to initial capital
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"` // annualized stdev of per-bar returns
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio"`
	CalmarRatio      float64 `json:"calmar_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"` // worst relative drop from an equity peak
}

// Calculate aggregates a price path (as candles) and a trade ledger into a
// report. It is a pure function of its inputs: the same candles, ledger and
// params always yield the same report.
func Calculate(candles []candle.Candle, ledger *Ledger, params PerfParams) (*Report, error) {
	if len(candles) == 0 {
		return nil, &simerr.ParameterError{Param: "candles", Reason: "equity curve needs at least one candle"}
	}
	if params.InitialCapital < 0 {
		return nil, &simerr.ParameterError{Param: "initial_capital", Reason: "must be non-negative"}
	}
	p := params.withDefaults()

	curve := equityCurve(candles, ledger, p.InitialCapital)

	r := &Report{
		InitialCapital:      p.InitialCapital,
		FinalEquity:         curve[len(curve)-1],
		ClosedTrades:        len(ledger.Closed),
		TotalTrades:         len(ledger.Closed),
		TotalRealizedReturn: ledger.TotalRealizedPnL(),
	}
	if ledger.Open != nil {
		r.TotalTrades++
		r.UnrealizedPnL = (candles[len(candles)-1].Close - ledger.Open.EntryPrice) * ledger.Open.Size
	}

	fillTradeStats(r, ledger)
	fillCurveStats(r, curve, p)
	return r, nil
}

// equityCurve values the account at every bar close: initial capital plus
// realized P&L of trades exited by then, plus unrealized P&L of the position
// held across that bar.
func equityCurve(candles []candle.Candle, ledger *Ledger, capital float64) []float64 {
	curve := make([]float64, len(candles))
	realized := 0.0
	next := 0 // next closed trade to realize; ledger.Closed is exit-ordered
	for i, c := range candles {
		for next < len(ledger.Closed) && !ledger.Closed[next].ExitTime.After(c.PeriodStart) {
			realized += ledger.Closed[next].RealizedPnL
			next++
		}
		equity := capital + realized

		// An open position held across this bar is marked to the bar close.
		if ledger.Open != nil && !ledger.Open.EntryTime.After(c.PeriodStart) {
			equity += (c.Close - ledger.Open.EntryPrice) * ledger.Open.Size
		} else if next < len(ledger.Closed) {
			if t := ledger.Closed[next]; !t.EntryTime.After(c.PeriodStart) {
				equity += (c.Close - t.EntryPrice) * t.Size
			}
		}
		curve[i] = equity
	}
	return curve
}

func fillTradeStats(r *Report, ledger *Ledger) {
	var wins, losses int
	var winSum, lossSum, pnlSum float64
	for _, t := range ledger.Closed {
		pnlSum += t.RealizedPnL
		if t.RealizedPnL > 0 {
			wins++
			winSum += t.RealizedPnL
		} else {
			losses++
			lossSum += t.RealizedPnL
		}
	}

	// Zero closed trades yields zeroes across the board, not NaN: the
	// win-rate denominator is only applied when trades exist.
	if len(ledger.Closed) == 0 {
		return
	}
	r.WinRate = float64(wins) / float64(len(ledger.Closed))
	r.AverageTradeReturn = pnlSum / float64(len(ledger.Closed))
	if wins > 0 {
		r.AverageWin = winSum / float64(wins)
	}
	if losses > 0 {
		r.AverageLoss = lossSum / float64(losses)
	}
	if lossSum < 0 {
		r.ProfitFactor = winSum / -lossSum
	}
}

func fillCurveStats(r *Report, curve []float64, p PerfParams) {
	if r.InitialCapital > 0 {
		r.TotalReturn = (r.FinalEquity - r.InitialCapital) / r.InitialCapital
	}

	years := float64(len(curve)-1) / float64(p.PeriodsPerYear)
	if years > 0 && r.InitialCapital > 0 && r.FinalEquity > 0 {
		r.AnnualizedReturn = math.Pow(r.FinalEquity/r.InitialCapital, 1/years) - 1
	}

	// Per-bar simple returns of the equity curve.
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		if curve[i-1] != 0 {
			returns = append(returns, (curve[i]-curve[i-1])/curve[i-1])
		} else {
			returns = append(returns, 0)
		}
	}

	rfPerBar := p.RiskFreeRate / float64(p.PeriodsPerYear)
	sqrtPeriods := math.Sqrt(float64(p.PeriodsPerYear))

	if len(returns) > 1 {
		m := mean(returns)
		sd := stdev(returns, m)
		r.Volatility = sd * sqrtPeriods
		if sd > 0 {
			r.SharpeRatio = (m - rfPerBar) / sd * sqrtPeriods
		}

		var downside []float64
		for _, ret := range returns {
			if ret < rfPerBar {
				downside = append(downside, ret-rfPerBar)
			}
		}
		if len(downside) > 1 {
			dm := mean(downside)
			if dsd := stdev(downside, dm); dsd > 0 {
				r.SortinoRatio = (m - rfPerBar) / dsd * sqrtPeriods
			}
		}
	}

	peak := curve[0]
	for _, e := range curve {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			if dd := (peak - e) / peak; dd > r.MaxDrawdown {
				r.MaxDrawdown = dd
			}
		}
	}
	if r.MaxDrawdown > 0 {
		r.CalmarRatio = r.AnnualizedReturn / r.MaxDrawdown
	}
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdev is the sample standard deviation around m.
func stdev(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
