package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
)

// Flatten maps every report metric to a plain numeric value. The mapping is
// deliberately flat so any key/value or tabular format can represent it
// losslessly.
func (r *Report) Flatten() map[string]float64 {
	return map[string]float64{
		"initial_capital":       r.InitialCapital,
		"final_equity":          r.FinalEquity,
		"total_trades":          float64(r.TotalTrades),
		"closed_trades":         float64(r.ClosedTrades),
		"win_rate":              r.WinRate,
		"total_realized_return": r.TotalRealizedReturn,
		"unrealized_pnl":        r.UnrealizedPnL,
		"average_win":           r.AverageWin,
		"average_loss":          r.AverageLoss,
		"average_trade_return":  r.AverageTradeReturn,
		"profit_factor":         r.ProfitFactor,
		"total_return":          r.TotalReturn,
		"annualized_return":     r.AnnualizedReturn,
		"volatility":            r.Volatility,
		"sharpe_ratio":          r.SharpeRatio,
		"sortino_ratio":         r.SortinoRatio,
		"calmar_ratio":          r.CalmarRatio,
		"max_drawdown":          r.MaxDrawdown,
	}
}

// WriteCSV writes the flattened report as metric,value rows in key order.
func (r *Report) WriteCSV(w io.Writer) error {
	flat := r.Flatten()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"metric", "value"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, k := range keys {
		if err := cw.Write([]string{k, fmt.Sprintf("%g", flat[k])}); err != nil {
			return fmt.Errorf("writing metric %s: %w", k, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
