package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"stratsim/internal/backtest"
	"stratsim/internal/config"
	"stratsim/internal/journal"
	"stratsim/internal/pricegen"
	"stratsim/internal/strategy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main | invalid configuration: %v", err)
	}

	gen, err := buildGenerator(cfg)
	if err != nil {
		log.Fatalf("main | building generator: %v", err)
	}
	strats, err := buildStrategies(cfg)
	if err != nil {
		log.Fatalf("main | building strategies: %v", err)
	}

	jrnl := journal.NewMemory()
	engine := &backtest.Engine{
		Generator:    gen,
		Strategies:   strats,
		Steps:        cfg.Steps,
		Seed:         cfg.Seed,
		CandlePeriod: cfg.CandlePeriod,
		Execution:    backtest.ExecutionMode(cfg.Execution),
		PositionSize: cfg.PositionSize,
		Perf: backtest.PerfParams{
			InitialCapital: cfg.InitialCapital,
			RiskFreeRate:   cfg.RiskFreeRate,
			PeriodsPerYear: cfg.PeriodsPerYear,
		},
		Journal: jrnl,
	}

	results, err := engine.Run()
	if err != nil {
		log.Fatalf("main | backtest failed: %v", err)
	}

	for _, res := range results {
		printResult(res)
	}
	log.Printf("main | journaled %d signals, %d trade events",
		len(jrnl.Events("signal")), len(jrnl.Events("trade")))

	if cfg.ReportPath != "" {
		if err := writeReports(cfg.ReportPath, results); err != nil {
			log.Fatalf("main | writing report: %v", err)
		}
		log.Printf("main | wrote metric report(s) to %s", cfg.ReportPath)
	}
}

func buildGenerator(cfg config.Config) (pricegen.Generator, error) {
	switch cfg.Generator {
	case "gbm":
		return pricegen.NewGBM(cfg.GBM)
	case "heston":
		return pricegen.NewHeston(cfg.Heston)
	default:
		return pricegen.NewRandomWalk(cfg.RandomWalk)
	}
}

func buildStrategies(cfg config.Config) ([]strategy.Strategy, error) {
	strats := make([]strategy.Strategy, 0, len(cfg.Strategies))
	for _, name := range cfg.Strategies {
		switch strings.TrimSpace(name) {
		case "2MA":
			s, err := strategy.NewTwoMA(cfg.TwoMA.Fast, cfg.TwoMA.Slow)
			if err != nil {
				return nil, err
			}
			strats = append(strats, s)
		case "2MACD":
			s, err := strategy.NewTwoMACD(cfg.TwoMACD.Fast, cfg.TwoMACD.Slow, cfg.TwoMACD.Signal)
			if err != nil {
				return nil, err
			}
			strats = append(strats, s)
		default:
			return nil, fmt.Errorf("unknown strategy %q", name)
		}
	}
	return strats, nil
}

func printResult(res backtest.RunResult) {
	r := res.Report
	fmt.Printf("\n=== %s ===\n", res.StrategyName)
	for _, t := range res.Ledger.Closed {
		fmt.Printf("  entry %s @ %.2f  exit %s @ %.2f  pnl %.2f\n",
			t.EntryTime.Format("2006-01-02 15:04"), t.EntryPrice,
			t.ExitTime.Format("2006-01-02 15:04"), t.ExitPrice, t.RealizedPnL)
	}
	if t := res.Ledger.Open; t != nil {
		fmt.Printf("  entry %s @ %.2f  still open, unrealized %.2f\n",
			t.EntryTime.Format("2006-01-02 15:04"), t.EntryPrice, r.UnrealizedPnL)
	}
	fmt.Printf("trades: %d (closed %d)  win rate: %.2f\n", r.TotalTrades, r.ClosedTrades, r.WinRate)
	fmt.Printf("realized pnl: %.2f  final equity: %.2f  total return: %.4f\n",
		r.TotalRealizedReturn, r.FinalEquity, r.TotalReturn)
	fmt.Printf("max drawdown: %.4f  sharpe: %.3f  sortino: %.3f  volatility: %.4f\n",
		r.MaxDrawdown, r.SharpeRatio, r.SortinoRatio, r.Volatility)
}

// writeReports writes one CSV per strategy. With a single strategy the path
// is used as-is; otherwise the strategy name is appended.
func writeReports(path string, results []backtest.RunResult) error {
	for _, res := range results {
		out := path
		if len(results) > 1 {
			out = strings.TrimSuffix(path, ".csv") + "_" + res.StrategyName + ".csv"
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		if err := res.Report.WriteCSV(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
