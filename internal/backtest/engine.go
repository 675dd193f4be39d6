package backtest

import (
	"fmt"
	"log"

	"stratsim/internal/candle"
	"stratsim/internal/indicator"
	"stratsim/internal/journal"
	"stratsim/internal/pricegen"
	"stratsim/internal/simerr"
	"stratsim/internal/strategy"
)

// Engine runs the full pipeline: generate a price path, aggregate it into
// candles, and backtest each configured strategy against the same path.
type Engine struct {
	Generator    pricegen.Generator
	Strategies   []strategy.Strategy
	Steps        int
	Seed         int64
	CandlePeriod int           // price points per candle
	Execution    ExecutionMode // fill convention for every strategy
	PositionSize float64
	Perf         PerfParams
	Journal      journal.Journaler // optional
}

// RunResult is everything one strategy run produced. All sequences are
// immutable once returned; the reporting layer only reads them.
type RunResult struct {
	StrategyName string
	Points       []pricegen.PricePoint
	Candles      []candle.Candle
	Fast         []indicator.Value
	Slow         []indicator.Value
	Signals      []strategy.Signal
	Ledger       *Ledger
	Report       *Report
}

// Run executes the pipeline once per strategy over a single generated path.
// Any error aborts the run: a deterministic simulation fails identically on
// retry, so there is nothing to recover.
func (e *Engine) Run() ([]RunResult, error) {
	if e.Generator == nil {
		return nil, &simerr.ParameterError{Param: "generator", Reason: "must be set"}
	}
	if len(e.Strategies) == 0 {
		return nil, &simerr.ParameterError{Param: "strategies", Reason: "at least one strategy required"}
	}

	points, err := e.Generator.Generate(e.Steps, e.Seed)
	if err != nil {
		return nil, fmt.Errorf("engine | generating %s path: %w", e.Generator.Name(), err)
	}
	log.Printf("engine | generated %d points with %s (seed %d)", len(points), e.Generator.Name(), e.Seed)

	period := e.CandlePeriod
	if period == 0 {
		period = 1
	}
	candles, err := candle.Aggregate(points, period)
	if err != nil {
		return nil, fmt.Errorf("engine | aggregating candles: %w", err)
	}
	log.Printf("engine | aggregated %d candles (period %d)", len(candles), period)

	results := make([]RunResult, 0, len(e.Strategies))
	for _, strat := range e.Strategies {
		res, err := e.runStrategy(strat, points, candles)
		if err != nil {
			return nil, fmt.Errorf("engine | strategy %s: %w", strat.Name(), err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *Engine) runStrategy(strat strategy.Strategy, points []pricegen.PricePoint, candles []candle.Candle) (RunResult, error) {
	if need := strat.WarmupPeriod(); len(candles) < need {
		return RunResult{}, &simerr.InsufficientDataError{What: strat.Name(), Need: need, Have: len(candles)}
	}

	fast, slow, err := strat.Series(candles)
	if err != nil {
		return RunResult{}, err
	}

	signals, err := strategy.Detect(fast, slow)
	if err != nil {
		return RunResult{}, err
	}
	e.journalSignals(strat, signals)

	sim, err := NewSimulator(e.Execution, e.PositionSize)
	if err != nil {
		return RunResult{}, err
	}
	ledger, err := sim.Run(candles, signals)
	if err != nil {
		return RunResult{}, err
	}
	e.journalTrades(strat, ledger)

	report, err := Calculate(candles, ledger, e.Perf)
	if err != nil {
		return RunResult{}, err
	}

	log.Printf("engine | %s: %d trades, realized pnl %.2f, final equity %.2f",
		strat.Name(), report.TotalTrades, report.TotalRealizedReturn, report.FinalEquity)

	return RunResult{
		StrategyName: strat.Name(),
		Points:       points,
		Candles:      candles,
		Fast:         fast,
		Slow:         slow,
		Signals:      signals,
		Ledger:       ledger,
		Report:       report,
	}, nil
}

func (e *Engine) journalSignals(strat strategy.Strategy, signals []strategy.Signal) {
	if e.Journal == nil {
		return
	}
	for _, sig := range signals {
		if sig.Kind == strategy.Hold {
			continue
		}
		e.Journal.LogEvent(journal.Event{
			Time:        sig.Time,
			Type:        "signal",
			Description: sig.Kind.String(),
			Data:        map[string]any{"strategy": strat.Name()},
		})
	}
}

func (e *Engine) journalTrades(strat strategy.Strategy, ledger *Ledger) {
	if e.Journal == nil {
		return
	}
	for _, t := range ledger.Closed {
		e.Journal.LogEvent(journal.Event{
			Time:        t.ExitTime,
			Type:        "trade",
			Description: "closed",
			Data: map[string]any{
				"strategy": strat.Name(),
				"id":       t.ID.String(),
				"pnl":      t.RealizedPnL,
			},
		})
	}
	if ledger.Open != nil {
		e.Journal.LogEvent(journal.Event{
			Time:        ledger.Open.EntryTime,
			Type:        "trade",
			Description: "left open",
			Data: map[string]any{
				"strategy": strat.Name(),
				"id":       ledger.Open.ID.String(),
			},
		})
	}
}
