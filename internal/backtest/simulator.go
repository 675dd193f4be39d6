// Package backtest executes signals into a trade ledger and aggregates
// performance.
package backtest

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"stratsim/internal/candle"
	"stratsim/internal/simerr"
	"stratsim/internal/strategy"
)

// ExecutionMode fixes which bar price fills a signal. The choice materially
// changes backtest results, so it is configuration, never an assumption.
type ExecutionMode string

const (
	// ExecClose fills at the close of the signal bar.
	ExecClose ExecutionMode = "close"
	// ExecNextOpen fills at the open of the bar after the signal bar. A
	// signal on the final bar has no next open and is discarded.
	ExecNextOpen ExecutionMode = "next-open"
)

// Trade is one ledger entry. A trade is created open and transitions to
// closed exactly once; closed trades are never mutated again.
type Trade struct {
	ID          uuid.UUID `json:"id"`
	EntryTime   time.Time `json:"entry_time"`
	EntryPrice  float64   `json:"entry_price"`
	ExitTime    time.Time `json:"exit_time,omitempty"` // zero while open
	ExitPrice   float64   `json:"exit_price,omitempty"`
	Size        float64   `json:"size"`
	RealizedPnL float64   `json:"realized_pnl"` // meaningful once Closed
	Closed      bool      `json:"closed"`
}

// Ledger is the time-ordered output of a simulation run: every closed trade
// plus at most one trade still open at the end of the series.
type Ledger struct {
	Closed []Trade `json:"closed"`
	Open   *Trade  `json:"open,omitempty"`
}

// TotalRealizedPnL sums the realized P&L of all closed trades.
func (l *Ledger) TotalRealizedPnL() float64 {
	var total float64
	for _, t := range l.Closed {
		total += t.RealizedPnL
	}
	return total
}

// Simulator turns a signal sequence into a trade ledger, holding at most one
// open position at a time.
type Simulator struct {
	mode ExecutionMode
	size float64
}

func NewSimulator(mode ExecutionMode, size float64) (*Simulator, error) {
	if mode != ExecClose && mode != ExecNextOpen {
		return nil, &simerr.ParameterError{Param: "execution", Reason: fmt.Sprintf("unknown mode %q", mode)}
	}
	if size <= 0 {
		return nil, &simerr.ParameterError{Param: "position_size", Reason: "must be positive"}
	}
	return &Simulator{mode: mode, size: size}, nil
}

// Run executes signals against their candles. Signals must be aligned with
// candles by index, as produced by the detector.
//
// The detector state machine makes a double open or a close without a
// position impossible; the checks here are defensive and surface a
// ConsistencyError instead of silently ignoring a corrupted sequence.
func (s *Simulator) Run(candles []candle.Candle, signals []strategy.Signal) (*Ledger, error) {
	if len(candles) != len(signals) {
		return nil, &simerr.ParameterError{Param: "signals", Reason: "signals and candles lengths differ"}
	}

	ledger := &Ledger{}
	for i, sig := range signals {
		switch sig.Kind {
		case strategy.Hold:
			continue

		case strategy.EnterLong:
			if ledger.Open != nil {
				return nil, &simerr.ConsistencyError{Op: "enter-long", Detail: "position already open"}
			}
			at, price, ok := s.fill(candles, i)
			if !ok {
				continue // next-open fill requested on the final bar
			}
			ledger.Open = &Trade{
				ID:         uuid.New(),
				EntryTime:  at,
				EntryPrice: price,
				Size:       s.size,
			}

		case strategy.ExitLong:
			if ledger.Open == nil {
				return nil, &simerr.ConsistencyError{Op: "exit-long", Detail: "no open position"}
			}
			at, price, ok := s.fill(candles, i)
			if !ok {
				continue // left open, valued mark-to-last downstream
			}
			t := *ledger.Open
			t.ExitTime = at
			t.ExitPrice = price
			t.RealizedPnL = (t.ExitPrice - t.EntryPrice) * t.Size
			t.Closed = true
			if !t.ExitTime.After(t.EntryTime) {
				return nil, &simerr.ConsistencyError{Op: "exit-long", Detail: "exit time not after entry time"}
			}
			ledger.Closed = append(ledger.Closed, t)
			ledger.Open = nil
		}
	}
	return ledger, nil
}

// fill resolves the execution time and price for a signal at bar i.
func (s *Simulator) fill(candles []candle.Candle, i int) (time.Time, float64, bool) {
	if s.mode == ExecNextOpen {
		if i+1 >= len(candles) {
			return time.Time{}, 0, false
		}
		return candles[i+1].PeriodStart, candles[i+1].Open, true
	}
	return candles[i].PeriodStart, candles[i].Close, true
}
