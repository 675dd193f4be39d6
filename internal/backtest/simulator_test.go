package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratsim/internal/candle"
	"stratsim/internal/simerr"
	"stratsim/internal/strategy"
)

var barStart = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

func bars(closes ...float64) []candle.Candle {
	candles := make([]candle.Candle, len(closes))
	for i, c := range closes {
		candles[i] = candle.Candle{
			PeriodStart: barStart.Add(time.Duration(i) * time.Minute),
			Open:        c - 0.5, High: c + 1, Low: c - 1, Close: c,
		}
	}
	return candles
}

func sigs(candles []candle.Candle, kindAt map[int]strategy.Kind) []strategy.Signal {
	signals := make([]strategy.Signal, len(candles))
	for i, c := range candles {
		signals[i] = strategy.Signal{Time: c.PeriodStart, Kind: strategy.Hold}
		if k, ok := kindAt[i]; ok {
			signals[i].Kind = k
		}
	}
	return signals
}

func TestSimulatorCloseExecution(t *testing.T) {
	candles := bars(10, 11, 12, 13, 14)
	signals := sigs(candles, map[int]strategy.Kind{
		1: strategy.EnterLong,
		3: strategy.ExitLong,
	})

	sim, err := NewSimulator(ExecClose, 2)
	require.NoError(t, err)
	ledger, err := sim.Run(candles, signals)
	require.NoError(t, err)

	require.Len(t, ledger.Closed, 1)
	assert.Nil(t, ledger.Open)

	trade := ledger.Closed[0]
	assert.Equal(t, candles[1].PeriodStart, trade.EntryTime)
	assert.Equal(t, 11.0, trade.EntryPrice)
	assert.Equal(t, candles[3].PeriodStart, trade.ExitTime)
	assert.Equal(t, 13.0, trade.ExitPrice)
	assert.InDelta(t, (13.0-11.0)*2, trade.RealizedPnL, 1e-9)
	assert.True(t, trade.Closed)
	assert.True(t, trade.ExitTime.After(trade.EntryTime))
	assert.NotEqual(t, trade.ID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestSimulatorNextOpenExecution(t *testing.T) {
	candles := bars(10, 11, 12, 13, 14)
	signals := sigs(candles, map[int]strategy.Kind{
		1: strategy.EnterLong,
		3: strategy.ExitLong,
	})

	sim, err := NewSimulator(ExecNextOpen, 1)
	require.NoError(t, err)
	ledger, err := sim.Run(candles, signals)
	require.NoError(t, err)

	require.Len(t, ledger.Closed, 1)
	trade := ledger.Closed[0]
	assert.Equal(t, candles[2].PeriodStart, trade.EntryTime)
	assert.Equal(t, candles[2].Open, trade.EntryPrice)
	assert.Equal(t, candles[4].PeriodStart, trade.ExitTime)
	assert.Equal(t, candles[4].Open, trade.ExitPrice)
}

func TestSimulatorNextOpenDiscardsFinalBarSignal(t *testing.T) {
	candles := bars(10, 11, 12)
	signals := sigs(candles, map[int]strategy.Kind{
		2: strategy.EnterLong, // no next bar to fill on
	})

	sim, err := NewSimulator(ExecNextOpen, 1)
	require.NoError(t, err)
	ledger, err := sim.Run(candles, signals)
	require.NoError(t, err)

	assert.Empty(t, ledger.Closed)
	assert.Nil(t, ledger.Open)
}

func TestSimulatorLeavesFinalPositionOpen(t *testing.T) {
	candles := bars(10, 11, 12, 13)
	signals := sigs(candles, map[int]strategy.Kind{
		1: strategy.EnterLong,
	})

	sim, err := NewSimulator(ExecClose, 3)
	require.NoError(t, err)
	ledger, err := sim.Run(candles, signals)
	require.NoError(t, err)

	assert.Empty(t, ledger.Closed)
	require.NotNil(t, ledger.Open)
	assert.False(t, ledger.Open.Closed)
	assert.Equal(t, 11.0, ledger.Open.EntryPrice)
	assert.Equal(t, 3.0, ledger.Open.Size)
}

func TestSimulatorAtMostOneOpenTrade(t *testing.T) {
	candles := bars(10, 11, 12, 13, 14, 15, 16, 17)
	signals := sigs(candles, map[int]strategy.Kind{
		1: strategy.EnterLong,
		3: strategy.ExitLong,
		5: strategy.EnterLong,
		6: strategy.ExitLong,
	})

	sim, err := NewSimulator(ExecClose, 1)
	require.NoError(t, err)
	ledger, err := sim.Run(candles, signals)
	require.NoError(t, err)

	require.Len(t, ledger.Closed, 2)
	// Ledger prefixes never hold two positions: each close precedes the next
	// entry.
	for i := 1; i < len(ledger.Closed); i++ {
		assert.True(t, ledger.Closed[i].EntryTime.After(ledger.Closed[i-1].ExitTime))
	}
	for _, tr := range ledger.Closed {
		assert.True(t, tr.ExitTime.After(tr.EntryTime))
	}
}

func TestSimulatorConsistencyErrors(t *testing.T) {
	candles := bars(10, 11, 12)

	t.Run("double open", func(t *testing.T) {
		signals := sigs(candles, map[int]strategy.Kind{
			0: strategy.EnterLong,
			1: strategy.EnterLong,
		})
		sim, err := NewSimulator(ExecClose, 1)
		require.NoError(t, err)
		_, err = sim.Run(candles, signals)
		var cerr *simerr.ConsistencyError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("close without position", func(t *testing.T) {
		signals := sigs(candles, map[int]strategy.Kind{
			1: strategy.ExitLong,
		})
		sim, err := NewSimulator(ExecClose, 1)
		require.NoError(t, err)
		_, err = sim.Run(candles, signals)
		var cerr *simerr.ConsistencyError
		require.ErrorAs(t, err, &cerr)
	})
}

func TestNewSimulatorValidation(t *testing.T) {
	var perr *simerr.ParameterError

	_, err := NewSimulator("immediate", 1)
	require.ErrorAs(t, err, &perr)

	_, err = NewSimulator(ExecClose, 0)
	require.ErrorAs(t, err, &perr)

	_, err = NewSimulator(ExecClose, -2)
	require.ErrorAs(t, err, &perr)
}

func TestSimulatorMisalignedInput(t *testing.T) {
	candles := bars(10, 11, 12)
	signals := sigs(candles, nil)[:2]

	sim, err := NewSimulator(ExecClose, 1)
	require.NoError(t, err)
	_, err = sim.Run(candles, signals)
	var perr *simerr.ParameterError
	require.ErrorAs(t, err, &perr)
}
