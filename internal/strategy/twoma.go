package strategy

import (
	"stratsim/internal/candle"
	"stratsim/internal/indicator"
	"stratsim/internal/simerr"
)

// TwoMA is the classic two moving average crossover: a fast SMA crossing a
// slow SMA of the candle closes.
type TwoMA struct {
	fastPeriod int
	slowPeriod int
}

func NewTwoMA(fastPeriod, slowPeriod int) (*TwoMA, error) {
	if fastPeriod < 1 {
		return nil, &simerr.ParameterError{Param: "fast_period", Reason: "must be at least 1"}
	}
	if slowPeriod <= fastPeriod {
		return nil, &simerr.ParameterError{Param: "slow_period", Reason: "must be greater than fast_period"}
	}
	return &TwoMA{fastPeriod: fastPeriod, slowPeriod: slowPeriod}, nil
}

func (s *TwoMA) Name() string { return "2MA" }

func (s *TwoMA) WarmupPeriod() int { return s.slowPeriod }

func (s *TwoMA) Series(candles []candle.Candle) ([]indicator.Value, []indicator.Value, error) {
	times := candle.Times(candles)
	closes := candle.Closes(candles)

	fast, err := indicator.SMA(times, closes, s.fastPeriod)
	if err != nil {
		return nil, nil, err
	}
	slow, err := indicator.SMA(times, closes, s.slowPeriod)
	if err != nil {
		return nil, nil, err
	}
	return fast, slow, nil
}
