package strategy

import (
	"stratsim/internal/candle"
	"stratsim/internal/indicator"
	"stratsim/internal/simerr"
)

// TwoMACD crosses the MACD line against its own signal line.
type TwoMACD struct {
	fast   int
	slow   int
	signal int
}

func NewTwoMACD(fast, slow, signal int) (*TwoMACD, error) {
	if fast < 1 {
		return nil, &simerr.ParameterError{Param: "fast", Reason: "must be at least 1"}
	}
	if slow <= fast {
		return nil, &simerr.ParameterError{Param: "slow", Reason: "must be greater than fast"}
	}
	if signal < 1 {
		return nil, &simerr.ParameterError{Param: "signal", Reason: "must be at least 1"}
	}
	return &TwoMACD{fast: fast, slow: slow, signal: signal}, nil
}

func (s *TwoMACD) Name() string { return "2MACD" }

func (s *TwoMACD) WarmupPeriod() int { return s.slow + s.signal - 1 }

func (s *TwoMACD) Series(candles []candle.Candle) ([]indicator.Value, []indicator.Value, error) {
	res, err := indicator.MACD(candle.Times(candles), candle.Closes(candles), s.fast, s.slow, s.signal)
	if err != nil {
		return nil, nil, err
	}
	return res.Line, res.Signal, nil
}
