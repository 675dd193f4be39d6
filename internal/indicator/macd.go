package indicator

import (
	"math"
	"time"

	"stratsim/internal/simerr"
)

// MACDResult holds the three aligned MACD series. Line is EMA(fast)-EMA(slow),
// Signal is EMA(signalPeriod) of Line, Histogram is Line-Signal.
type MACDResult struct {
	Line      []Value
	Signal    []Value
	Histogram []Value
}

// MACD computes the MACD series over values. Both EMAs are seeded by the
// simple average of their first period inputs; the signal EMA is seeded from
// the first signalPeriod defined MACD values. The warm-up of the signal line
// is therefore slow+signalPeriod-2 observations.
func MACD(times []time.Time, values []float64, fast, slow, signalPeriod int) (*MACDResult, error) {
	if err := validatePeriod("fast", fast); err != nil {
		return nil, err
	}
	if err := validatePeriod("slow", slow); err != nil {
		return nil, err
	}
	if err := validatePeriod("signal", signalPeriod); err != nil {
		return nil, err
	}
	if fast >= slow {
		return nil, &simerr.ParameterError{Param: "fast", Reason: "must be smaller than slow"}
	}
	if len(times) != len(values) {
		return nil, &simerr.ParameterError{Param: "series", Reason: "times and values lengths differ"}
	}
	need := slow + signalPeriod - 1
	if len(values) < need {
		return nil, &simerr.InsufficientDataError{What: "MACD", Need: need, Have: len(values)}
	}

	fastEMA := ema(values, fast)
	slowEMA := ema(values, slow)

	line := make([]float64, len(values))
	for i := range values {
		line[i] = fastEMA[i] - slowEMA[i] // NaN until both EMAs are defined
	}
	signal := ema(line, signalPeriod)

	res := &MACDResult{
		Line:      make([]Value, len(values)),
		Signal:    make([]Value, len(values)),
		Histogram: make([]Value, len(values)),
	}
	for i := range values {
		res.Line[i] = Value{Time: times[i], Value: line[i]}
		res.Signal[i] = Value{Time: times[i], Value: signal[i]}
		hist := math.NaN()
		if !math.IsNaN(line[i]) && !math.IsNaN(signal[i]) {
			hist = line[i] - signal[i]
		}
		res.Histogram[i] = Value{Time: times[i], Value: hist}
	}
	return res, nil
}
