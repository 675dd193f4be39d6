// Package indicator computes derived series from price or candle data.
//
// Every indicator returns a series with the same length as its input. Values
// before the warm-up window are NaN, never zero or extrapolated, so callers
// can align series by index without bookkeeping for leading gaps.
package indicator

import (
	"math"
	"time"

	"stratsim/internal/simerr"
)

// Value is one indicator observation. Value is NaN while the indicator is
// warming up.
type Value struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Defined reports whether the warm-up window was satisfied at this index.
func (v Value) Defined() bool { return !math.IsNaN(v.Value) }

func validatePeriod(name string, period int) error {
	if period < 1 {
		return &simerr.ParameterError{Param: name, Reason: "must be at least 1"}
	}
	return nil
}

// ema computes a recursive EMA with alpha = 2/(period+1), seeded by the
// simple average of the first period values. Indices before period-1 are NaN.
// Input may itself contain a NaN warm-up prefix; seeding starts after it.
func ema(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}

	// Skip any warm-up prefix of the input series.
	first := 0
	for first < len(values) && math.IsNaN(values[first]) {
		first++
	}
	if len(values)-first < period {
		return out
	}

	var sum float64
	for _, v := range values[first : first+period] {
		sum += v
	}
	seed := first + period - 1
	out[seed] = sum / float64(period)

	alpha := 2 / (float64(period) + 1)
	for i := seed + 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}
