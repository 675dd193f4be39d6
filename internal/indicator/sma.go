package indicator

import (
	"math"
	"time"

	"stratsim/internal/simerr"
)

// SMA computes the simple moving average of values over period observations.
// Output has the same length as the input; indices before period-1 are NaN.
func SMA(times []time.Time, values []float64, period int) ([]Value, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	if len(times) != len(values) {
		return nil, &simerr.ParameterError{Param: "series", Reason: "times and values lengths differ"}
	}
	if len(values) < period {
		return nil, &simerr.InsufficientDataError{What: "SMA", Need: period, Have: len(values)}
	}

	out := make([]Value, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		val := math.NaN()
		if i >= period-1 {
			val = sum / float64(period)
		}
		out[i] = Value{Time: times[i], Value: val}
	}
	return out, nil
}
