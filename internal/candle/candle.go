// Package candle resamples a price path into fixed-period OHLC candles.
package candle

import (
	"errors"
	"time"

	"stratsim/internal/pricegen"
	"stratsim/internal/simerr"
)

// Candle is one aggregation window of a price path. PeriodStart is the time
// of the first point in the window.
type Candle struct {
	PeriodStart time.Time `json:"period_start"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
}

// Validate checks basic OHLC sanity.
func (c *Candle) Validate() error {
	if c.PeriodStart.IsZero() {
		return errors.New("candle period start is zero")
	}
	if c.High < c.Low {
		return errors.New("candle high cannot be less than low")
	}
	if c.Open < c.Low || c.Open > c.High {
		return errors.New("candle open must be between low and high")
	}
	if c.Close < c.Low || c.Close > c.High {
		return errors.New("candle close must be between low and high")
	}
	return nil
}

// Aggregate groups points into consecutive windows of period points. Each
// full window yields one candle: open is the first price, close the last,
// high/low the extrema. A trailing window shorter than period is dropped, not
// emitted as a short candle, so downstream warm-up accounting only ever sees
// full windows.
func Aggregate(points []pricegen.PricePoint, period int) ([]Candle, error) {
	if period < 1 {
		return nil, &simerr.ParameterError{Param: "period", Reason: "must be at least 1"}
	}

	full := len(points) / period
	candles := make([]Candle, 0, full)
	for w := 0; w < full; w++ {
		window := points[w*period : (w+1)*period]
		c := Candle{
			PeriodStart: window[0].Time,
			Open:        window[0].Price,
			High:        window[0].Price,
			Low:         window[0].Price,
			Close:       window[len(window)-1].Price,
		}
		for _, pt := range window[1:] {
			if pt.Price > c.High {
				c.High = pt.Price
			}
			if pt.Price < c.Low {
				c.Low = pt.Price
			}
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// Closes extracts the close series, the usual indicator input.
func Closes(candles []Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

// Times extracts the period-start series aligned with Closes.
func Times(candles []Candle) []time.Time {
	times := make([]time.Time, len(candles))
	for i, c := range candles {
		times[i] = c.PeriodStart
	}
	return times
}
