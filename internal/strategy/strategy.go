// Package strategy turns indicator series into discrete trading signals.
package strategy

import (
	"time"

	"stratsim/internal/candle"
	"stratsim/internal/indicator"
)

// Strategy is the interface for all crossover strategies. Series produces the
// two aligned indicator series whose sign-of-difference crossings drive the
// signal detector.
type Strategy interface {
	Name() string
	WarmupPeriod() int // candles needed before the first defined comparison
	Series(candles []candle.Candle) (fast, slow []indicator.Value, err error)
}

// Kind is the per-bar signal emitted by the detector.
type Kind int8

const (
	Hold Kind = iota
	EnterLong
	ExitLong
)

func (k Kind) String() string {
	switch k {
	case EnterLong:
		return "enter-long"
	case ExitLong:
		return "exit-long"
	default:
		return "hold"
	}
}

// Signal is one per-bar decision. It derives purely from indicator values up
// to and including its bar and never changes when later bars arrive.
type Signal struct {
	Time time.Time `json:"time"`
	Kind Kind      `json:"kind"`
}
