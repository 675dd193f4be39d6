package strategy

import (
	"stratsim/internal/indicator"
	"stratsim/internal/simerr"
)

// Position is the detector state. The model is long-only, so there are
// exactly two states.
type Position int8

const (
	Flat Position = iota
	Long
)

// Detect runs the crossover state machine over two aligned indicator series
// and returns one signal per bar.
//
// A bar t is evaluated only when both series are defined at t-1 and t. With
// diff = fast - slow, an upward crossing (diff[t-1] <= 0 < diff[t]) while
// flat enters long; a downward crossing (diff[t-1] >= 0 > diff[t]) while long
// exits; every other bar is a hold. The initial state is flat, and a position
// still open when the series ends is left open for mark-to-last valuation.
func Detect(fast, slow []indicator.Value) ([]Signal, error) {
	if len(fast) != len(slow) {
		return nil, &simerr.ParameterError{Param: "series", Reason: "fast and slow series lengths differ"}
	}

	signals := make([]Signal, len(fast))
	state := Flat
	for t := range fast {
		signals[t] = Signal{Time: fast[t].Time, Kind: Hold}
		if t == 0 || !fast[t-1].Defined() || !slow[t-1].Defined() || !fast[t].Defined() || !slow[t].Defined() {
			continue
		}

		prevDiff := fast[t-1].Value - slow[t-1].Value
		diff := fast[t].Value - slow[t].Value

		switch {
		case state == Flat && prevDiff <= 0 && diff > 0:
			signals[t].Kind = EnterLong
			state = Long
		case state == Long && prevDiff >= 0 && diff < 0:
			signals[t].Kind = ExitLong
			state = Flat
		}
	}
	return signals, nil
}
