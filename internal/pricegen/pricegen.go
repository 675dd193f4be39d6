// Package pricegen produces synthetic price paths from seeded stochastic models.
package pricegen

import (
	"math"
	"math/rand"
	"time"

	"stratsim/internal/simerr"
)

// PricePoint is a single observation on a price path. Paths are strictly
// increasing in time with no duplicate timestamps.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// Generator is the capability interface implemented by all price models.
// Generate is deterministic for a fixed (steps, seed) pair and the
// generator's own parameters: the random source is built from the seed on
// every call, never taken from the process-wide default.
type Generator interface {
	Name() string
	Generate(steps int, seed int64) ([]PricePoint, error)
}

// simEpoch is the default start of a simulated path when none is configured.
var simEpoch = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

const defaultInterval = time.Minute

func validateSteps(steps int) error {
	if steps < 1 {
		return &simerr.ParameterError{Param: "steps", Reason: "must be at least 1"}
	}
	return nil
}

func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func startAndInterval(start time.Time, interval time.Duration) (time.Time, time.Duration) {
	if start.IsZero() {
		start = simEpoch
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return start, interval
}

// checkFinite guards against a non-finite price escaping the model clamps.
func checkFinite(price float64, step int) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return &simerr.NumericalInstabilityError{Step: step, Value: price, What: "price"}
	}
	return nil
}
