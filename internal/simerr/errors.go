// Package simerr defines the error kinds shared by the simulation pipeline.
//
// All four kinds are fatal to the current run: a deterministic simulation
// that failed will fail identically on retry, so callers present the error
// and stop instead of retrying.
package simerr

import "fmt"

// ParameterError reports invalid model or strategy parameters. It is raised
// during construction/validation, before any simulation step runs.
type ParameterError struct {
	Param  string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

// InsufficientDataError reports that an indicator or strategy needs more
// observations than the series provides. It is raised before any signal is
// emitted.
type InsufficientDataError struct {
	Need int
	Have int
	What string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s needs %d observations, series has %d", e.What, e.Need, e.Have)
}

// NumericalInstabilityError reports a non-finite value that survived the
// documented clamps (e.g. the Heston variance floor). Silent clamps are
// corrections, not errors; this fires only when clamping was not enough.
type NumericalInstabilityError struct {
	Step  int
	Value float64
	What  string
}

func (e *NumericalInstabilityError) Error() string {
	return fmt.Sprintf("non-finite %s (%v) at step %d", e.What, e.Value, e.Step)
}

// ConsistencyError reports a should-never-happen violation of the trade
// simulator invariant, such as a double open or a close without a position.
type ConsistencyError struct {
	Op     string
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("ledger consistency violated on %s: %s", e.Op, e.Detail)
}
