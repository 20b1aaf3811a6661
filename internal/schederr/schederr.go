// Package schederr holds the sentinel error taxonomy shared by the
// ingestion, feasibility, and optimizer layers. Hot-path predicates never
// raise these directly — they return booleans — but the layers around
// them (CSV/JSON parsing, driver setup, optimizer control) do.
package schederr

import "errors"

var (
	// ErrInvalidTimeFormat is returned by CSV/JSON parsing when a time-of-day
	// or date field cannot be parsed. The offending row/request is rejected;
	// it never reaches the optimizer.
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrProposalUnschedulable names the case of a proposal that has no
	// admissible instant anywhere in the horizon. No function in this module
	// returns it: such a proposal is dropped (direct encoding) or counted
	// unplaceable (hyper-heuristic) without an error.
	ErrProposalUnschedulable = errors.New("proposal has no feasible instant in horizon")

	// ErrSunNeverRisesOrSets names the case where sunrise/sunset calculation
	// finds no crossing for the given date and latitude. No function in this
	// module returns it: astro.SunriseSunset reports the case with nil
	// results, and the affected feasibility test returns false for that day.
	ErrSunNeverRisesOrSets = errors.New("sun never rises or sets on this date at this latitude")

	// ErrEmptyPopulation is fatal: the optimizer cannot run without at
	// least one individual.
	ErrEmptyPopulation = errors.New("optimizer population is empty")

	// ErrCancelled names a run stopped by a cooperative cancellation signal.
	// No function in this module returns it: a cancelled optimizer run
	// returns its current best result with a nil error.
	ErrCancelled = errors.New("optimizer run cancelled")
)
