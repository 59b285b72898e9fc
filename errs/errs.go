// Package errs defines the error kinds shared across the optimization core.
package errs

import (
	"errors"
	"strconv"
)

// Sentinel error kinds. Wrap with fmt.Errorf("...: %w", Err...) at call
// sites so callers can still errors.Is against the kind.
var (
	// ErrConfiguration signals an incoherent configuration: missing key,
	// unknown strategy kind, wrong number of objectives, negative
	// probability. Fatal; must surface before the first generation.
	ErrConfiguration = errors.New("configuration error")

	// ErrFitnessShape signals comparator inputs that disagree on the
	// number of objectives, or a fitness missing an extension a strategy
	// requires. A programmer error; the run cannot proceed meaningfully.
	ErrFitnessShape = errors.New("fitness shape error")

	// ErrInvalidIndex signals an objective or locus index outside its
	// declared range.
	ErrInvalidIndex = errors.New("invalid index")

	// ErrInvalidPopulation signals a required list (population, front,
	// archive) was empty where the operation requires at least one member.
	ErrInvalidPopulation = errors.New("invalid population")

	// ErrStop is not a failure: it signals the driver must transition to
	// FINISHED. Strategies and controllers may return it to short-circuit
	// a loop; engine.Driver treats it as a normal termination cause.
	ErrStop = errors.New("stop")
)

// EvaluatorFailure wraps an error raised by an objective function,
// recording which solution and which objective index failed so the
// caller can decide whether to drop the solution or abort the run.
type EvaluatorFailure struct {
	ObjectiveIndex int
	SolutionIndex  int
	Err            error
}

func (e *EvaluatorFailure) Error() string {
	return "objective " + strconv.Itoa(e.ObjectiveIndex) + " failed on solution " +
		strconv.Itoa(e.SolutionIndex) + ": " + e.Err.Error()
}

func (e *EvaluatorFailure) Unwrap() error { return e.Err }
