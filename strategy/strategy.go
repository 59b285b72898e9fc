// Package strategy defines the pluggable strategy contract: mating
// selection, environmental selection, archive maintenance, and the
// per-generation bookkeeping hook, all receiving a shared Context, so
// the driver in package engine can remain entirely strategy-agnostic.
package strategy

import (
	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/objective"
	"github.com/luxfi/moga/rng"
	"github.com/luxfi/moga/solution"
)

// Strategy is the pluggable multi-objective policy a driver composes
// with the generic search loop. Every method receives the Context; a
// strategy may also keep its own state between calls (reference
// vectors, ideal point, grid bounds, caches).
type Strategy interface {
	// Initialize seeds the strategy from the first evaluated population
	// and returns the initial archive (possibly empty).
	Initialize(ctx *Context, population solution.Population) (solution.Population, error)

	// MatingSelection returns the parents to recombine this generation,
	// in an order the variation operator is free to rely on.
	MatingSelection(ctx *Context) (solution.Population, error)

	// EnvironmentalSelection returns the survivors of size
	// ctx.TargetSize from the union of inhabitants and offspring.
	EnvironmentalSelection(ctx *Context, offspring solution.Population) (solution.Population, error)

	// UpdateArchive returns the archive to carry into the next
	// generation, given this generation's inhabitants and offspring.
	UpdateArchive(ctx *Context, offspring solution.Population) (solution.Population, error)

	// Update refreshes internal bookkeeping that depends on the whole
	// generation having settled (ideal/nadir point, adaptive grid
	// bounds, reference-vector association, strength recomputation).
	// Called once per generation after UpdateArchive.
	Update(ctx *Context) error

	// CreateSolutionComparator builds the strategy's preferred solution
	// comparator from one Component per objective, in declared order.
	CreateSolutionComparator(components []comparator.Component) comparator.Solution

	// FitnessPrototype returns the extended fitness the evaluator
	// should stamp onto every solution this strategy manages.
	FitnessPrototype() objective.Prototype
}

// Context is the shared, single-owner record passed to every Strategy
// call. The driver mutates it between
// phases; a strategy may mutate only the fields it privately owns via
// its own closures (reference neighbourhoods, grid state, ...), never
// the fields below.
type Context struct {
	RNG        rng.Source
	Evaluator  objective.Evaluator
	Comparator comparator.Solution

	TargetSize      int
	MaxGenerations  int
	MaxEvaluations  uint64

	Generation  int
	Inhabitants solution.Population
	Archive     solution.Population
}

// NewContext returns a Context ready for the driver's INIT phase.
func NewContext(source rng.Source, evaluator objective.Evaluator, cmp comparator.Solution, targetSize, maxGenerations int, maxEvaluations uint64) *Context {
	return &Context{
		RNG:            source,
		Evaluator:      evaluator,
		Comparator:     cmp,
		TargetSize:     targetSize,
		MaxGenerations: maxGenerations,
		MaxEvaluations: maxEvaluations,
	}
}
