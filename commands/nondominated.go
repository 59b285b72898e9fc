// Package commands implements the stateful, single-shot utility
// computations over populations: each is seeded through a constructor,
// triggered by Execute, and exposes its result through a dedicated
// accessor once Execute has succeeded.
package commands

import (
	"fmt"

	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/errs"
	"github.com/luxfi/moga/solution"
)

// NonDominatedExtractor computes the non-dominated subset of a
// population under a given solution comparator. Feasible
// filters infeasible members out before extraction when set.
type NonDominatedExtractor struct {
	population solution.Population
	cmp        comparator.Solution
	feasible   bool

	result solution.Population
}

// NewNonDominatedExtractor seeds the command. Call FeasibleOnly(true) to
// filter infeasible solutions before extraction.
func NewNonDominatedExtractor(population solution.Population, cmp comparator.Solution) *NonDominatedExtractor {
	return &NonDominatedExtractor{population: population, cmp: cmp}
}

// FeasibleOnly toggles the feasible-variant behaviour: infeasible
// solutions are dropped before the dominance pass runs.
func (c *NonDominatedExtractor) FeasibleOnly(only bool) *NonDominatedExtractor {
	c.feasible = only
	return c
}

// Execute runs the command. Result returns c.result afterward.
func (c *NonDominatedExtractor) Execute() error {
	pop := c.population
	if c.feasible {
		filtered := make(solution.Population, 0, len(pop))
		for _, s := range pop {
			if !s.Fitness.Infeasible() {
				filtered = append(filtered, s)
			}
		}
		pop = filtered
	}
	if len(pop) == 0 {
		return fmt.Errorf("%w: non-dominated extraction needs at least one solution", errs.ErrInvalidPopulation)
	}

	out := make(solution.Population, 0, len(pop))
	for i, candidate := range pop {
		dominated := false
		for j, other := range pop {
			if i == j {
				continue
			}
			if c.cmp(other, candidate) > 0 {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, candidate)
		}
	}
	c.result = out
	return nil
}

// Result returns the non-dominated subset computed by Execute.
func (c *NonDominatedExtractor) Result() solution.Population { return c.result }
