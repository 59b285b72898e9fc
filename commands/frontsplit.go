package commands

import (
	"fmt"

	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/errs"
	"github.com/luxfi/moga/solution"
)

// FrontRank is implemented by a fitness extension that stores the
// non-dominated front index assigned by PopulationSplitter.
type FrontRank interface {
	SetRank(rank int)
}

// PopulationSplitter partitions a population into successive
// non-dominated fronts F0, F1, ..., using the classic
// domination-count/dominated-list fast-non-dominated-sort: each
// solution's domination count and dominated-list are built in a single
// O(M·|P|²) pass, then fronts peel off by repeatedly decrementing counts
// of the solutions dominated by the current front.
type PopulationSplitter struct {
	population solution.Population
	cmp        comparator.Solution
	setRank    func(s *solution.Solution, rank int)

	fronts []solution.Population
}

// NewPopulationSplitter seeds the command. setRank, if non-nil, is
// invoked once per solution with its assigned front index so a
// strategy's extension can record it; pass nil to skip that bookkeeping.
func NewPopulationSplitter(population solution.Population, cmp comparator.Solution, setRank func(s *solution.Solution, rank int)) *PopulationSplitter {
	return &PopulationSplitter{population: population, cmp: cmp, setRank: setRank}
}

// Execute runs the fast-non-dominated-sort. Result returns the ordered
// fronts afterward.
func (c *PopulationSplitter) Execute() error {
	n := len(c.population)
	if n == 0 {
		return fmt.Errorf("%w: front splitting needs at least one solution", errs.ErrInvalidPopulation)
	}

	dominationCount := make([]int, n)
	dominatedBy := make([][]int, n)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			switch c.cmp(c.population[i], c.population[j]) {
			case 1:
				dominatedBy[i] = append(dominatedBy[i], j)
			case -1:
				dominationCount[i]++
			}
		}
	}

	var fronts []solution.Population
	remaining := dominationCount
	current := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if remaining[i] == 0 {
			current = append(current, i)
		}
	}

	rank := 0
	for len(current) > 0 {
		front := make(solution.Population, len(current))
		for k, idx := range current {
			front[k] = c.population[idx]
			if c.setRank != nil {
				c.setRank(c.population[idx], rank)
			}
		}
		fronts = append(fronts, front)

		var next []int
		for _, idx := range current {
			for _, dominated := range dominatedBy[idx] {
				remaining[dominated]--
				if remaining[dominated] == 0 {
					next = append(next, dominated)
				}
			}
		}
		current = next
		rank++
	}

	c.fronts = fronts
	return nil
}

// Result returns the ordered fronts computed by Execute: F0 is the
// non-dominated set of the input population.
func (c *PopulationSplitter) Result() []solution.Population { return c.fronts }
