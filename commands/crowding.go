package commands

import (
	"fmt"
	"math"
	"sort"

	"github.com/luxfi/moga/errs"
	"github.com/luxfi/moga/solution"
)

// CrowdingDistanceCalculator computes NSGA-II crowding distance over one
// front: for each objective, sort ascending, assign +Inf to
// both extrema, and add (v[i+1]-v[i-1])/(max-min) to every interior
// point. The final distance is the sum across objectives; an objective
// whose min equals its max contributes 0 to every interior point (a
// degenerate, single-valued dimension carries no discriminating
// information); its two extrema still receive +Inf.
type CrowdingDistanceCalculator struct {
	front    solution.Population
	min, max []float64

	result []float64
}

// NewCrowdingDistanceCalculator seeds the command with a front and the
// declared per-objective bounds used to normalise the spread term.
func NewCrowdingDistanceCalculator(front solution.Population, min, max []float64) *CrowdingDistanceCalculator {
	return &CrowdingDistanceCalculator{front: front, min: min, max: max}
}

// Execute computes the distance. Result returns one float64 per member
// of front, in the same order as front, afterward.
func (c *CrowdingDistanceCalculator) Execute() error {
	n := len(c.front)
	if n == 0 {
		return fmt.Errorf("%w: crowding distance needs at least one solution", errs.ErrInvalidPopulation)
	}
	m := len(c.min)
	if len(c.max) != m {
		return fmt.Errorf("%w: min/max bound length mismatch", errs.ErrFitnessShape)
	}

	distances := make([]float64, n)
	if n <= 2 {
		for i := range distances {
			distances[i] = math.Inf(1)
		}
		c.result = distances
		return nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	for objIdx := 0; objIdx < m; objIdx++ {
		span := c.max[objIdx] - c.min[objIdx]

		sort.SliceStable(order, func(a, b int) bool {
			va, _ := c.front[order[a]].Fitness.ObjectiveValue(objIdx)
			vb, _ := c.front[order[b]].Fitness.ObjectiveValue(objIdx)
			return va < vb
		})

		distances[order[0]] = math.Inf(1)
		distances[order[n-1]] = math.Inf(1)

		if span == 0 {
			continue
		}

		for k := 1; k < n-1; k++ {
			if math.IsInf(distances[order[k]], 1) {
				continue
			}
			prev, _ := c.front[order[k-1]].Fitness.ObjectiveValue(objIdx)
			next, _ := c.front[order[k+1]].Fitness.ObjectiveValue(objIdx)
			distances[order[k]] += (next - prev) / span
		}
	}

	c.result = distances
	return nil
}

// Result returns the computed crowding distance per front member, in
// front order.
func (c *CrowdingDistanceCalculator) Result() []float64 { return c.result }
