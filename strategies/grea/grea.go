// Package grea implements a grid-ranking strategy: the objective
// space is partitioned into a fixed-count hypercube grid
// recomputed from the observed population bounds each generation, grid
// ranking GR(x) = sum of grid coordinates layers candidates the way
// NSGA-II's fronts do, and an overflowing last layer is filled by
// repeatedly picking the least grid-crowded remaining candidate and
// penalising its grid neighbours. Grounded on commands.HypercubePartition
// and comparator.NewEpsilonDominance (grid-coordinate Pareto dominance,
// shared with strategies/epsmoea) for the layering relation, and on
// strategies/nsga2's front-splitting/truncation shape for selection.
package grea

import (
	"fmt"
	"sort"

	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/commands"
	"github.com/luxfi/moga/errs"
	"github.com/luxfi/moga/fitness"
	"github.com/luxfi/moga/objective"
	"github.com/luxfi/moga/rng"
	"github.com/luxfi/moga/solution"
	"github.com/luxfi/moga/strategy"
)

// Ext is the fitness extension GrEA stamps on every solution: its grid
// coordinates, grid rank GR, and the dynamically updated grid crowding
// count used to break GR ties during environmental selection.
type Ext struct {
	coords  []int
	rank    int
	gr      int
	crowding int
}

func (e *Ext) HypercubeCoordinates() []int { return e.coords }

// Strategy implements strategy.Strategy for GrEA.
type Strategy struct {
	m        int
	divisions int
	maximize []bool

	gridCmp comparator.Fitness
	solCmp  comparator.Solution
}

// New returns a GrEA strategy with a K-division-per-objective grid
// recomputed from observed bounds every generation.
func New(m, divisions int, maximize []bool) *Strategy {
	return &Strategy{m: m, divisions: divisions, maximize: maximize}
}

func (s *Strategy) CreateSolutionComparator(components []comparator.Component) comparator.Solution {
	s.gridCmp = comparator.NewEpsilonDominance(s.maximize)
	s.solCmp = comparator.Constrained(comparator.NewPareto(components))
	return s.solCmp
}

func (s *Strategy) FitnessPrototype() objective.Prototype {
	m := s.m
	return func() fitness.Fitness {
		f := fitness.New(m)
		f.SetExtension(&Ext{})
		return f
	}
}

func (s *Strategy) Initialize(ctx *strategy.Context, population solution.Population) (solution.Population, error) {
	if err := s.gridRank(population); err != nil {
		return nil, err
	}
	front, err := s.front(population, 0)
	if err != nil {
		return nil, err
	}
	return cloneWithExt(front), nil
}

func (s *Strategy) MatingSelection(ctx *strategy.Context) (solution.Population, error) {
	pop := ctx.Inhabitants
	n := len(pop)
	if n < 2 {
		return nil, fmt.Errorf("%w: mating needs at least 2 inhabitants", errs.ErrInvalidPopulation)
	}
	parents := make(solution.Population, n)
	for i := 0; i < n; i++ {
		a, b := rng.TwoDistinct(ctx.RNG, n)
		if s.less(pop[a], pop[b]) {
			parents[i] = pop[a]
		} else {
			parents[i] = pop[b]
		}
	}
	return parents, nil
}

// less orders by ascending grid rank, then ascending crowding count,
// this strategy's tie-breaking rule.
func (s *Strategy) less(a, b *solution.Solution) bool {
	ea, eb := extOf(a), extOf(b)
	if ea.gr != eb.gr {
		return ea.gr < eb.gr
	}
	return ea.crowding < eb.crowding
}

// EnvironmentalSelection recomputes the grid from inhabitants ∪
// offspring, layers candidates into grid-dominance fronts, fills
// survivors front by front, and fills an overflowing last front by
// repeatedly selecting the least-GR, least-crowded remaining candidate
// and incrementing its grid neighbours' crowding count.
func (s *Strategy) EnvironmentalSelection(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	merged := make(solution.Population, 0, len(ctx.Inhabitants)+len(offspring))
	merged = append(merged, ctx.Inhabitants...)
	merged = append(merged, offspring...)

	if err := s.gridRank(merged); err != nil {
		return nil, err
	}

	fronts, err := s.splitFronts(merged)
	if err != nil {
		return nil, err
	}

	survivors := make(solution.Population, 0, ctx.TargetSize)
	remaining := ctx.TargetSize
	for _, front := range fronts {
		if len(front) <= remaining {
			survivors = append(survivors, front...)
			remaining -= len(front)
			if remaining == 0 {
				return survivors, nil
			}
			continue
		}
		chosen := s.pickByCrowding(front, remaining)
		survivors = append(survivors, chosen...)
		return survivors, nil
	}
	return survivors, nil
}

func (s *Strategy) UpdateArchive(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	front, err := s.front(ctx.Inhabitants, 0)
	if err != nil {
		return nil, err
	}
	return cloneWithExt(front), nil
}

func (s *Strategy) Update(ctx *strategy.Context) error { return nil }

func extOf(sol *solution.Solution) *Ext { return sol.Fitness.Extension().(*Ext) }

// gridRank recomputes the hypercube partition from pop's observed
// bounds, assigns every member's grid coordinates, and derives GR(x) =
// Σᵢ coords_i(x).
func (s *Strategy) gridRank(pop solution.Population) error {
	if len(pop) == 0 {
		return nil
	}
	min := make([]float64, s.m)
	max := make([]float64, s.m)
	for i := range min {
		min[i] = pop[0].Fitness.ObjectiveValues()[i]
		max[i] = min[i]
	}
	for _, sol := range pop {
		values := sol.Fitness.ObjectiveValues()
		for i, v := range values {
			if v < min[i] {
				min[i] = v
			}
			if v > max[i] {
				max[i] = v
			}
		}
	}
	partition, err := commands.NewFixedCountPartition(min, max, s.divisions)
	if err != nil {
		return err
	}
	for _, sol := range pop {
		ext, ok := sol.Fitness.Extension().(*Ext)
		if !ok {
			return fmt.Errorf("%w: solution missing grea extension", errs.ErrFitnessShape)
		}
		coords, err := partition.Coordinates(sol.Fitness.ObjectiveValues())
		if err != nil {
			return err
		}
		ext.coords = coords
		sum := 0
		for _, c := range coords {
			sum += c
		}
		ext.gr = sum
		ext.crowding = 0
	}
	return nil
}

func (s *Strategy) splitFronts(pop solution.Population) ([]solution.Population, error) {
	cmp := comparator.Plain(s.gridCmp)
	splitter := commands.NewPopulationSplitter(pop, cmp, func(sol *solution.Solution, rank int) {
		if ext, ok := sol.Fitness.Extension().(*Ext); ok {
			ext.rank = rank
		}
	})
	if err := splitter.Execute(); err != nil {
		return nil, err
	}
	return splitter.Result(), nil
}

func (s *Strategy) front(pop solution.Population, rank int) (solution.Population, error) {
	fronts, err := s.splitFronts(pop)
	if err != nil {
		return nil, err
	}
	if rank >= len(fronts) {
		return solution.Population{}, nil
	}
	return fronts[rank], nil
}

// pickByCrowding repeatedly selects the candidate with lowest GR, then
// lowest crowding count, from the overflowing front, and on each pick
// increments the crowding count of every remaining candidate within
// grid Manhattan distance <= m of the one just chosen (the grid
// penalty propagation rule), until need candidates are chosen.
func (s *Strategy) pickByCrowding(front solution.Population, need int) solution.Population {
	remaining := make(solution.Population, len(front))
	copy(remaining, front)
	chosen := make(solution.Population, 0, need)

	for len(chosen) < need && len(remaining) > 0 {
		sort.SliceStable(remaining, func(i, j int) bool { return s.less(remaining[i], remaining[j]) })
		pick := remaining[0]
		chosen = append(chosen, pick)
		remaining = remaining[1:]

		pickCoords := extOf(pick).coords
		for _, candidate := range remaining {
			if gridDistance(pickCoords, extOf(candidate).coords) <= s.m {
				extOf(candidate).crowding++
			}
		}
	}
	return chosen
}

func gridDistance(a, b []int) int {
	sum := 0
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum
}

func cloneWithExt(pop solution.Population) solution.Population {
	out := pop.Clone()
	for i, sol := range out {
		if ext, ok := pop[i].Fitness.Extension().(*Ext); ok {
			cp := *ext
			sol.Fitness.SetExtension(&cp)
		}
	}
	return out
}
