// Package paes implements the (1+1) adaptive-grid strategy: a single
// incumbent is mutated into a candidate, the two are compared under
// ordinary Pareto dominance with grid-cell density as
// the non-dominated tiebreaker, and a capped external archive evicts
// from its densest grid region when it grows past capacity. Grounded
// on commands.HypercubePartition (shared with strategies/epsmoea and
// strategies/grea) for the grid and on comparator.NewPareto for
// dominance.
package paes

import (
	"fmt"

	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/commands"
	"github.com/luxfi/moga/errs"
	"github.com/luxfi/moga/fitness"
	"github.com/luxfi/moga/objective"
	"github.com/luxfi/moga/solution"
	"github.com/luxfi/moga/strategy"
)

// Ext is the fitness extension PAES stamps on every solution: its
// current adaptive-grid coordinates.
type Ext struct {
	coords []int
}

// Strategy implements strategy.Strategy for (1+1) PAES.
type Strategy struct {
	m           int
	divisions   int
	archiveCap  int

	paretoCmp comparator.Fitness
	partition *commands.HypercubePartition
}

// New returns a PAES strategy with a K-division-per-objective adaptive
// grid (recomputed from the archive's observed bounds) and an archive
// capacity of archiveCap.
func New(m, divisions, archiveCap int) *Strategy {
	return &Strategy{m: m, divisions: divisions, archiveCap: archiveCap}
}

func (s *Strategy) CreateSolutionComparator(components []comparator.Component) comparator.Solution {
	s.paretoCmp = comparator.NewPareto(components)
	return comparator.Plain(s.paretoCmp)
}

func (s *Strategy) FitnessPrototype() objective.Prototype {
	m := s.m
	return func() fitness.Fitness {
		f := fitness.New(m)
		f.SetExtension(&Ext{})
		return f
	}
}

// Initialize treats the first member of population as the sole
// incumbent and seeds the archive and grid from it.
func (s *Strategy) Initialize(ctx *strategy.Context, population solution.Population) (solution.Population, error) {
	if len(population) == 0 {
		return nil, fmt.Errorf("%w: PAES needs at least 1 initial solution", errs.ErrInvalidPopulation)
	}
	incumbent := population[0]
	archive := solution.Population{incumbent.Clone()}
	if err := s.regrid(archive); err != nil {
		return nil, err
	}
	return archive, nil
}

// MatingSelection returns a one-member parent list holding the sole
// incumbent; EnvironmentalSelection and UpdateArchive take the first
// offspring the variation step produces from it as the mutant.
func (s *Strategy) MatingSelection(ctx *strategy.Context) (solution.Population, error) {
	if len(ctx.Inhabitants) == 0 {
		return nil, fmt.Errorf("%w: no incumbent to mutate", errs.ErrInvalidPopulation)
	}
	return solution.Population{ctx.Inhabitants[0]}, nil
}

// EnvironmentalSelection applies the (1+1) replacement rule: the
// mutant replaces the incumbent if it dominates it, is rejected if
// dominated by it, and otherwise replaces it iff its grid cell is less
// crowded than the incumbent's.
func (s *Strategy) EnvironmentalSelection(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	if len(offspring) == 0 {
		return ctx.Inhabitants, nil
	}
	incumbent := ctx.Inhabitants[0]
	mutant := offspring[0]

	if err := s.regrid(append(solution.Population{incumbent, mutant}, ctx.Archive...)); err != nil {
		return nil, err
	}

	sign, err := s.paretoCmp.Compare(mutant.Fitness, incumbent.Fitness)
	if err != nil {
		return nil, err
	}
	switch {
	case sign > 0:
		return solution.Population{mutant}, nil
	case sign < 0:
		return solution.Population{incumbent}, nil
	default:
		if s.density(mutant, ctx.Archive) < s.density(incumbent, ctx.Archive) {
			return solution.Population{mutant}, nil
		}
		return solution.Population{incumbent}, nil
	}
}

// UpdateArchive admits the mutant into the archive when no archive
// member dominates it, evicting dominated members, then if the archive
// still exceeds its cap drops one member from the densest grid cell.
func (s *Strategy) UpdateArchive(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	archive := make(solution.Population, len(ctx.Archive))
	copy(archive, ctx.Archive)
	if len(offspring) == 0 {
		return archive, nil
	}
	candidate := offspring[0]

	dominated := false
	survivors := make(solution.Population, 0, len(archive)+1)
	for _, member := range archive {
		sign, err := s.paretoCmp.Compare(member.Fitness, candidate.Fitness)
		if err != nil {
			return nil, err
		}
		switch {
		case sign > 0:
			dominated = true
			survivors = append(survivors, member)
		case sign < 0:
			continue // member dominated by candidate, evicted
		default:
			survivors = append(survivors, member)
		}
	}
	if dominated {
		return survivors, nil
	}
	survivors = append(survivors, candidate.Clone())

	if err := s.regrid(survivors); err != nil {
		return nil, err
	}
	for len(survivors) > s.archiveCap {
		survivors = s.evictDensest(survivors)
	}
	return survivors, nil
}

func (s *Strategy) Update(ctx *strategy.Context) error { return nil }

// regrid recomputes the adaptive grid from pop's observed bounds and
// assigns every member's coordinates.
func (s *Strategy) regrid(pop solution.Population) error {
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
	s.partition = partition
	for _, sol := range pop {
		ext, ok := sol.Fitness.Extension().(*Ext)
		if !ok {
			return fmt.Errorf("%w: solution missing paes extension", errs.ErrFitnessShape)
		}
		coords, err := partition.Coordinates(sol.Fitness.ObjectiveValues())
		if err != nil {
			return err
		}
		ext.coords = coords
	}
	return nil
}

// density counts how many archive members share candidate's grid cell.
func (s *Strategy) density(candidate *solution.Solution, archive solution.Population) int {
	ext, ok := candidate.Fitness.Extension().(*Ext)
	if !ok {
		return 0
	}
	count := 0
	for _, member := range archive {
		if sameCoords(ext.coords, member) {
			count++
		}
	}
	return count
}

func sameCoords(coords []int, sol *solution.Solution) bool {
	ext, ok := sol.Fitness.Extension().(*Ext)
	if !ok || len(ext.coords) != len(coords) {
		return false
	}
	for i := range coords {
		if coords[i] != ext.coords[i] {
			return false
		}
	}
	return true
}

// evictDensest removes one member from the most populated grid cell.
func (s *Strategy) evictDensest(archive solution.Population) solution.Population {
	counts := make(map[string]int)
	key := func(coords []int) string {
		out := ""
		for _, c := range coords {
			out += fmt.Sprintf("%d,", c)
		}
		return out
	}
	for _, sol := range archive {
		ext := sol.Fitness.Extension().(*Ext)
		counts[key(ext.coords)]++
	}
	worstIdx, worstCount := 0, -1
	for i, sol := range archive {
		ext := sol.Fitness.Extension().(*Ext)
		c := counts[key(ext.coords)]
		if c > worstCount {
			worstCount, worstIdx = c, i
		}
	}
	return append(archive[:worstIdx], archive[worstIdx+1:]...)
}
