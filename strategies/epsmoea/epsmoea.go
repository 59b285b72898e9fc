// Package epsmoea implements an archive-based steady-state strategy: a
// population evolves under ordinary Pareto dominance while an external
// archive is maintained under epsilon-dominance over a
// fixed hypercube grid, admitting a candidate only when no archive
// member epsilon-dominates it and evicting any archive member the
// candidate epsilon-dominates. Grounded on commands.HypercubePartition
// for the grid and comparator.NewEpsilonDominance for the acceptance
// test, with mating adapted from strategies/nsga2's tournament pattern.
package epsmoea

import (
	"fmt"

	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/commands"
	"github.com/luxfi/moga/errs"
	"github.com/luxfi/moga/fitness"
	"github.com/luxfi/moga/objective"
	"github.com/luxfi/moga/rng"
	"github.com/luxfi/moga/solution"
	"github.com/luxfi/moga/strategy"
)

// Ext is the fitness extension ε-MOEA stamps on every solution: its
// hypercube grid coordinates, read by comparator.NewEpsilonDominance
// through the comparator.HypercubeCoords interface.
type Ext struct {
	coords []int
}

func (e *Ext) HypercubeCoordinates() []int { return e.coords }

// Strategy implements strategy.Strategy for ε-MOEA.
type Strategy struct {
	m         int
	partition *commands.HypercubePartition
	maximize  []bool

	paretoCmp    comparator.Fitness
	epsilonCmp   comparator.Fitness
	solCmp       comparator.Solution
}

// New returns an ε-MOEA strategy with a fixed-width hypercube grid
// (epsilon per objective) and the per-objective maximize flags needed
// for epsilon-dominance's Pareto comparison.
func New(min, epsilon []float64, maximize []bool) *Strategy {
	return &Strategy{
		m:         len(min),
		partition: commands.NewFixedWidthPartition(min, epsilon),
		maximize:  maximize,
	}
}

func (s *Strategy) CreateSolutionComparator(components []comparator.Component) comparator.Solution {
	s.paretoCmp = comparator.NewPareto(components)
	s.epsilonCmp = comparator.NewEpsilonDominance(s.maximize)
	s.solCmp = comparator.Constrained(s.paretoCmp)
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
	if err := s.assignCoords(population); err != nil {
		return nil, err
	}
	archive := solution.Population{}
	for _, sol := range population {
		var err error
		archive, err = s.admit(archive, sol)
		if err != nil {
			return nil, err
		}
	}
	return archive, nil
}

// MatingSelection draws one parent from the population and one from
// the archive (falling back to the population if the archive is empty),
// the steady-state pairing this strategy uses.
func (s *Strategy) MatingSelection(ctx *strategy.Context) (solution.Population, error) {
	pop := ctx.Inhabitants
	if len(pop) < 1 {
		return nil, fmt.Errorf("%w: mating needs at least 1 population member", errs.ErrInvalidPopulation)
	}
	archiveSource := ctx.Archive
	if len(archiveSource) == 0 {
		archiveSource = pop
	}
	popParent := pop[rng.Choice(ctx.RNG, len(pop))]
	archiveParent := archiveSource[rng.Choice(ctx.RNG, len(archiveSource))]
	return solution.Population{popParent, archiveParent}, nil
}

// EnvironmentalSelection replaces the population via binary tournament
// between each offspring and a randomly drawn incumbent under ordinary
// Pareto dominance, keeping the population size fixed.
func (s *Strategy) EnvironmentalSelection(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	if err := s.assignCoords(offspring); err != nil {
		return nil, err
	}
	pop := make(solution.Population, len(ctx.Inhabitants))
	copy(pop, ctx.Inhabitants)

	for _, child := range offspring {
		if len(pop) == 0 {
			break
		}
		idx := rng.Choice(ctx.RNG, len(pop))
		if s.solCmp(child, pop[idx]) >= 0 {
			pop[idx] = child
		}
	}
	return pop, nil
}

// UpdateArchive admits every offspring into the epsilon-dominance
// archive, evicting any member the offspring epsilon-dominates and
// rejecting the offspring if any existing member epsilon-dominates it.
func (s *Strategy) UpdateArchive(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	archive := make(solution.Population, len(ctx.Archive))
	copy(archive, ctx.Archive)
	if err := s.assignCoords(offspring); err != nil {
		return nil, err
	}
	for _, child := range offspring {
		var err error
		archive, err = s.admit(archive, child)
		if err != nil {
			return nil, err
		}
	}
	return archive, nil
}

func (s *Strategy) Update(ctx *strategy.Context) error { return nil }

func (s *Strategy) assignCoords(pop solution.Population) error {
	for _, sol := range pop {
		ext, ok := sol.Fitness.Extension().(*Ext)
		if !ok {
			return fmt.Errorf("%w: solution missing epsmoea extension", errs.ErrFitnessShape)
		}
		coords, err := s.partition.Coordinates(sol.Fitness.ObjectiveValues())
		if err != nil {
			return err
		}
		ext.coords = coords
	}
	return nil
}

// admit applies the epsilon-dominance acceptance rule:
// reject the candidate if any archive member epsilon-dominates it,
// otherwise drop every member the candidate epsilon-dominates and add
// it (deduplicating same-box members by ordinary dominance so each
// grid cell keeps at most one representative; a genuine tie within the
// same cell is broken by distance to that cell's ideal corner).
func (s *Strategy) admit(archive solution.Population, candidate *solution.Solution) (solution.Population, error) {
	next := make(solution.Population, 0, len(archive)+1)
	for _, member := range archive {
		sign, err := s.epsilonCmp.Compare(member.Fitness, candidate.Fitness)
		if err != nil {
			return nil, err
		}
		if sign > 0 {
			return archive, nil // candidate epsilon-dominated, rejected outright
		}
		if sign < 0 {
			continue // member epsilon-dominated by candidate, evicted
		}
		// same box or mutually non-dominating in box-space: break the
		// tie by ordinary Pareto dominance, keeping only one per cell.
		sameBox := sameCoords(member, candidate)
		if sameBox {
			paretoSign, err := s.paretoCmp.Compare(candidate.Fitness, member.Fitness)
			if err != nil {
				return nil, err
			}
			switch {
			case paretoSign < 0:
				return archive, nil // candidate dominated within its own box
			case paretoSign == 0:
				memberDist, err := s.idealCornerDistance(member)
				if err != nil {
					return nil, err
				}
				candidateDist, err := s.idealCornerDistance(candidate)
				if err != nil {
					return nil, err
				}
				if memberDist <= candidateDist {
					return archive, nil // member at least as close to the ideal corner, candidate rejected
				}
				continue // candidate strictly closer to the ideal corner, replaces member
			default:
				continue // candidate dominates member within its own box, member evicted
			}
		}
		next = append(next, member)
	}
	next = append(next, candidate)
	return next, nil
}

// idealCornerDistance returns the squared Euclidean distance from sol's
// objective values to the ideal corner of its own hypercube cell: the
// upper bound on each maximized objective, the lower bound on each
// minimized one, the corner no point sharing that cell can beat.
func (s *Strategy) idealCornerDistance(sol *solution.Solution) (float64, error) {
	ext, ok := sol.Fitness.Extension().(*Ext)
	if !ok {
		return 0, fmt.Errorf("%w: solution missing epsmoea extension", errs.ErrFitnessShape)
	}
	lo, hi := s.partition.CellBounds(ext.coords)
	values := sol.Fitness.ObjectiveValues()
	var sum float64
	for i, v := range values {
		corner := lo[i]
		if s.maximize[i] {
			corner = hi[i]
		}
		d := v - corner
		sum += d * d
	}
	return sum, nil
}

func sameCoords(a, b *solution.Solution) bool {
	ea, ok1 := a.Fitness.Extension().(*Ext)
	eb, ok2 := b.Fitness.Extension().(*Ext)
	if !ok1 || !ok2 || len(ea.coords) != len(eb.coords) {
		return false
	}
	for i := range ea.coords {
		if ea.coords[i] != eb.coords[i] {
			return false
		}
	}
	return true
}
