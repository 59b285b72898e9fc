// Package nsga2 implements the dominance/crowding strategy: fronts rank
// survival, crowding distance breaks ties inside an
// overflowing front. Grounded on the fast-non-dominated-sort and
// crowding-distance routines of the NSGA-II reference implementations
// in the retrieval pack, reworked onto this module's comparator/
// commands packages instead of a bespoke Solution type.
package nsga2

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

// Ext is the fitness extension NSGA-II stamps on every solution: its
// non-dominated front rank and its crowding distance within that front.
type Ext struct {
	rank     int
	crowding float64
}

func (e *Ext) Rank() int        { return e.rank }
func (e *Ext) Density() float64 { return e.crowding }

// Strategy implements strategy.Strategy for NSGA-II.
type Strategy struct {
	components []comparator.Component
	paretoCmp  comparator.Fitness
	solCmp     comparator.Solution
	min, max   []float64
}

// New returns an NSGA-II strategy over the declared per-objective
// bounds, used to normalise the crowding-distance spread term.
func New(min, max []float64) *Strategy {
	return &Strategy{min: min, max: max}
}

func (s *Strategy) CreateSolutionComparator(components []comparator.Component) comparator.Solution {
	s.components = components
	s.paretoCmp = comparator.NewPareto(components)
	extractor := func(f fitness.Fitness) (comparator.RankedFitness, bool) {
		e, ok := f.Extension().(*Ext)
		return e, ok
	}
	s.solCmp = comparator.NSGA2Constrained(extractor)
	return s.solCmp
}

func (s *Strategy) FitnessPrototype() objective.Prototype {
	m := len(s.min)
	return func() fitness.Fitness {
		f := fitness.New(m)
		f.SetExtension(&Ext{})
		return f
	}
}

func (s *Strategy) Initialize(ctx *strategy.Context, population solution.Population) (solution.Population, error) {
	if err := s.rankAndCrowd(population); err != nil {
		return nil, err
	}
	front0, err := s.front(population, 0)
	if err != nil {
		return nil, err
	}
	return cloneWithExt(front0), nil
}

// cloneWithExt clones a population the way solution.Population.Clone
// does, but additionally deep-copies each solution's *Ext so an archive
// holding a clone never aliases the population's own extension (Base's
// generic Clone shallow-copies the extension field, see fitness.Base.Clone).
func cloneWithExt(pop solution.Population) solution.Population {
	out := pop.Clone()
	for i, sol := range out {
		if ext, ok := pop[i].Fitness.Extension().(*Ext); ok {
			sol.Fitness.SetExtension(&Ext{rank: ext.rank, crowding: ext.crowding})
		}
	}
	return out
}

// MatingSelection runs binary tournament using the crowded comparison
// operator (lower rank wins, ties broken by larger crowding distance).
func (s *Strategy) MatingSelection(ctx *strategy.Context) (solution.Population, error) {
	pop := ctx.Inhabitants
	n := len(pop)
	if n < 2 {
		return nil, fmt.Errorf("%w: binary tournament needs at least 2 inhabitants", errs.ErrInvalidPopulation)
	}
	parents := make(solution.Population, n)
	for i := 0; i < n; i++ {
		a, b := rng.TwoDistinct(ctx.RNG, n)
		if s.solCmp(pop[a], pop[b]) >= 0 {
			parents[i] = pop[a]
		} else {
			parents[i] = pop[b]
		}
	}
	return parents, nil
}

// EnvironmentalSelection merges inhabitants and offspring, splits into
// fronts, and fills the survivor list front by front, truncating the
// last admitted front by descending crowding distance.
func (s *Strategy) EnvironmentalSelection(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	merged := make(solution.Population, 0, len(ctx.Inhabitants)+len(offspring))
	merged = append(merged, ctx.Inhabitants...)
	merged = append(merged, offspring...)

	if err := s.rankAndCrowd(merged); err != nil {
		return nil, err
	}

	fronts, err := s.splitFronts(merged)
	if err != nil {
		return nil, err
	}

	survivors := make(solution.Population, 0, ctx.TargetSize)
	for _, front := range fronts {
		if len(survivors)+len(front) <= ctx.TargetSize {
			survivors = append(survivors, front...)
			continue
		}
		remaining := ctx.TargetSize - len(survivors)
		if remaining <= 0 {
			break
		}
		sorted := make(solution.Population, len(front))
		copy(sorted, front)
		sort.SliceStable(sorted, func(i, j int) bool {
			ei := sorted[i].Fitness.Extension().(*Ext)
			ej := sorted[j].Fitness.Extension().(*Ext)
			return ei.crowding > ej.crowding
		})
		survivors = append(survivors, sorted[:remaining]...)
		break
	}
	return survivors, nil
}

// UpdateArchive tracks the non-dominated inhabitants as the external
// archive: NSGA-II's classic form has no separate archive beyond the
// population itself, so this simply mirrors front 0 of ctx.Inhabitants
// (the population before this generation's replacement).
func (s *Strategy) UpdateArchive(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	front0, err := s.front(ctx.Inhabitants, 0)
	if err != nil {
		return nil, err
	}
	return cloneWithExt(front0), nil
}

func (s *Strategy) Update(ctx *strategy.Context) error { return nil }

func (s *Strategy) rankAndCrowd(pop solution.Population) error {
	fronts, err := s.splitFronts(pop)
	if err != nil {
		return err
	}
	for _, front := range fronts {
		calc := commands.NewCrowdingDistanceCalculator(front, s.min, s.max)
		if err := calc.Execute(); err != nil {
			return err
		}
		distances := calc.Result()
		for i, sol := range front {
			ext, ok := sol.Fitness.Extension().(*Ext)
			if !ok {
				return fmt.Errorf("%w: solution missing nsga2 extension", errs.ErrFitnessShape)
			}
			ext.crowding = distances[i]
		}
	}
	return nil
}

func (s *Strategy) splitFronts(pop solution.Population) ([]solution.Population, error) {
	cmp := comparator.Plain(s.paretoCmp)
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

func (s *Strategy) front(pop solution.Population, index int) (solution.Population, error) {
	fronts, err := s.splitFronts(pop)
	if err != nil {
		return nil, err
	}
	if index >= len(fronts) {
		return solution.Population{}, nil
	}
	return fronts[index], nil
}
