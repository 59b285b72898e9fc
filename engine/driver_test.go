package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	comp "github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/fitness"
	"github.com/luxfi/moga/objective"
	"github.com/luxfi/moga/rng"
	"github.com/luxfi/moga/solution"
	"github.com/luxfi/moga/strategy"
)

// passthroughStrategy keeps the population fixed size and never grows
// the archive; enough to drive the state machine through several
// generations deterministically.
type passthroughStrategy struct {
	cmp comp.Solution
}

func (s *passthroughStrategy) Initialize(ctx *strategy.Context, pop solution.Population) (solution.Population, error) {
	return solution.Population{}, nil
}

func (s *passthroughStrategy) MatingSelection(ctx *strategy.Context) (solution.Population, error) {
	return ctx.Inhabitants, nil
}

func (s *passthroughStrategy) EnvironmentalSelection(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	return ctx.Inhabitants, nil
}

func (s *passthroughStrategy) UpdateArchive(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	return ctx.Archive, nil
}

func (s *passthroughStrategy) Update(ctx *strategy.Context) error { return nil }

func (s *passthroughStrategy) CreateSolutionComparator(components []comp.Component) comp.Solution {
	return s.cmp
}

func (s *passthroughStrategy) FitnessPrototype() objective.Prototype {
	return func() fitness.Fitness { return fitness.New(2) }
}

func twoObjectiveEvaluator() objective.Evaluator {
	objs := []*objective.Objective{
		objective.New(0, true, 0, 1, func(g any) (float64, error) { return g.([]float64)[0], nil }),
		objective.New(1, true, 0, 1, func(g any) (float64, error) { return g.([]float64)[1], nil }),
	}
	return objective.NewSequential(objs, func() fitness.Fitness { return fitness.New(2) })
}

func TestDriverRunsToMaxGenerations(t *testing.T) {
	cmp := comp.Plain(comp.NewPareto([]comp.Component{comp.NewComponent(true), comp.NewComponent(true)}))
	strat := &passthroughStrategy{cmp: cmp}
	ev := twoObjectiveEvaluator()

	provider := func() solution.Population {
		return solution.Population{
			solution.New([]float64{0.1, 0.2}),
			solution.New([]float64{0.5, 0.4}),
		}
	}
	variation := func(parents solution.Population) (solution.Population, error) {
		return parents.Clone(), nil
	}

	ctx := strategy.NewContext(rng.New(1), ev, cmp, 2, 3, 0)
	drv := New(Config{
		Strategy:  strat,
		Evaluator: ev,
		Provider:  provider,
		Variation: variation,
		Context:   ctx,
	})

	seen := 0
	drv.OnGeneration(func(gen int, nd solution.Population, archiveSize int) { seen++ })

	result, err := drv.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateFinished, drv.State())
	require.Equal(t, 3, result.Generations)
	require.Equal(t, 3, seen)
	require.Len(t, result.FinalPopulation, 2)
	require.True(t, result.Evaluations >= uint64(2))
}

func TestDriverRejectsEmptyProvider(t *testing.T) {
	cmp := comp.Plain(comp.NewPareto([]comp.Component{comp.NewComponent(true)}))
	strat := &passthroughStrategy{cmp: cmp}
	ev := twoObjectiveEvaluator()
	ctx := strategy.NewContext(rng.New(1), ev, cmp, 2, 3, 0)

	drv := New(Config{
		Strategy:  strat,
		Evaluator: ev,
		Provider:  func() solution.Population { return nil },
		Variation: func(p solution.Population) (solution.Population, error) { return p, nil },
		Context:   ctx,
	})

	_, err := drv.Run(context.Background())
	require.Error(t, err)
}

// acceptingStrategy marks every inhabitant acceptable as soon as Update
// runs once, so the driver's control() stops on the next generation
// check rather than running to MaxGenerations.
type acceptingStrategy struct {
	passthroughStrategy
}

func (s *acceptingStrategy) Update(ctx *strategy.Context) error {
	for _, sol := range ctx.Inhabitants {
		sol.Fitness.SetAcceptable(true)
	}
	return nil
}

func TestDriverStopsOnAcceptableFitness(t *testing.T) {
	cmp := comp.Plain(comp.NewPareto([]comp.Component{comp.NewComponent(true), comp.NewComponent(true)}))
	strat := &acceptingStrategy{passthroughStrategy{cmp: cmp}}
	ev := twoObjectiveEvaluator()

	provider := func() solution.Population {
		return solution.Population{solution.New([]float64{1, 1})}
	}
	variation := func(parents solution.Population) (solution.Population, error) {
		return parents.Clone(), nil
	}

	ctx := strategy.NewContext(rng.New(1), ev, cmp, 1, 100, 0)
	drv := New(Config{
		Strategy:  strat,
		Evaluator: ev,
		Provider:  provider,
		Variation: variation,
		Context:   ctx,
	})

	result, err := drv.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.Generations)
}
