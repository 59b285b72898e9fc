package nsga2

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/rng"
	"github.com/luxfi/moga/solution"
	"github.com/luxfi/moga/strategy"
)

func popFromValues(t *testing.T, strat *Strategy, points [][]float64) solution.Population {
	t.Helper()
	proto := strat.FitnessPrototype()
	out := make(solution.Population, len(points))
	for i, p := range points {
		s := solution.New(nil)
		s.Fitness = proto()
		s.Fitness.SetObjectiveValues(p)
		out[i] = s
	}
	return out
}

func TestInitializeArchiveIsFrontZero(t *testing.T) {
	strat := New([]float64{0, 0}, []float64{5, 5})
	components := []comparator.Component{comparator.NewComponent(true), comparator.NewComponent(true)}
	strat.CreateSolutionComparator(components)

	pop := popFromValues(t, strat, [][]float64{{5, 5}, {1, 1}, {3, 4}, {2, 1}, {1, 2}, {4, 3}, {0, 0}})

	ctx := &strategy.Context{RNG: rng.New(1), Inhabitants: pop, TargetSize: len(pop)}
	archive, err := strat.Initialize(ctx, pop)
	require.NoError(t, err)
	require.Len(t, archive, 1)
	require.Equal(t, []float64{5, 5}, archive[0].Fitness.ObjectiveValues())
}

func TestEnvironmentalSelectionRespectsTargetSize(t *testing.T) {
	strat := New([]float64{0, 0}, []float64{6, 6})
	components := []comparator.Component{comparator.NewComponent(true), comparator.NewComponent(true)}
	strat.CreateSolutionComparator(components)

	pop := popFromValues(t, strat, [][]float64{
		{5, 5}, {4, 6}, {6, 4}, {1, 1}, {3, 4}, {2, 1}, {1, 2}, {4, 3}, {0, 0},
	})
	target := 4
	ctx := &strategy.Context{RNG: rng.New(1), Inhabitants: pop[:target], TargetSize: target}

	_, err := strat.Initialize(ctx, pop)
	require.NoError(t, err)

	survivors, err := strat.EnvironmentalSelection(ctx, pop[target:])
	require.NoError(t, err)
	require.Len(t, survivors, target)
}

func TestMatingSelectionReturnsSameSize(t *testing.T) {
	strat := New([]float64{0, 0}, []float64{5, 5})
	components := []comparator.Component{comparator.NewComponent(true), comparator.NewComponent(true)}
	strat.CreateSolutionComparator(components)

	pop := popFromValues(t, strat, [][]float64{{5, 5}, {1, 1}, {3, 4}, {2, 1}})
	ctx := &strategy.Context{RNG: rng.New(1), Inhabitants: pop, TargetSize: len(pop)}
	_, err := strat.Initialize(ctx, pop)
	require.NoError(t, err)

	parents, err := strat.MatingSelection(ctx)
	require.NoError(t, err)
	require.Len(t, parents, len(pop))
}
