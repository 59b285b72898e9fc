package spea2

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

func TestEnvironmentalSelectionIsExactSize(t *testing.T) {
	strat := New(2)
	components := []comparator.Component{comparator.NewComponent(false), comparator.NewComponent(false)}
	strat.CreateSolutionComparator(components)

	pop := popFromValues(t, strat, [][]float64{
		{5, 5}, {1, 1}, {3, 4}, {2, 1}, {1, 2}, {4, 3}, {0, 0}, {2, 2},
	})
	target := 4
	ctx := &strategy.Context{RNG: rng.New(1), Inhabitants: pop[:target], Archive: solution.Population{}, TargetSize: target}

	_, err := strat.Initialize(ctx, pop)
	require.NoError(t, err)

	survivors, err := strat.EnvironmentalSelection(ctx, pop[target:])
	require.NoError(t, err)
	require.Len(t, survivors, target)

	archive, err := strat.UpdateArchive(ctx, pop[target:])
	require.NoError(t, err)
	require.Len(t, archive, target)
}

func TestNonDominatedHaveCombinedBelowOne(t *testing.T) {
	strat := New(2)
	components := []comparator.Component{comparator.NewComponent(false), comparator.NewComponent(false)}
	strat.CreateSolutionComparator(components)

	pop := popFromValues(t, strat, [][]float64{{0, 0}, {1, 1}, {2, 2}})
	require.NoError(t, strat.assignFitness(pop))
	require.Less(t, extOf(pop[0]).combined, 1.0)
}
