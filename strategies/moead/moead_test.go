package moead

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/config"
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

func TestNewBuildsOneSlotPerWeightVector(t *testing.T) {
	strat, err := New(2, 10, 4, 2, config.WeightedSum)
	require.NoError(t, err)
	require.Equal(t, 11, strat.N()) // Das-Dennis M=2,h=10 -> 11 vectors
	require.Len(t, strat.neighbors, strat.N())
	for _, nb := range strat.neighbors {
		require.Len(t, nb, 4)
	}
}

func TestNewRejectsBadNeighborhood(t *testing.T) {
	_, err := New(2, 10, 0, 2, config.WeightedSum)
	require.Error(t, err)

	_, err = New(2, 10, 1000, 2, config.WeightedSum)
	require.Error(t, err)
}

func TestInitializeAssignsSlotsAndIdeal(t *testing.T) {
	strat, err := New(2, 4, 3, 1, config.Tchebycheff)
	require.NoError(t, err)
	components := []comparator.Component{comparator.NewComponent(false), comparator.NewComponent(false)}
	strat.CreateSolutionComparator(components)

	n := strat.N()
	points := make([][]float64, n)
	for i := range points {
		points[i] = []float64{float64(i), float64(n - i)}
	}
	pop := popFromValues(t, strat, points)
	ctx := &strategy.Context{RNG: rng.New(1), Inhabitants: pop, TargetSize: n}

	_, err = strat.Initialize(ctx, pop)
	require.NoError(t, err)
	require.Equal(t, 0.0, strat.ideal[0])
	require.Equal(t, 0.0, strat.ideal[1])
}

func TestEnvironmentalSelectionPreservesSlotCount(t *testing.T) {
	strat, err := New(2, 5, 3, 2, config.WeightedSum)
	require.NoError(t, err)
	components := []comparator.Component{comparator.NewComponent(false), comparator.NewComponent(false)}
	strat.CreateSolutionComparator(components)

	n := strat.N()
	points := make([][]float64, n)
	for i := range points {
		points[i] = []float64{float64(i) * 0.1, float64(n-i) * 0.1}
	}
	pop := popFromValues(t, strat, points)
	ctx := &strategy.Context{RNG: rng.New(1), Inhabitants: pop, TargetSize: n}
	_, err = strat.Initialize(ctx, pop)
	require.NoError(t, err)

	parents, err := strat.MatingSelection(ctx)
	require.NoError(t, err)
	require.Len(t, parents, 2*n)

	offspring := popFromValues(t, strat, [][]float64{{0.01, 0.01}, {0.02, 0.5}})
	survivors, err := strat.EnvironmentalSelection(ctx, offspring)
	require.NoError(t, err)
	require.Len(t, survivors, n)
}
