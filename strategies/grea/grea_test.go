package grea

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
	strat := New(2, 4, []bool{false, false})
	components := []comparator.Component{comparator.NewComponent(false), comparator.NewComponent(false)}
	strat.CreateSolutionComparator(components)

	points := make([][]float64, 16)
	for i := range points {
		points[i] = []float64{float64(i%8) * 0.12, float64((i+4)%8) * 0.12}
	}
	pop := popFromValues(t, strat, points)
	target := 6
	ctx := &strategy.Context{RNG: rng.New(1), Inhabitants: pop[:target], TargetSize: target}
	_, err := strat.Initialize(ctx, pop)
	require.NoError(t, err)

	survivors, err := strat.EnvironmentalSelection(ctx, pop[target:])
	require.NoError(t, err)
	require.Len(t, survivors, target)
}

func TestGridRankAssignsNonNegativeGR(t *testing.T) {
	strat := New(2, 5, []bool{false, false})
	components := []comparator.Component{comparator.NewComponent(false), comparator.NewComponent(false)}
	strat.CreateSolutionComparator(components)

	pop := popFromValues(t, strat, [][]float64{{0, 0}, {1, 1}, {2, 2}})
	require.NoError(t, strat.gridRank(pop))
	for _, sol := range pop {
		require.GreaterOrEqual(t, extOf(sol).gr, 0)
	}
}
