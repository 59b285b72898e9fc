package rvea

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

func TestVectorsAreNormalized(t *testing.T) {
	strat := New(3, 4, 2.0, 0.1)
	for _, v := range strat.vectors {
		var norm float64
		for _, x := range v {
			norm += x * x
		}
		require.InDelta(t, 1.0, norm, 1e-6)
	}
}

func TestEnvironmentalSelectionIsExactSize(t *testing.T) {
	strat := New(2, 6, 2.0, 0.1)
	components := []comparator.Component{comparator.NewComponent(false), comparator.NewComponent(false)}
	strat.CreateSolutionComparator(components)

	points := make([][]float64, 20)
	for i := range points {
		points[i] = []float64{float64(i%7) * 0.15, float64((i+3)%7) * 0.15}
	}
	pop := popFromValues(t, strat, points)
	target := 7
	ctx := &strategy.Context{RNG: rng.New(1), Inhabitants: pop[:target], TargetSize: target, MaxGenerations: 50, Generation: 1}
	_, err := strat.Initialize(ctx, pop)
	require.NoError(t, err)

	survivors, err := strat.EnvironmentalSelection(ctx, pop[target:])
	require.NoError(t, err)
	require.Len(t, survivors, target)
}

func TestAdaptationRescalesFromV0(t *testing.T) {
	strat := New(2, 6, 2.0, 0.1)
	before := strat.vectors[1][0]
	strat.min = []float64{0, 0}
	strat.max = []float64{10, 1}
	strat.maybeAdapt(5, 50) // period = floor(0.1*50) = 5, 5%5==0
	require.NotEqual(t, before, strat.vectors[1][0])
}
