package epsmoea

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

func TestInitializeArchiveHasNoEpsilonDuplicates(t *testing.T) {
	strat := New([]float64{0, 0}, []float64{0.5, 0.5}, []bool{false, false})
	components := []comparator.Component{comparator.NewComponent(false), comparator.NewComponent(false)}
	strat.CreateSolutionComparator(components)

	pop := popFromValues(t, strat, [][]float64{
		{0.1, 0.9}, {0.15, 0.85}, {0.9, 0.1}, {5, 5},
	})
	archive, err := strat.Initialize(&strategy.Context{}, pop)
	require.NoError(t, err)
	require.LessOrEqual(t, len(archive), 3) // {5,5} is dominated, one of the near-duplicates drops
}

func TestEnvironmentalSelectionKeepsPopulationSize(t *testing.T) {
	strat := New([]float64{0, 0}, []float64{0.5, 0.5}, []bool{false, false})
	components := []comparator.Component{comparator.NewComponent(false), comparator.NewComponent(false)}
	strat.CreateSolutionComparator(components)

	pop := popFromValues(t, strat, [][]float64{{1, 1}, {2, 2}, {3, 3}})
	_, err := strat.Initialize(&strategy.Context{}, pop)
	require.NoError(t, err)

	offspring := popFromValues(t, strat, [][]float64{{0.5, 0.5}})
	ctx := &strategy.Context{RNG: rng.New(1), Inhabitants: pop}
	next, err := strat.EnvironmentalSelection(ctx, offspring)
	require.NoError(t, err)
	require.Len(t, next, len(pop))
}

// TestAdmitSameBoxTieKeepsCloserToIdealCorner covers two mutually
// non-dominating points sharing a cell: (0.1,0.4) and (0.2,0.3) both
// fall in the [0,0.5)x[0,0.5) cell, neither dominates the other under
// minimisation, but (0.2,0.3) sits closer to the cell's ideal corner
// (0,0). Whichever insertion order admit sees them in, the archive
// should converge on the one closer to that corner.
func TestAdmitSameBoxTieKeepsCloserToIdealCorner(t *testing.T) {
	farther := []float64{0.1, 0.4}
	closer := []float64{0.2, 0.3}

	for _, order := range [][][]float64{
		{farther, closer},
		{closer, farther},
	} {
		strat := New([]float64{0, 0}, []float64{0.5, 0.5}, []bool{false, false})
		components := []comparator.Component{comparator.NewComponent(false), comparator.NewComponent(false)}
		strat.CreateSolutionComparator(components)

		pop := popFromValues(t, strat, order)
		archive, err := strat.Initialize(&strategy.Context{}, pop)
		require.NoError(t, err)

		require.Len(t, archive, 1)
		require.Equal(t, closer, archive[0].Fitness.ObjectiveValues())
	}
}
