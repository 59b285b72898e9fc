package paes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/solution"
	"github.com/luxfi/moga/strategy"
)

func sol(strat *Strategy, v []float64) *solution.Solution {
	s := solution.New(nil)
	s.Fitness = strat.FitnessPrototype()()
	s.Fitness.SetObjectiveValues(v)
	return s
}

func TestInitializeSeedsArchiveWithIncumbent(t *testing.T) {
	strat := New(2, 4, 10)
	components := []comparator.Component{comparator.NewComponent(false), comparator.NewComponent(false)}
	strat.CreateSolutionComparator(components)

	incumbent := sol(strat, []float64{1, 1})
	archive, err := strat.Initialize(&strategy.Context{}, solution.Population{incumbent})
	require.NoError(t, err)
	require.Len(t, archive, 1)
}

func TestEnvironmentalSelectionAcceptsDominatingMutant(t *testing.T) {
	strat := New(2, 4, 10)
	components := []comparator.Component{comparator.NewComponent(false), comparator.NewComponent(false)}
	strat.CreateSolutionComparator(components)

	incumbent := sol(strat, []float64{2, 2})
	mutant := sol(strat, []float64{1, 1})
	ctx := &strategy.Context{Inhabitants: solution.Population{incumbent}, Archive: solution.Population{incumbent}}

	next, err := strat.EnvironmentalSelection(ctx, solution.Population{mutant})
	require.NoError(t, err)
	require.Same(t, mutant, next[0])
}

func TestUpdateArchiveRespectsCapacity(t *testing.T) {
	strat := New(2, 2, 3)
	components := []comparator.Component{comparator.NewComponent(false), comparator.NewComponent(false)}
	strat.CreateSolutionComparator(components)

	archive := solution.Population{}
	ctx := &strategy.Context{Archive: archive}
	for i := 0; i < 6; i++ {
		candidate := sol(strat, []float64{float64(i), float64(5 - i)})
		next, err := strat.UpdateArchive(ctx, solution.Population{candidate})
		require.NoError(t, err)
		require.LessOrEqual(t, len(next), strat.archiveCap)
		ctx.Archive = next
	}
}
