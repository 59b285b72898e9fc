package nsga3

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/rng"
	"github.com/luxfi/moga/solution"
	"github.com/luxfi/moga/strategy"
)

func TestEnvironmentalSelectionSizeIsExact(t *testing.T) {
	strat := New(3, 4)
	components := []comparator.Component{
		comparator.NewComponent(false), comparator.NewComponent(false), comparator.NewComponent(false),
	}
	strat.CreateSolutionComparator(components)

	proto := strat.FitnessPrototype()
	pop := make(solution.Population, 20)
	for i := range pop {
		s := solution.New(nil)
		s.Fitness = proto()
		s.Fitness.SetObjectiveValues([]float64{
			float64(i%5) * 0.2, float64((i+1)%5) * 0.2, float64((i+2)%5) * 0.2,
		})
		pop[i] = s
	}

	target := 10
	ctx := &strategy.Context{RNG: rng.New(1), Inhabitants: pop[:target], TargetSize: target}
	_, err := strat.Initialize(ctx, pop)
	require.NoError(t, err)

	survivors, err := strat.EnvironmentalSelection(ctx, pop[target:])
	require.NoError(t, err)
	require.Len(t, survivors, target)
}
