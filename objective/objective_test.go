package objective

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/moga/errs"
	"github.com/luxfi/moga/fitness"
	"github.com/luxfi/moga/solution"
)

func vectorGenome(v []float64) []float64 { return v }

func sumObjective(idx int) *Objective {
	return New(idx, true, 0, 1, func(genome any) (float64, error) {
		v := genome.([]float64)
		sum := 0.0
		for _, x := range v {
			sum += x
		}
		return sum, nil
	})
}

func protoNew() fitness.Fitness { return fitness.New(2) }

func TestSequentialEvaluatePopulation(t *testing.T) {
	objs := []*Objective{sumObjective(0), sumObjective(1)}
	ev := NewSequential(objs, protoNew)

	pop := solution.Population{
		solution.New(vectorGenome([]float64{1, 2})),
		solution.New(vectorGenome([]float64{3, 4})),
	}

	err := ev.EvaluatePopulation(context.Background(), pop)
	require.NoError(t, err)
	require.Equal(t, uint64(2), ev.NumberOfEvaluations())

	v0, _ := pop[0].Fitness.ObjectiveValue(0)
	require.Equal(t, 3.0, v0)
	v1, _ := pop[1].Fitness.ObjectiveValue(0)
	require.Equal(t, 7.0, v1)
}

func TestParallelEvaluatePopulationPreservesOrder(t *testing.T) {
	objs := []*Objective{sumObjective(0), sumObjective(1)}
	ev := NewParallel(objs, protoNew)

	pop := make(solution.Population, 50)
	for i := range pop {
		pop[i] = solution.New(vectorGenome([]float64{float64(i), float64(i)}))
	}

	err := ev.EvaluatePopulation(context.Background(), pop)
	require.NoError(t, err)
	require.Equal(t, uint64(50), ev.NumberOfEvaluations())

	for i, s := range pop {
		v, _ := s.Fitness.ObjectiveValue(0)
		require.Equal(t, float64(2*i), v)
	}
}

func TestEvaluatorAggregatesFailures(t *testing.T) {
	failing := New(0, true, 0, 1, func(genome any) (float64, error) {
		return 0, errors.New("boom")
	})
	ev := NewSequential([]*Objective{failing}, func() fitness.Fitness { return fitness.New(1) })

	pop := solution.Population{solution.New(vectorGenome([]float64{1}))}
	err := ev.EvaluatePopulation(context.Background(), pop)
	require.Error(t, err)

	var failure *errs.EvaluatorFailure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, 0, failure.ObjectiveIndex)
	require.Equal(t, 0, failure.SolutionIndex)
}

func TestEvaluateRespectsContextCancellation(t *testing.T) {
	objs := []*Objective{sumObjective(0)}
	ev := NewSequential(objs, func() fitness.Fitness { return fitness.New(1) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ev.Evaluate(ctx, solution.New(vectorGenome([]float64{1})))
	require.ErrorIs(t, err, context.Canceled)
}
