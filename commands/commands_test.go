package commands

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/fitness"
	"github.com/luxfi/moga/solution"
)

func popFromValues(points [][]float64) solution.Population {
	out := make(solution.Population, len(points))
	for i, p := range points {
		s := solution.New(nil)
		s.Fitness = fitness.FromValues(p)
		out[i] = s
	}
	return out
}

func maxComponents(m int) []comparator.Component {
	out := make([]comparator.Component, m)
	for i := range out {
		out[i] = comparator.NewComponent(true)
	}
	return out
}

// E1: NonDominatedExtractor on a hand-crafted 2-objective population.
func TestE1NonDominatedExtraction(t *testing.T) {
	pop := popFromValues([][]float64{
		{5, 5}, {1, 1}, {3, 4}, {2, 1}, {1, 2}, {4, 3}, {0, 0},
	})
	cmp := comparator.Plain(comparator.NewPareto(maxComponents(2)))

	cmd := NewNonDominatedExtractor(pop, cmp)
	require.NoError(t, cmd.Execute())

	require.Len(t, cmd.Result(), 1)
	v := cmd.Result()[0].Fitness.ObjectiveValues()
	require.Equal(t, []float64{5, 5}, v)
}

// E2: front splitting on a 9-point population.
func TestE2FrontSplitting(t *testing.T) {
	pop := popFromValues([][]float64{
		{5, 5}, {4, 6}, {6, 4}, {1, 1}, {3, 4}, {2, 1}, {1, 2}, {4, 3}, {0, 0},
	})
	cmp := comparator.Plain(comparator.NewPareto(maxComponents(2)))

	splitter := NewPopulationSplitter(pop, cmp, nil)
	require.NoError(t, splitter.Execute())

	fronts := splitter.Result()
	sizes := make([]int, len(fronts))
	for i, f := range fronts {
		sizes[i] = len(f)
	}
	require.Equal(t, []int{3, 2, 2, 1, 1}, sizes)

	extractor := NewNonDominatedExtractor(pop, cmp)
	require.NoError(t, extractor.Execute())
	require.ElementsMatch(t, extractor.Result(), fronts[0])
}

// E3: Das-Dennis vector counts.
func TestE3DasDennisSizes(t *testing.T) {
	cases := []struct {
		m, p1, p2 int
		want      int
	}{
		{3, 12, -1, 91},
		{5, 6, -1, 210},
		{3, 2, 1, 9},
		{8, 3, 2, 156},
	}
	for _, c := range cases {
		gen := NewDasDennisVectorGenerator(c.m, c.p1)
		if c.p2 >= 0 {
			gen.WithInnerLayer(c.p2)
		}
		require.NoError(t, gen.Execute())
		require.Len(t, gen.Result(), c.want)

		for _, v := range gen.Result() {
			require.Len(t, v, c.m)
		}
	}
}

func TestDasDennisVectorsSumToOne(t *testing.T) {
	gen := NewDasDennisVectorGenerator(3, 12)
	require.NoError(t, gen.Execute())
	for _, v := range gen.Result() {
		sum := 0.0
		for _, x := range v {
			sum += x
		}
		require.InDelta(t, 1.0, sum, 1e-9)
	}
}

// E4: uniform vector counts.
func TestE4UniformVectorCounts(t *testing.T) {
	cases := []struct{ m, h, want int }{
		{2, 149, 150},
		{3, 25, 351},
		{4, 12, 455},
	}
	for _, c := range cases {
		gen := NewUniformVectorGenerator(c.m, c.h)
		require.NoError(t, gen.Execute())
		require.Len(t, gen.Result(), c.want)
		require.Equal(t, c.want, ExpectedSize(c.m, c.h))
	}
}

// E5: crowding distance on a four-point front with duplicates.
func TestE5CrowdingDistance(t *testing.T) {
	pop := popFromValues([][]float64{
		{0, 1}, {0.5, 0.5}, {1, 0}, {0.5, 0.5},
	})
	calc := NewCrowdingDistanceCalculator(pop, []float64{0, 0}, []float64{1, 1})
	require.NoError(t, calc.Execute())

	result := calc.Result()
	require.True(t, math.IsInf(result[0], 1))
	require.True(t, math.IsInf(result[2], 1))
	require.InDelta(t, 1.0, result[1], 1e-9)
	require.InDelta(t, 1.0, result[3], 1e-9)
}

func TestScalingRoundTrips(t *testing.T) {
	min := []float64{0, -10}
	max := []float64{10, 10}
	pop := popFromValues([][]float64{{3, 4}, {7, -2}})

	original := make([][]float64, len(pop))
	for i, s := range pop {
		original[i] = s.Fitness.ObjectiveValues()
	}

	scaler := NewObjectiveScaler(pop, min, max)
	require.NoError(t, scaler.Execute())

	for i, s := range pop {
		scaled := s.Fitness.ObjectiveValues()
		for j, v := range scaled {
			unscaled := v*(max[j]-min[j]) + min[j]
			require.InDelta(t, original[i][j], unscaled, 1e-9)
		}
	}
}

func TestObjectiveInverterNegates(t *testing.T) {
	pop := popFromValues([][]float64{{1, -2}, {3, 4}})
	inverter := NewObjectiveInverter(pop)
	require.NoError(t, inverter.Execute())
	require.Equal(t, []float64{-1, 2}, pop[0].Fitness.ObjectiveValues())
	require.Equal(t, []float64{-3, -4}, pop[1].Fitness.ObjectiveValues())
}

func TestHypercubePartitionCoordinates(t *testing.T) {
	part, err := NewFixedCountPartition([]float64{0, 0}, []float64{10, 10}, 5)
	require.NoError(t, err)

	c1, err := part.Coordinates([]float64{0, 0})
	require.NoError(t, err)
	require.Equal(t, []int{0, 0}, c1)

	c2, err := part.Coordinates([]float64{9.9, 2.1})
	require.NoError(t, err)
	require.Equal(t, []int{4, 1}, c2)
}
