package operators

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/moga/rng"
	"github.com/luxfi/moga/solution"
)

func TestSBXStaysWithinBounds(t *testing.T) {
	min := []float64{0, 0, 0}
	max := []float64{1, 1, 1}
	sbx := SBX{Min: min, Max: max, P: 1.0, Eta: 15}
	src := rng.New(7)

	parents := solution.Population{
		solution.New(&Genome{Values: []float64{0.1, 0.2, 0.3}}),
		solution.New(&Genome{Values: []float64{0.9, 0.8, 0.7}}),
	}
	children, err := sbx.Recombine(src, parents)
	require.NoError(t, err)
	require.Len(t, children, 2)
	for _, c := range children {
		g := c.Genome.(*Genome)
		for i, v := range g.Values {
			require.GreaterOrEqual(t, v, min[i])
			require.LessOrEqual(t, v, max[i])
		}
	}
}

func TestSBXOddParentCountCopiesLastThrough(t *testing.T) {
	sbx := SBX{Min: []float64{0}, Max: []float64{1}, P: 1.0, Eta: 15}
	src := rng.New(3)
	parents := solution.Population{
		solution.New(&Genome{Values: []float64{0.1}}),
		solution.New(&Genome{Values: []float64{0.9}}),
		solution.New(&Genome{Values: []float64{0.5}}),
	}
	children, err := sbx.Recombine(src, parents)
	require.NoError(t, err)
	require.Len(t, children, 3)
	require.Equal(t, 0.5, children[2].Genome.(*Genome).Values[0])
}

func TestPolynomialMutationStaysWithinBounds(t *testing.T) {
	min := []float64{0, 0}
	max := []float64{1, 1}
	mut := PolynomialMutation{Min: min, Max: max, P: 1.0, Eta: 20}
	src := rng.New(11)
	pop := solution.Population{
		solution.New(&Genome{Values: []float64{0.5, 0.5}}),
	}
	require.NoError(t, mut.Mutate(src, pop))
	g := pop[0].Genome.(*Genome)
	for i, v := range g.Values {
		require.GreaterOrEqual(t, v, min[i])
		require.LessOrEqual(t, v, max[i])
	}
}
