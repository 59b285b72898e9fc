package comparator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/moga/fitness"
	"github.com/luxfi/moga/solution"
)

func maximizingComponents(m int) []Component {
	out := make([]Component, m)
	for i := range out {
		out[i] = NewComponent(true)
	}
	return out
}

func TestParetoReciprocity(t *testing.T) {
	pareto := NewPareto(maximizingComponents(2))

	cases := [][2][]float64{
		{{1, 2}, {2, 1}},
		{{1, 1}, {1, 1}},
		{{3, 3}, {1, 1}},
		{{0, 5}, {0, 5}},
	}
	for _, c := range cases {
		a := fitness.FromValues(c[0])
		b := fitness.FromValues(c[1])
		ab, err := pareto.Compare(a, b)
		require.NoError(t, err)
		ba, err := pareto.Compare(b, a)
		require.NoError(t, err)

		sum := ab + ba
		require.True(t, sum == -2 || sum == 0 || sum == 2)
		if sum == 0 && ab != 0 {
			t.Fatalf("non-antisymmetric result for %v vs %v: ab=%d ba=%d", c[0], c[1], ab, ba)
		}
		if a.Equal(b) {
			require.Zero(t, ab)
		}
	}
}

func TestParetoNonDominatedPairIsZeroBothWays(t *testing.T) {
	pareto := NewPareto(maximizingComponents(2))
	a := fitness.FromValues([]float64{1, 2})
	b := fitness.FromValues([]float64{2, 1})

	ab, err := pareto.Compare(a, b)
	require.NoError(t, err)
	ba, err := pareto.Compare(b, a)
	require.NoError(t, err)
	require.Zero(t, ab)
	require.Zero(t, ba)
}

func TestParetoStrictDominance(t *testing.T) {
	pareto := NewPareto(maximizingComponents(2))
	better := fitness.FromValues([]float64{3, 3})
	worse := fitness.FromValues([]float64{1, 1})

	s, err := pareto.Compare(better, worse)
	require.NoError(t, err)
	require.Equal(t, 1, s)

	s, err = pareto.Compare(worse, better)
	require.NoError(t, err)
	require.Equal(t, -1, s)
}

func TestLexicographic(t *testing.T) {
	lex := NewLexicographic(maximizingComponents(2))
	a := fitness.FromValues([]float64{1, 9})
	b := fitness.FromValues([]float64{1, 2})
	s, err := lex.Compare(a, b)
	require.NoError(t, err)
	require.Equal(t, 1, s)

	c := fitness.FromValues([]float64{2, 0})
	s, err = lex.Compare(a, c)
	require.NoError(t, err)
	require.Equal(t, -1, s)
}

func TestScalarValue(t *testing.T) {
	sv := NewScalarValue(false)
	a := fitness.FromValues([]float64{0})
	a.SetValue(10)
	b := fitness.FromValues([]float64{0})
	b.SetValue(5)

	s, err := sv.Compare(a, b)
	require.NoError(t, err)
	require.Equal(t, 1, s)

	inverted := NewScalarValue(true)
	s, err = inverted.Compare(a, b)
	require.NoError(t, err)
	require.Equal(t, -1, s)
}

// The plain Constrained variant treats any two infeasibles as
// equivalent regardless of degree; NSGA2Constrained (below) is the one
// that prefers the smaller degree.
func TestConstrainedComparator(t *testing.T) {
	pareto := Plain(NewPareto(maximizingComponents(2)))
	cmp := Constrained(NewPareto(maximizingComponents(2)))

	feasible := solution.New(nil)
	feasible.Fitness = fitness.FromValues([]float64{0, 0})

	infeasible1 := solution.New(nil)
	infeasible1.Fitness = fitness.FromValues([]float64{5, 5})
	infeasible1.Fitness.SetInfeasible(true)
	infeasible1.Fitness.SetInfeasibilityDegree(1)

	infeasible2 := solution.New(nil)
	infeasible2.Fitness = fitness.FromValues([]float64{5, 5})
	infeasible2.Fitness.SetInfeasible(true)
	infeasible2.Fitness.SetInfeasibilityDegree(2)

	require.Equal(t, 1, cmp(feasible, infeasible1))
	require.Equal(t, -1, cmp(infeasible1, feasible))

	// Plain Constrained does not look at InfeasibilityDegree: two
	// infeasibles of equal degree, or of differing degree, both compare
	// as equivalent.
	require.Equal(t, 0, cmp(infeasible1, infeasible2))
	require.Equal(t, 0, cmp(infeasible2, infeasible1))

	equalDegree := solution.New(nil)
	equalDegree.Fitness = fitness.FromValues([]float64{5, 5})
	equalDegree.Fitness.SetInfeasible(true)
	equalDegree.Fitness.SetInfeasibilityDegree(1)
	require.Equal(t, 0, cmp(infeasible1, equalDegree))

	// sanity: without the feasibility wrapper, raw dominance would say
	// infeasible1 (5,5) beats feasible (0,0) under maximisation.
	raw := pareto(infeasible1, feasible)
	require.Equal(t, 1, raw)
}

type rankedExt struct {
	rank    int
	density float64
}

func (r *rankedExt) Rank() int        { return r.rank }
func (r *rankedExt) Density() float64 { return r.density }

func TestNSGA2Constrained(t *testing.T) {
	extractor := func(f fitness.Fitness) (RankedFitness, bool) {
		r, ok := f.Extension().(*rankedExt)
		return r, ok
	}
	cmp := NSGA2Constrained(extractor)

	rank0Dense := solution.New(nil)
	rank0Dense.Fitness = fitness.FromValues([]float64{1, 1})
	rank0Dense.Fitness.SetExtension(&rankedExt{rank: 0, density: 1.5})

	rank0Sparse := solution.New(nil)
	rank0Sparse.Fitness = fitness.FromValues([]float64{2, 0})
	rank0Sparse.Fitness.SetExtension(&rankedExt{rank: 0, density: 3.0})

	rank1 := solution.New(nil)
	rank1.Fitness = fitness.FromValues([]float64{0, 0})
	rank1.Fitness.SetExtension(&rankedExt{rank: 1, density: 100})

	require.Equal(t, 1, cmp(rank0Sparse, rank0Dense))
	require.Equal(t, 1, cmp(rank0Dense, rank1))

	// Unlike plain Constrained, NSGA2Constrained prefers the smaller
	// InfeasibilityDegree among two infeasibles.
	lowDegree := solution.New(nil)
	lowDegree.Fitness = fitness.FromValues([]float64{5, 5})
	lowDegree.Fitness.SetInfeasible(true)
	lowDegree.Fitness.SetInfeasibilityDegree(1)
	lowDegree.Fitness.SetExtension(&rankedExt{rank: 0, density: 1})

	highDegree := solution.New(nil)
	highDegree.Fitness = fitness.FromValues([]float64{5, 5})
	highDegree.Fitness.SetInfeasible(true)
	highDegree.Fitness.SetInfeasibilityDegree(2)
	highDegree.Fitness.SetExtension(&rankedExt{rank: 0, density: 1})

	require.Equal(t, 1, cmp(lowDegree, highDegree))
	require.Equal(t, -1, cmp(highDegree, lowDegree))
}
