package commands

import (
	"fmt"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/luxfi/moga/errs"
)

// DasDennisVectorGenerator emits the M-tuples (k1,...,kM), ki in N0,
// sum ki = p, normalised by p, used to seed NSGA-III/RVEA reference
// directions. When p2 >= 0 the two-layer form is used:
// an outer boundary layer at resolution p1 concatenated with an inner
// layer at resolution p2 whose vectors are shrunk toward the simplex
// centroid (Deb & Jain's two-layer construction for many-objective
// problems where a single layer clusters points along the boundary).
type DasDennisVectorGenerator struct {
	m, p1, p2 int

	result [][]float64
}

// NewDasDennisVectorGenerator seeds a single-layer generator at
// resolution p1. Pass p2 to WithInnerLayer to switch to the two-layer
// form.
func NewDasDennisVectorGenerator(m, p1 int) *DasDennisVectorGenerator {
	return &DasDennisVectorGenerator{m: m, p1: p1, p2: -1}
}

// WithInnerLayer enables the two-layer form at inner resolution p2.
func (c *DasDennisVectorGenerator) WithInnerLayer(p2 int) *DasDennisVectorGenerator {
	c.p2 = p2
	return c
}

// Execute generates the vectors. Result returns them, each length M and
// summing to 1 up to floating-point error, afterward.
func (c *DasDennisVectorGenerator) Execute() error {
	if c.m <= 0 || c.p1 < 0 {
		return fmt.Errorf("%w: Das-Dennis requires M>0, p>=0", errs.ErrConfiguration)
	}
	outer := compositions(c.m, c.p1)
	vectors := make([][]float64, 0, len(outer))
	for _, comp := range outer {
		v := make([]float64, c.m)
		for i, k := range comp {
			v[i] = float64(k) / float64(c.p1)
		}
		vectors = append(vectors, v)
	}

	if c.p2 >= 0 {
		inner := compositions(c.m, c.p2)
		centroid := 1.0 / float64(c.m)
		for _, comp := range inner {
			v := make([]float64, c.m)
			for i, k := range comp {
				// shrink the inner layer halfway toward the simplex
				// centroid, per Deb & Jain's two-layer construction.
				v[i] = (1-0.5)*(float64(k)/float64(c.p2)) + 0.5*centroid
			}
			vectors = append(vectors, v)
		}
	}

	c.result = vectors
	return nil
}

// Result returns the generated vectors.
func (c *DasDennisVectorGenerator) Result() [][]float64 { return c.result }

// ExpectedSize returns C(M+p-1, p), the combinatorial size of a
// single-layer Das-Dennis generation at resolution p, using gonum's
// binomial coefficient so the count agrees with combin's own rounding.
func ExpectedSize(m, p int) int {
	return combin.Binomial(m+p-1, p)
}

// compositions enumerates every M-tuple of non-negative integers summing
// to total, in the conventional Das-Dennis recursive order.
func compositions(m, total int) [][]int {
	if m == 1 {
		return [][]int{{total}}
	}
	var out [][]int
	for k := 0; k <= total; k++ {
		for _, rest := range compositions(m-1, total-k) {
			out = append(out, append([]int{k}, rest...))
		}
	}
	return out
}

// UniformVectorGenerator emits the same shape as a single-layer
// Das-Dennis generation, parameterised by resolution H instead of p;
// size is C(M+H-1, H).
type UniformVectorGenerator struct {
	m, h int

	result [][]float64
}

// NewUniformVectorGenerator seeds the command.
func NewUniformVectorGenerator(m, h int) *UniformVectorGenerator {
	return &UniformVectorGenerator{m: m, h: h}
}

// Execute generates the vectors. Result returns them afterward.
func (c *UniformVectorGenerator) Execute() error {
	gen := NewDasDennisVectorGenerator(c.m, c.h)
	if err := gen.Execute(); err != nil {
		return err
	}
	c.result = gen.Result()
	return nil
}

// Result returns the generated vectors.
func (c *UniformVectorGenerator) Result() [][]float64 { return c.result }
