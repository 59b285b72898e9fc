// Package problems provides the built-in real-valued test problems the
// CLI wires up when an evaluator.kind configuration key names one:
// ZDT1 (two objectives, convex Pareto front) and a generalised DTLZ2
// (an arbitrary objective count, spherical Pareto front), the two
// standard benchmarks used to exercise a multi-objective framework
// end to end.
package problems

import (
	"math"

	"github.com/luxfi/moga/operators"
)

// ZDT1Dimensions is the conventional decision-space size for ZDT1.
const ZDT1Dimensions = 30

// ZDT1 returns the two objective functions of the ZDT1 benchmark over
// an n-dimensional real vector in [0,1]^n.
func ZDT1(n int) []func(genome any) (float64, error) {
	f1 := func(genome any) (float64, error) {
		x := genome.(*operators.Genome).Values
		return x[0], nil
	}
	f2 := func(genome any) (float64, error) {
		x := genome.(*operators.Genome).Values
		g := 1.0
		for i := 1; i < len(x); i++ {
			g += 9 * x[i] / float64(len(x)-1)
		}
		return g * (1 - math.Sqrt(x[0]/g)), nil
	}
	return []func(genome any) (float64, error){f1, f2}
}

// DTLZ2Dimensions returns the conventional decision-space size for
// DTLZ2 with m objectives: m-1 position variables plus a 10-variable
// distance tail.
func DTLZ2Dimensions(m int) int { return m - 1 + 10 }

// DTLZ2 returns m objective functions over an n-dimensional real vector
// in [0,1]^n, the generalised many-objective spherical-front benchmark.
func DTLZ2(m int) []func(genome any) (float64, error) {
	out := make([]func(genome any) (float64, error), m)
	for i := 0; i < m; i++ {
		idx := i
		out[idx] = func(genome any) (float64, error) {
			x := genome.(*operators.Genome).Values
			tail := x[m-1:]
			g := 0.0
			for _, v := range tail {
				g += (v - 0.5) * (v - 0.5)
			}
			f := 1 + g
			for j := 0; j < m-1-idx; j++ {
				f *= math.Cos(x[j] * math.Pi / 2)
			}
			if idx > 0 {
				f *= math.Sin(x[m-1-idx] * math.Pi / 2)
			}
			return f, nil
		}
	}
	return out
}
