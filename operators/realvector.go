// Package operators implements the real-valued mutator/recombinator
// kinds the configuration selects by name: simulated binary crossover
// (SBX) for recombination and polynomial mutation for mutation, the two
// standard real-coded operators every strategy in this module assumes
// when its species kind is "real-vector". Grounded on a config-driven
// operator selection pattern (kind + per-operator probability)
// generalised from sampling parameters to genetic operators.
package operators

import (
	"math"

	"github.com/luxfi/moga/rng"
	"github.com/luxfi/moga/solution"
)

// Genome is the real-valued genotype every operator in this package
// consumes: a position vector bounded coordinate-wise by Min/Max.
type Genome struct {
	Values []float64
}

// CloneGenome deep-copies Values (solution.Cloner).
func (g *Genome) CloneGenome() any {
	return &Genome{Values: append([]float64(nil), g.Values...)}
}

// SBX implements simulated binary crossover over pairs of parents,
// applied with probability p per pair and distribution index eta (the
// teacher's shape for a config-selected operator with one probability
// and one shape parameter).
type SBX struct {
	Min, Max []float64
	P        float64
	Eta      float64
}

// Recombine pairs up consecutive parents and returns one child per
// parent (an odd parent count leaves the last parent unpaired and
// copied through unchanged).
func (s SBX) Recombine(src rng.Source, parents solution.Population) (solution.Population, error) {
	out := make(solution.Population, 0, len(parents))
	for i := 0; i+1 < len(parents); i += 2 {
		a := parents[i].Genome.(*Genome)
		b := parents[i+1].Genome.(*Genome)
		childA, childB := s.cross(src, a.Values, b.Values)
		out = append(out,
			solution.New(&Genome{Values: childA}),
			solution.New(&Genome{Values: childB}),
		)
	}
	if len(parents)%2 == 1 {
		last := parents[len(parents)-1].Genome.(*Genome)
		out = append(out, solution.New(&Genome{Values: append([]float64(nil), last.Values...)}))
	}
	return out, nil
}

func (s SBX) cross(src rng.Source, a, b []float64) ([]float64, []float64) {
	childA := make([]float64, len(a))
	childB := make([]float64, len(b))
	if src.Float64() >= s.P {
		copy(childA, a)
		copy(childB, b)
		return childA, childB
	}
	for i := range a {
		if src.Float64() > 0.5 || math.Abs(a[i]-b[i]) < 1e-14 {
			childA[i], childB[i] = a[i], b[i]
			continue
		}
		u := src.Float64()
		var beta float64
		if u <= 0.5 {
			beta = math.Pow(2*u, 1/(s.Eta+1))
		} else {
			beta = math.Pow(1/(2*(1-u)), 1/(s.Eta+1))
		}
		lo, hi := a[i], b[i]
		if lo > hi {
			lo, hi = hi, lo
		}
		c1 := 0.5 * ((1 + beta) * a[i] + (1 - beta) * b[i])
		c2 := 0.5 * ((1 - beta) * a[i] + (1 + beta) * b[i])
		childA[i] = clamp(c1, s.Min[i], s.Max[i])
		childB[i] = clamp(c2, s.Min[i], s.Max[i])
	}
	return childA, childB
}

// PolynomialMutation perturbs each gene independently with probability
// p using the polynomial distribution of index eta, clamped to
// [Min[i], Max[i]].
type PolynomialMutation struct {
	Min, Max []float64
	P        float64
	Eta      float64
}

// Mutate applies the mutation in place across every solution's genome.
func (m PolynomialMutation) Mutate(src rng.Source, pop solution.Population) error {
	for _, sol := range pop {
		g := sol.Genome.(*Genome)
		for i := range g.Values {
			if src.Float64() >= m.P {
				continue
			}
			x := g.Values[i]
			lo, hi := m.Min[i], m.Max[i]
			span := hi - lo
			if span <= 0 {
				continue
			}
			u := src.Float64()
			var delta float64
			if u < 0.5 {
				delta = math.Pow(2*u, 1/(m.Eta+1)) - 1
			} else {
				delta = 1 - math.Pow(2*(1-u), 1/(m.Eta+1))
			}
			g.Values[i] = clamp(x+delta*span, lo, hi)
		}
	}
	return nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
