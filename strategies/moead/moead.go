// Package moead implements a decomposition strategy: N uniform
// weight vectors each own one population slot, mating draws
// from a fixed-size neighbourhood, and a scalar decomposition function
// (weighted-sum, Tchebycheff, or PBI) replaces Pareto dominance as the
// acceptance test for replacing a neighbour's slot. Grounded on
// commands.UniformVectorGenerator for the weight set and a
// sampler-style neighbourhood construction.
package moead

import (
	"fmt"
	"math"
	"sort"

	"github.com/luxfi/moga/commands"
	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/config"
	"github.com/luxfi/moga/errs"
	"github.com/luxfi/moga/fitness"
	"github.com/luxfi/moga/objective"
	"github.com/luxfi/moga/rng"
	"github.com/luxfi/moga/solution"
	"github.com/luxfi/moga/strategy"
)

// Ext is the fitness extension MOEA/D stamps on every slot's solution:
// the index of the weight vector that owns it.
type Ext struct {
	slot int
}

// Strategy implements strategy.Strategy for MOEA/D.
type Strategy struct {
	m                int
	weights          [][]float64
	neighbors        [][]int
	neighborhoodSize int
	maxReplacements  int
	kind             config.ScalarizationKind

	paretoCmp comparator.Fitness
	ideal     []float64
}

// New returns a MOEA/D strategy with N = C(m+h-1,h) uniform weight
// vectors (commands.UniformVectorGenerator at resolution h), a
// neighbourhood of the given size, a per-offspring replacement cap, and
// a scalarisation kind.
func New(m, h, neighborhoodSize, maxReplacements int, kind config.ScalarizationKind) (*Strategy, error) {
	gen := commands.NewUniformVectorGenerator(m, h)
	if err := gen.Execute(); err != nil {
		return nil, err
	}
	weights := gen.Result()
	if neighborhoodSize < 1 || neighborhoodSize > len(weights) {
		return nil, fmt.Errorf("%w: neighbourhood size %d invalid for %d weight vectors", errs.ErrConfiguration, neighborhoodSize, len(weights))
	}
	if maxReplacements < 1 {
		return nil, fmt.Errorf("%w: max replacements must be >= 1", errs.ErrConfiguration)
	}

	s := &Strategy{
		m:                m,
		weights:          weights,
		neighborhoodSize: neighborhoodSize,
		maxReplacements:  maxReplacements,
		kind:             kind,
		ideal:            make([]float64, m),
	}
	for i := range s.ideal {
		s.ideal[i] = math.Inf(1)
	}
	s.neighbors = buildNeighborhoods(weights, neighborhoodSize)
	return s, nil
}

// N returns the number of weight vectors (and population slots).
func (s *Strategy) N() int { return len(s.weights) }

func buildNeighborhoods(weights [][]float64, k int) [][]int {
	n := len(weights)
	out := make([][]int, n)
	for i := 0; i < n; i++ {
		type distIdx struct {
			dist float64
			idx  int
		}
		dists := make([]distIdx, n)
		for j := 0; j < n; j++ {
			dists[j] = distIdx{euclidean(weights[i], weights[j]), j}
		}
		sort.Slice(dists, func(a, b int) bool { return dists[a].dist < dists[b].dist })
		neighbors := make([]int, k)
		for j := 0; j < k; j++ {
			neighbors[j] = dists[j].idx
		}
		out[i] = neighbors
	}
	return out
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func (s *Strategy) CreateSolutionComparator(components []comparator.Component) comparator.Solution {
	s.paretoCmp = comparator.NewPareto(components)
	return comparator.Plain(s.paretoCmp)
}

func (s *Strategy) FitnessPrototype() objective.Prototype {
	m := s.m
	return func() fitness.Fitness {
		f := fitness.New(m)
		f.SetExtension(&Ext{})
		return f
	}
}

// Initialize assigns slot i to population[i] (population must already
// have N members, one per weight vector) and seeds the ideal point.
func (s *Strategy) Initialize(ctx *strategy.Context, population solution.Population) (solution.Population, error) {
	if len(population) != len(s.weights) {
		return nil, fmt.Errorf("%w: MOEA/D needs exactly %d initial solutions, got %d", errs.ErrInvalidPopulation, len(s.weights), len(population))
	}
	for i, sol := range population {
		ext, ok := sol.Fitness.Extension().(*Ext)
		if !ok {
			return nil, fmt.Errorf("%w: solution missing moead extension", errs.ErrFitnessShape)
		}
		ext.slot = i
	}
	s.updateIdeal(population)
	return solution.Population{}, nil
}

// MatingSelection draws, for each slot, two parents from the slot's own
// neighbourhood, returning a flattened parent list of
// length 2*N in slot order.
func (s *Strategy) MatingSelection(ctx *strategy.Context) (solution.Population, error) {
	pop := ctx.Inhabitants
	parents := make(solution.Population, 0, 2*len(s.weights))
	for slot := range s.weights {
		neighborhood := s.neighbors[slot]
		a := neighborhood[rng.Choice(ctx.RNG, len(neighborhood))]
		b := neighborhood[rng.Choice(ctx.RNG, len(neighborhood))]
		parents = append(parents, pop[a], pop[b])
	}
	return parents, nil
}

// EnvironmentalSelection applies each offspring against every
// neighbourhood slot in its originating slot's neighbourhood, replacing
// a slot when the offspring's decomposition value is no worse, capped
// at s.maxReplacements replacements per offspring.
func (s *Strategy) EnvironmentalSelection(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	s.updateIdeal(append(append(solution.Population{}, ctx.Inhabitants...), offspring...))

	slots := make(solution.Population, len(ctx.Inhabitants))
	copy(slots, ctx.Inhabitants)

	for childIdx, child := range offspring {
		originSlot := childIdx / 2
		if originSlot >= len(s.weights) {
			originSlot = originSlot % len(s.weights)
		}
		replacements := 0
		for _, j := range s.neighbors[originSlot] {
			if replacements >= s.maxReplacements {
				break
			}
			childScore := s.decompose(child.Fitness.ObjectiveValues(), s.weights[j])
			slotScore := s.decompose(slots[j].Fitness.ObjectiveValues(), s.weights[j])
			if childScore <= slotScore {
				clone := child.Clone()
				if ext, ok := clone.Fitness.Extension().(*Ext); ok {
					ext.slot = j
				}
				slots[j] = clone
				replacements++
			}
		}
	}
	return slots, nil
}

// UpdateArchive maintains the non-dominated subset of the current slots
// as an external archive, for callers that want one even though MOEA/D
// itself selects purely through slot replacement.
func (s *Strategy) UpdateArchive(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	cmp := comparator.Plain(s.paretoCmp)
	out := make(solution.Population, 0, len(ctx.Inhabitants))
	for i, candidate := range ctx.Inhabitants {
		dominated := false
		for j, other := range ctx.Inhabitants {
			if i == j {
				continue
			}
			if cmp(other, candidate) > 0 {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, candidate)
		}
	}
	return out, nil
}

// Update recomputes the ideal point from the current inhabitants.
func (s *Strategy) Update(ctx *strategy.Context) error {
	s.updateIdeal(ctx.Inhabitants)
	return nil
}

func (s *Strategy) updateIdeal(pop solution.Population) {
	for _, sol := range pop {
		values := sol.Fitness.ObjectiveValues()
		for i, v := range values {
			if v < s.ideal[i] {
				s.ideal[i] = v
			}
		}
	}
}

// decompose evaluates the configured scalarisation of values against
// weight and the current ideal point; smaller is better for all three
// forms (decomposition assumes minimisation objectives).
func (s *Strategy) decompose(values, weight []float64) float64 {
	switch s.kind {
	case config.Tchebycheff:
		worst := math.Inf(-1)
		for i, v := range values {
			w := weight[i]
			if w < 1e-6 {
				w = 1e-6
			}
			t := w * math.Abs(v-s.ideal[i])
			if t > worst {
				worst = t
			}
		}
		return worst
	case config.PBI:
		const theta = 5.0
		var d1Num, wNormSq float64
		for i, v := range values {
			d1Num += (v - s.ideal[i]) * weight[i]
			wNormSq += weight[i] * weight[i]
		}
		if wNormSq == 0 {
			wNormSq = 1
		}
		wNorm := math.Sqrt(wNormSq)
		d1 := math.Abs(d1Num) / wNorm
		var d2Sq float64
		for i, v := range values {
			proj := s.ideal[i] + d1*weight[i]/wNorm
			diff := v - proj
			d2Sq += diff * diff
		}
		return d1 + theta*math.Sqrt(d2Sq)
	default: // weighted sum
		var sum float64
		for i, v := range values {
			sum += weight[i] * v
		}
		return sum
	}
}
