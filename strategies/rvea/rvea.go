// Package rvea implements a reference-vector strategy: a fixed
// reference-vector set V (retaining the originally generated
// V0) partitions translated objective space by angle, and survival
// within a partition is decided by the angle-penalised distance (APD)
// metric rather than crowding or niche counts. Every fr*maxGenerations
// generations the vectors are re-adapted to the observed objective
// range. Grounded on strategies/nsga3 for the Das-Dennis vector
// generation, ideal-point translation, and extension-cloning pattern.
package rvea

import (
	"fmt"
	"math"

	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/commands"
	"github.com/luxfi/moga/errs"
	"github.com/luxfi/moga/fitness"
	"github.com/luxfi/moga/objective"
	"github.com/luxfi/moga/rng"
	"github.com/luxfi/moga/solution"
	"github.com/luxfi/moga/strategy"
)

// Ext is the fitness extension RVEA stamps on every solution: its
// translated objective vector and the APD score against its assigned
// reference vector (smaller is better, recomputed every selection).
type Ext struct {
	translated []float64
	apd        float64
}

// Strategy implements strategy.Strategy for RVEA.
type Strategy struct {
	m       int
	v0      [][]float64 // the originally generated vectors, retained for re-adaptation
	vectors [][]float64 // the current, possibly re-adapted vectors
	alpha   float64     // APD rate-of-change sharpness
	fr      float64     // adaptation frequency as a fraction of maxGenerations

	paretoCmp comparator.Fitness

	ideal []float64
	min   []float64
	max   []float64
}

// New returns an RVEA strategy over m objectives with reference vectors
// from a single-layer Das-Dennis generation at resolution p, APD
// sharpness alpha, and re-adaptation frequency fr (as a fraction of
// maxGenerations).
func New(m, p int, alpha, fr float64) *Strategy {
	gen := commands.NewDasDennisVectorGenerator(m, p)
	if err := gen.Execute(); err != nil {
		panic(err)
	}
	vectors := gen.Result()
	normalizeAll(vectors)
	v0 := make([][]float64, len(vectors))
	for i, v := range vectors {
		v0[i] = append([]float64(nil), v...)
	}
	return &Strategy{m: m, v0: v0, vectors: vectors, alpha: alpha, fr: fr}
}

func normalizeAll(vectors [][]float64) {
	for _, v := range vectors {
		var norm float64
		for _, x := range v {
			norm += x * x
		}
		norm = math.Sqrt(norm)
		if norm < 1e-12 {
			continue
		}
		for i := range v {
			v[i] /= norm
		}
	}
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

func (s *Strategy) Initialize(ctx *strategy.Context, population solution.Population) (solution.Population, error) {
	s.ideal, s.min, s.max = bounds(population, s.m)
	survivors, err := s.selectByAPD(population, ctx.TargetSize, ctx.Generation, ctx.MaxGenerations)
	if err != nil {
		return nil, err
	}
	return cloneWithExt(survivors), nil
}

func (s *Strategy) MatingSelection(ctx *strategy.Context) (solution.Population, error) {
	pop := ctx.Inhabitants
	n := len(pop)
	if n < 2 {
		return nil, fmt.Errorf("%w: mating needs at least 2 inhabitants", errs.ErrInvalidPopulation)
	}
	parents := make(solution.Population, n)
	for i := range parents {
		parents[i] = pop[rng.Choice(ctx.RNG, n)]
	}
	return parents, nil
}

// EnvironmentalSelection merges inhabitants and offspring, updates the
// ideal point and observed range, re-adapts the reference vectors when
// the generation counter crosses a floor(fr*maxGenerations) boundary,
// and keeps the best candidate per reference-vector partition by APD
// until TargetSize survivors remain.
func (s *Strategy) EnvironmentalSelection(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	merged := make(solution.Population, 0, len(ctx.Inhabitants)+len(offspring))
	merged = append(merged, ctx.Inhabitants...)
	merged = append(merged, offspring...)

	s.ideal, s.min, s.max = bounds(merged, s.m)
	s.maybeAdapt(ctx.Generation, ctx.MaxGenerations)

	return s.selectByAPD(merged, ctx.TargetSize, ctx.Generation, ctx.MaxGenerations)
}

// UpdateArchive keeps the non-dominated subset of the current
// inhabitants as an external archive; RVEA itself selects purely
// through angle-penalised distance over the reference vectors.
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

func (s *Strategy) Update(ctx *strategy.Context) error {
	s.ideal, s.min, s.max = bounds(ctx.Inhabitants, s.m)
	return nil
}

// maybeAdapt re-scales v0 by the observed per-objective range whenever
// generation crosses a multiple of floor(fr*maxGenerations), the
// periodic reference-vector adaptation rule.
func (s *Strategy) maybeAdapt(generation, maxGenerations int) {
	if maxGenerations <= 0 {
		return
	}
	period := int(s.fr * float64(maxGenerations))
	if period < 1 {
		return
	}
	if generation%period != 0 {
		return
	}
	adapted := make([][]float64, len(s.v0))
	for i, v := range s.v0 {
		scaled := make([]float64, len(v))
		for j := range v {
			span := s.max[j] - s.min[j]
			if span < 1e-12 {
				span = 1
			}
			scaled[j] = v[j] * span
		}
		adapted[i] = scaled
	}
	normalizeAll(adapted)
	s.vectors = adapted
}

func bounds(pop solution.Population, m int) (ideal, min, max []float64) {
	ideal = make([]float64, m)
	min = make([]float64, m)
	max = make([]float64, m)
	for i := range ideal {
		ideal[i] = math.Inf(1)
		min[i] = math.Inf(1)
		max[i] = math.Inf(-1)
	}
	for _, sol := range pop {
		values := sol.Fitness.ObjectiveValues()
		for i, v := range values {
			if v < ideal[i] {
				ideal[i] = v
			}
			if v < min[i] {
				min[i] = v
			}
			if v > max[i] {
				max[i] = v
			}
		}
	}
	return
}

// selectByAPD translates every candidate by the ideal point, assigns
// each to the reference vector with the smallest angle, scores it by
// the angle-penalised distance, and keeps the lowest-APD candidate per
// vector until target candidates survive.
func (s *Strategy) selectByAPD(pop solution.Population, target, generation, maxGenerations int) (solution.Population, error) {
	if len(pop) == 0 {
		return solution.Population{}, nil
	}
	byVector := make(map[int][]int)
	for idx, sol := range pop {
		values := sol.Fitness.ObjectiveValues()
		t := make([]float64, s.m)
		for j, v := range values {
			t[j] = v - s.ideal[j]
		}
		ext, ok := sol.Fitness.Extension().(*Ext)
		if !ok {
			return nil, fmt.Errorf("%w: solution missing rvea extension", errs.ErrFitnessShape)
		}
		ext.translated = t

		best, bestCos := 0, math.Inf(-1)
		for vi, v := range s.vectors {
			c := cosine(t, v)
			if c > bestCos {
				bestCos, best = c, vi
			}
		}
		byVector[best] = append(byVector[best], idx)
	}

	progress := 0.0
	if maxGenerations > 0 {
		progress = float64(generation) / float64(maxGenerations)
	}

	var ranked []int
	for vi, members := range byVector {
		v := s.vectors[vi]
		bestIdx, bestAPD := -1, math.Inf(1)
		for _, idx := range members {
			ext := pop[idx].Fitness.Extension().(*Ext)
			apd := angularPenalizedDistance(ext.translated, v, progress, s.alpha, len(s.vectors))
			ext.apd = apd
			if apd < bestAPD {
				bestAPD, bestIdx = apd, idx
			}
		}
		if bestIdx >= 0 {
			ranked = append(ranked, bestIdx)
		}
	}

	survivors := make(solution.Population, 0, target)
	for _, idx := range ranked {
		survivors = append(survivors, pop[idx])
		if len(survivors) == target {
			break
		}
	}
	if len(survivors) < target {
		seen := make(map[int]bool)
		for _, idx := range ranked {
			seen[idx] = true
		}
		for idx, sol := range pop {
			if len(survivors) == target {
				break
			}
			if !seen[idx] {
				survivors = append(survivors, sol)
			}
		}
	}
	return survivors, nil
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom < 1e-12 {
		return 0
	}
	return dot / denom
}

// angularPenalizedDistance is APD(x) = (1 + P(theta)) * ||translated||,
// where P(theta) = M * (gen/maxGen)^alpha * theta/gamma, gamma being
// the angle between v and its nearest neighbouring vector (approximated
// here as pi/numVectors, a fixed-spacing simplification for a
// regularly generated Das-Dennis set).
func angularPenalizedDistance(translated, v []float64, progress, alpha float64, numVectors int) float64 {
	var norm float64
	for _, x := range translated {
		norm += x * x
	}
	norm = math.Sqrt(norm)

	theta := math.Acos(clamp(cosine(translated, v), -1, 1))
	gamma := math.Pi / float64(numVectors)
	if gamma < 1e-9 {
		gamma = 1e-9
	}
	penalty := float64(len(v)) * math.Pow(progress, alpha) * (theta / gamma)
	return (1 + penalty) * norm
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

func cloneWithExt(pop solution.Population) solution.Population {
	out := pop.Clone()
	for i, sol := range out {
		if ext, ok := pop[i].Fitness.Extension().(*Ext); ok {
			cp := *ext
			sol.Fitness.SetExtension(&cp)
		}
	}
	return out
}
