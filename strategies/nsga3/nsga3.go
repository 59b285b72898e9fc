// Package nsga3 implements a reference-point niching strategy: fronts
// rank survival as in NSGA-II, but an overflowing last front is filled
// by associating candidates with Das-Dennis reference directions
// instead of crowding distance. Grounded on gonum's linear algebra
// (extreme-point intercept regression) and on
// commands.DasDennisVectorGenerator for the direction set.
package nsga3

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/commands"
	"github.com/luxfi/moga/errs"
	"github.com/luxfi/moga/fitness"
	"github.com/luxfi/moga/objective"
	"github.com/luxfi/moga/rng"
	"github.com/luxfi/moga/solution"
	"github.com/luxfi/moga/strategy"
)

// Ext is the fitness extension NSGA-III stamps on every solution: its
// front rank, its normalised objective vector, the index of its
// associated reference direction, and its perpendicular distance to it.
type Ext struct {
	rank                int
	normalized          []float64
	referenceIndex      int
	perpendicularDist   float64
}

func (e *Ext) Rank() int        { return e.rank }
func (e *Ext) Density() float64 { return -e.perpendicularDist }

// Strategy implements strategy.Strategy for NSGA-III.
type Strategy struct {
	m          int
	directions [][]float64

	paretoCmp comparator.Fitness
	solCmp    comparator.Solution

	ideal []float64
}

// New returns an NSGA-III strategy with m objectives whose reference
// directions come from a single-layer Das-Dennis generation at
// resolution p1 (pass p2>=0 via WithInnerLayer before Initialize for
// the two-layer form).
func New(m, p1 int) *Strategy {
	return &Strategy{m: m, directions: mustDasDennis(m, p1, -1)}
}

// WithInnerLayer switches to the two-layer Das-Dennis construction.
func (s *Strategy) WithInnerLayer(p1, p2 int) *Strategy {
	s.directions = mustDasDennis(s.m, p1, p2)
	return s
}

func mustDasDennis(m, p1, p2 int) [][]float64 {
	gen := commands.NewDasDennisVectorGenerator(m, p1)
	if p2 >= 0 {
		gen.WithInnerLayer(p2)
	}
	if err := gen.Execute(); err != nil {
		panic(err)
	}
	return gen.Result()
}

func (s *Strategy) CreateSolutionComparator(components []comparator.Component) comparator.Solution {
	s.paretoCmp = comparator.NewPareto(components)
	extractor := func(f fitness.Fitness) (comparator.RankedFitness, bool) {
		e, ok := f.Extension().(*Ext)
		return e, ok
	}
	s.solCmp = comparator.NSGA2Constrained(extractor)
	return s.solCmp
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
	s.ideal = idealPoint(population, s.m)
	fronts, err := s.splitFronts(population)
	if err != nil {
		return nil, err
	}
	if len(fronts) == 0 {
		return solution.Population{}, nil
	}
	return cloneWithExt(fronts[0]), nil
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

// EnvironmentalSelection fills survivors front by front as NSGA-II
// does, but the overflowing last front is filled by niching against the
// reference directions instead of crowding.
func (s *Strategy) EnvironmentalSelection(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	merged := make(solution.Population, 0, len(ctx.Inhabitants)+len(offspring))
	merged = append(merged, ctx.Inhabitants...)
	merged = append(merged, offspring...)

	s.ideal = idealPoint(merged, s.m)

	fronts, err := s.splitFronts(merged)
	if err != nil {
		return nil, err
	}

	survivors := make(solution.Population, 0, ctx.TargetSize)
	var last solution.Population
	remaining := ctx.TargetSize
	splitIdx := len(fronts)
	for i, front := range fronts {
		if len(front) <= remaining {
			survivors = append(survivors, front...)
			remaining -= len(front)
			continue
		}
		last = front
		splitIdx = i
		break
	}
	if remaining == 0 || last == nil {
		return survivors, nil
	}
	_ = splitIdx

	associated := make(solution.Population, 0, len(survivors)+len(last))
	associated = append(associated, survivors...)
	associated = append(associated, last...)
	if err := s.associate(associated); err != nil {
		return nil, err
	}

	chosen, err := nicheSelect(last, survivors, s.directions, remaining, ctx.RNG)
	if err != nil {
		return nil, err
	}
	survivors = append(survivors, chosen...)
	return survivors, nil
}

func (s *Strategy) UpdateArchive(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	fronts, err := s.splitFronts(ctx.Inhabitants)
	if err != nil {
		return nil, err
	}
	if len(fronts) == 0 {
		return solution.Population{}, nil
	}
	return cloneWithExt(fronts[0]), nil
}

// Update recomputes the ideal point coordinate-wise minimum from the
// current inhabitants.
func (s *Strategy) Update(ctx *strategy.Context) error {
	s.ideal = idealPoint(ctx.Inhabitants, s.m)
	return nil
}

func (s *Strategy) splitFronts(pop solution.Population) ([]solution.Population, error) {
	cmp := comparator.Plain(s.paretoCmp)
	splitter := commands.NewPopulationSplitter(pop, cmp, func(sol *solution.Solution, rank int) {
		if ext, ok := sol.Fitness.Extension().(*Ext); ok {
			ext.rank = rank
		}
	})
	if err := splitter.Execute(); err != nil {
		return nil, err
	}
	return splitter.Result(), nil
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

func idealPoint(pop solution.Population, m int) []float64 {
	ideal := make([]float64, m)
	for i := range ideal {
		ideal[i] = math.Inf(1)
	}
	for _, s := range pop {
		values := s.Fitness.ObjectiveValues()
		for i, v := range values {
			if v < ideal[i] {
				ideal[i] = v
			}
		}
	}
	return ideal
}

// associate translates every candidate by the ideal point, solves for
// per-axis intercepts via extreme-point regression, normalises, and
// records each candidate's nearest reference direction and
// perpendicular distance to it.
func (s *Strategy) associate(pop solution.Population) error {
	m := s.m
	translated := make([][]float64, len(pop))
	for i, sol := range pop {
		values := sol.Fitness.ObjectiveValues()
		t := make([]float64, m)
		for j, v := range values {
			t[j] = v - s.ideal[j]
		}
		translated[i] = t
	}

	intercepts := extremePointIntercepts(translated, m)

	for i, sol := range pop {
		ext, ok := sol.Fitness.Extension().(*Ext)
		if !ok {
			return fmt.Errorf("%w: solution missing nsga3 extension", errs.ErrFitnessShape)
		}
		norm := make([]float64, m)
		for j, v := range translated[i] {
			if intercepts[j] > 1e-10 {
				norm[j] = v / intercepts[j]
			} else {
				norm[j] = v
			}
		}
		ext.normalized = norm

		bestIdx, bestDist := 0, math.Inf(1)
		for di, dir := range s.directions {
			d := perpendicularDistance(norm, dir)
			if d < bestDist {
				bestDist, bestIdx = d, di
			}
		}
		ext.referenceIndex = bestIdx
		ext.perpendicularDist = bestDist
	}
	return nil
}

func perpendicularDistance(point, direction []float64) float64 {
	var dot, dirNormSq float64
	for i, d := range direction {
		dot += point[i] * d
		dirNormSq += d * d
	}
	if dirNormSq == 0 {
		dirNormSq = 1
	}
	scale := dot / dirNormSq
	var sumSq float64
	for i, d := range direction {
		proj := scale * d
		diff := point[i] - proj
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq)
}

// extremePointIntercepts finds the M extreme points (one per objective:
// the candidate minimising the achievement scalarisation with weight
// concentrated on that axis) and solves Ax=1 for the per-axis
// reciprocal intercepts, falling back to the per-axis maximum when the
// system is singular (a degenerate or very small front).
func extremePointIntercepts(points [][]float64, m int) []float64 {
	extremes := make([][]float64, m)
	for axis := 0; axis < m; axis++ {
		bestIdx, bestScore := -1, math.Inf(1)
		for i, p := range points {
			score := achievementScalarization(p, axis, m)
			if score < bestScore {
				bestScore, bestIdx = score, i
			}
		}
		if bestIdx >= 0 {
			extremes[axis] = points[bestIdx]
		}
	}

	fallback := func() []float64 {
		max := make([]float64, m)
		for _, p := range points {
			for i, v := range p {
				if v > max[i] {
					max[i] = v
				}
			}
		}
		for i := range max {
			if max[i] <= 1e-10 {
				max[i] = 1
			}
		}
		return max
	}

	for _, e := range extremes {
		if e == nil {
			return fallback()
		}
	}

	a := mat.NewDense(m, m, nil)
	for r := 0; r < m; r++ {
		for c := 0; c < m; c++ {
			a.Set(r, c, extremes[r][c])
		}
	}
	b := mat.NewDense(m, 1, nil)
	for r := 0; r < m; r++ {
		b.Set(r, 0, 1)
	}
	var x mat.Dense
	if err := x.Solve(a, b); err != nil {
		return fallback()
	}

	intercepts := make([]float64, m)
	for i := 0; i < m; i++ {
		w := x.At(i, 0)
		if w <= 1e-10 {
			return fallback()
		}
		intercepts[i] = 1 / w
	}
	return intercepts
}

func achievementScalarization(p []float64, axis, m int) float64 {
	best := math.Inf(-1)
	for i := 0; i < m; i++ {
		w := 1e-6
		if i == axis {
			w = 1.0
		}
		v := p[i] / w
		if v > best {
			best = v
		}
	}
	return best
}

// nicheSelect implements NSGA-III's reference-direction niching over
// the overflowing last front: repeatedly pick the least-crowded
// direction (fewest associated survivors so far, counting survivors
// from earlier fronts) and add the last-front candidate with minimum
// perpendicular distance to it, breaking ties by random choice among
// directions with equal niche count that have at least one candidate
// left.
func nicheSelect(last, survivors solution.Population, directions [][]float64, need int, src rng.Source) (solution.Population, error) {
	byDirection := make(map[int][]int)
	for idx, sol := range last {
		ext, ok := sol.Fitness.Extension().(*Ext)
		if !ok {
			return nil, fmt.Errorf("%w: solution missing nsga3 extension", errs.ErrFitnessShape)
		}
		byDirection[ext.referenceIndex] = append(byDirection[ext.referenceIndex], idx)
	}

	niche := make([]int, len(directions))
	for _, sol := range survivors {
		if ext, ok := sol.Fitness.Extension().(*Ext); ok {
			niche[ext.referenceIndex]++
		}
	}
	chosen := make(solution.Population, 0, need)
	taken := make(map[int]bool)

	for len(chosen) < need {
		var tied []int
		for d := range directions {
			candidates := byDirection[d]
			available := 0
			for _, idx := range candidates {
				if !taken[idx] {
					available++
				}
			}
			if available == 0 {
				continue
			}
			if len(tied) > 0 && niche[d] < niche[tied[0]] {
				tied = tied[:0]
			}
			if len(tied) == 0 || niche[d] == niche[tied[0]] {
				tied = append(tied, d)
			}
		}
		if len(tied) == 0 {
			break
		}
		dirIdx := tied[rng.Choice(src, len(tied))]

		bestIdx, bestDist := -1, math.Inf(1)
		for _, idx := range byDirection[dirIdx] {
			if taken[idx] {
				continue
			}
			d := last[idx].Fitness.Extension().(*Ext).perpendicularDist
			if d < bestDist {
				bestDist, bestIdx = d, idx
			}
		}
		taken[bestIdx] = true
		niche[dirIdx]++
		chosen = append(chosen, last[bestIdx])
	}

	sort.Ints(niche)
	return chosen, nil
}
