// Package spea2 implements a strength-Pareto strategy: strength,
// raw fitness, and a k-th-nearest-neighbour density estimate
// combine into one scalar where smaller is better, and the external
// archive is filled or truncated to an exact target size every
// generation. Grounded on the dominance-counting pattern shared with
// strategies/nsga2, adapted to SPEA2's fitness formula instead of fronts.
package spea2

import (
	"fmt"
	"math"
	"sort"

	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/errs"
	"github.com/luxfi/moga/fitness"
	"github.com/luxfi/moga/objective"
	"github.com/luxfi/moga/rng"
	"github.com/luxfi/moga/solution"
	"github.com/luxfi/moga/strategy"
)

// Ext is the fitness extension SPEA2 stamps on every solution: its
// strength S(x), raw fitness R(x), density D(x), and the combined
// scalar F(x) = R(x) + D(x) that the comparator.NewScalarValue comparator reads
// (inverted, since smaller F is better).
type Ext struct {
	strength int
	raw      float64
	density  float64
	combined float64
}

// Strategy implements strategy.Strategy for SPEA2.
type Strategy struct {
	m         int
	paretoCmp comparator.Fitness
	solCmp    comparator.Solution

	// cached memoizes nextArchive's result for the generation it ran in,
	// since EnvironmentalSelection and UpdateArchive are always called
	// back to back with the same ctx/offspring (see cachedNextArchive).
	cached       bool
	cachedGen    int
	cachedResult solution.Population
	cachedErr    error
}

// New returns a SPEA2 strategy over m objectives.
func New(m int) *Strategy { return &Strategy{m: m} }

func (s *Strategy) CreateSolutionComparator(components []comparator.Component) comparator.Solution {
	s.paretoCmp = comparator.NewPareto(components)
	scalar := comparator.NewScalarValue(false) // Value() already stores -F, so larger Value() is better
	s.solCmp = comparator.Constrained(scalar)
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
	if err := s.assignFitness(population); err != nil {
		return nil, err
	}
	nonDominated := filterNonDominated(population)
	return cloneWithExt(nonDominated), nil
}

// cloneWithExt clones a population the way solution.Population.Clone
// does, but additionally deep-copies each solution's *Ext so a clone
// never aliases the source's extension (fitness.Base.Clone shallow-
// copies the extension field by design).
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

func (s *Strategy) MatingSelection(ctx *strategy.Context) (solution.Population, error) {
	source := ctx.Archive
	if len(source) == 0 {
		source = ctx.Inhabitants
	}
	n := len(source)
	if n < 2 {
		return nil, fmt.Errorf("%w: SPEA2 mating needs at least 2 candidates", errs.ErrInvalidPopulation)
	}
	parents := make(solution.Population, n)
	for i := 0; i < n; i++ {
		a, b := rng.TwoDistinct(ctx.RNG, n)
		if s.solCmp(source[a], source[b]) >= 0 {
			parents[i] = source[a]
		} else {
			parents[i] = source[b]
		}
	}
	return parents, nil
}

// EnvironmentalSelection computes the next archive/population from
// inhabitants ∪ archive ∪ offspring: SPEA2 folds environmental
// selection and archive maintenance into one operation, so both this
// and UpdateArchive delegate to nextArchive and return the same set —
// in SPEA2 the archive IS the next generation's population.
func (s *Strategy) EnvironmentalSelection(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	return s.cachedNextArchive(ctx, offspring)
}

// UpdateArchive returns the same set EnvironmentalSelection computed,
// since SPEA2 has no separate population/archive distinction.
func (s *Strategy) UpdateArchive(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	return s.cachedNextArchive(ctx, offspring)
}

// cachedNextArchive memoizes nextArchive per generation: the driver
// calls EnvironmentalSelection then UpdateArchive back to back with the
// same ctx.Generation and offspring, so the second call would otherwise
// repeat the full O(n^2) strength/raw/density pass for no reason.
func (s *Strategy) cachedNextArchive(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	if s.cached && s.cachedGen == ctx.Generation {
		return s.cachedResult, s.cachedErr
	}
	result, err := s.nextArchive(ctx, offspring)
	s.cached = true
	s.cachedGen = ctx.Generation
	s.cachedResult = result
	s.cachedErr = err
	return result, err
}

// nextArchive recomputes strength/raw/density over inhabitants ∪
// archive ∪ offspring and returns the next archive: the non-dominated
// members (F<1) if they fit ctx.TargetSize, truncated toward ascending
// F if too few, or pruned by nearest-neighbour distance if too many.
func (s *Strategy) nextArchive(ctx *strategy.Context, offspring solution.Population) (solution.Population, error) {
	union := dedupe(ctx.Inhabitants, ctx.Archive, offspring)

	if err := s.assignFitness(union); err != nil {
		return nil, err
	}

	nonDominated := filterNonDominated(union)
	target := ctx.TargetSize

	switch {
	case len(nonDominated) == target:
		return nonDominated, nil
	case len(nonDominated) < target:
		sorted := make(solution.Population, len(union))
		copy(sorted, union)
		sort.SliceStable(sorted, func(i, j int) bool {
			return extOf(sorted[i]).combined < extOf(sorted[j]).combined
		})
		if len(sorted) > target {
			sorted = sorted[:target]
		}
		return sorted, nil
	default:
		return truncate(nonDominated, target), nil
	}
}

func (s *Strategy) Update(ctx *strategy.Context) error { return nil }

func extOf(sol *solution.Solution) *Ext { return sol.Fitness.Extension().(*Ext) }

// dedupe concatenates the given populations, dropping any solution
// pointer already seen: SPEA2's inhabitants and archive are the same
// set of pointers from the second generation onward (see nextArchive),
// so a naive concatenation would double-count them.
func dedupe(pops ...solution.Population) solution.Population {
	seen := make(map[*solution.Solution]bool)
	out := make(solution.Population, 0)
	for _, pop := range pops {
		for _, sol := range pop {
			if seen[sol] {
				continue
			}
			seen[sol] = true
			out = append(out, sol)
		}
	}
	return out
}

// assignFitness computes strength, raw fitness, and density for every
// member of pop, then the combined scalar SPEA2 selects on.
func (s *Strategy) assignFitness(pop solution.Population) error {
	n := len(pop)
	dominanceSign := make([][]int, n)
	for i := range dominanceSign {
		dominanceSign[i] = make([]int, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			sign, err := s.paretoCmp.Compare(pop[i].Fitness, pop[j].Fitness)
			if err != nil {
				return err
			}
			dominanceSign[i][j] = sign
		}
	}

	strength := make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if dominanceSign[i][j] == 1 {
				strength[i]++
			}
		}
	}

	raw := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if dominanceSign[j][i] == 1 {
				raw[i] += float64(strength[j])
			}
		}
	}

	k := int(math.Sqrt(float64(n)))
	if k < 1 {
		k = 1
	}
	density := make([]float64, n)
	for i := 0; i < n; i++ {
		dists := make([]float64, 0, n-1)
		vi := pop[i].Fitness.ObjectiveValues()
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			vj := pop[j].Fitness.ObjectiveValues()
			dists = append(dists, euclidean(vi, vj))
		}
		sort.Float64s(dists)
		kth := 0.0
		if len(dists) > 0 {
			idx := k - 1
			if idx >= len(dists) {
				idx = len(dists) - 1
			}
			kth = dists[idx]
		}
		density[i] = 1 / (kth + 2)
	}

	for i, sol := range pop {
		ext, ok := sol.Fitness.Extension().(*Ext)
		if !ok {
			return fmt.Errorf("%w: solution missing spea2 extension", errs.ErrFitnessShape)
		}
		ext.strength = strength[i]
		ext.raw = raw[i]
		ext.density = density[i]
		ext.combined = raw[i] + density[i]
		sol.Fitness.SetValue(-ext.combined) // invert: smaller combined -> larger Value()
	}
	return nil
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func filterNonDominated(pop solution.Population) solution.Population {
	out := make(solution.Population, 0, len(pop))
	for _, sol := range pop {
		if extOf(sol).combined < 1 {
			out = append(out, sol)
		}
	}
	return out
}

// truncate iteratively removes the candidate whose nearest-neighbour
// distance is smallest (ties broken by next-nearest), until exactly
// target remain.
func truncate(pop solution.Population, target int) solution.Population {
	current := make(solution.Population, len(pop))
	copy(current, pop)

	for len(current) > target {
		n := len(current)
		sortedDists := make([][]float64, n)
		for i := 0; i < n; i++ {
			vi := current[i].Fitness.ObjectiveValues()
			dists := make([]float64, 0, n-1)
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				dists = append(dists, euclidean(vi, current[j].Fitness.ObjectiveValues()))
			}
			sort.Float64s(dists)
			sortedDists[i] = dists
		}

		worst := 0
		for i := 1; i < n; i++ {
			if lessCrowded(sortedDists[i], sortedDists[worst]) {
				worst = i
			}
		}
		current = append(current[:worst], current[worst+1:]...)
	}
	return current
}

// lessCrowded reports whether a's sorted distance list indicates a more
// crowded (smaller nearest, then next-nearest, ...) position than b's.
func lessCrowded(a, b []float64) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
