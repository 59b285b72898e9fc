// Package pso implements the particle-swarm family: every particle
// carries a position genome, a velocity, and a personal-best
// memory; each generation recomputes velocities from personal bests and
// a leader set, advances positions, optionally disturbs a fraction of
// the swarm, and refreshes both the leader archive and personal-best
// memories. The three named variants (OMOPSO, SMPSO, MOPSO) differ only
// in leader selection and turbulence rate, both of which are strategy
// fields set by the matching constructor. Grounded on
// commands.CrowdingDistanceCalculator (OMOPSO's leader tournament) and
// commands.HypercubePartition (MOPSO's density-roulette grid). Leader
// clones are plain Clone copies, so a leader shares its particle's
// extension.
package pso

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

// Vector is the genome every PSO particle carries: a real-valued
// position vector in species-bound space.
type Vector struct {
	Position []float64
}

// CloneGenome deep-copies the position slice (solution.Cloner).
func (v *Vector) CloneGenome() any {
	return &Vector{Position: append([]float64(nil), v.Position...)}
}

// Ext is the fitness extension every particle carries: its velocity and
// personal-best position/objectives. The crowding field is not written;
// OMOPSO's leader crowding is computed per call by leaderCrowding.
type Ext struct {
	velocity      []float64
	bestPosition  []float64
	bestObjective []float64
	crowding      float64
}

// policy selects the leader-selection and turbulence behaviour that
// distinguishes the three named PSO variants.
type policy int

const (
	omopso policy = iota
	smpso
	mopso
)

// Strategy implements engine.SwarmStrategy for the PSO family.
type Strategy struct {
	m, dim           int
	min, max         []float64 // species position bounds
	vmin, vmax       []float64 // velocity bounds
	inertia          float64
	cognitive        float64
	social           float64
	archiveCap       int
	turbulenceProb   float64
	gridDivisions    int // MOPSO only
	pol              policy

	paretoCmp comparator.Fitness
}

func newBase(dim int, min, max []float64, inertia, cognitive, social float64, archiveCap int, pol policy) *Strategy {
	vmin := make([]float64, dim)
	vmax := make([]float64, dim)
	for i := range vmin {
		span := max[i] - min[i]
		vmax[i] = span
		vmin[i] = -span
	}
	return &Strategy{
		m:          len(min), // placeholder; CreateSolutionComparator sets it to the objective count
		dim:        dim,
		min:        min,
		max:        max,
		vmin:       vmin,
		vmax:       vmax,
		inertia:    inertia,
		cognitive:  cognitive,
		social:     social,
		archiveCap: archiveCap,
		pol:        pol,
	}
}

// NewOMOPSO returns a PSO strategy using crowding-distance leader
// selection and a nonzero turbulence rate over the final third of the
// swarm.
func NewOMOPSO(dim int, min, max []float64, inertia, cognitive, social float64, archiveCap int, turbulenceProb float64) *Strategy {
	s := newBase(dim, min, max, inertia, cognitive, social, archiveCap, omopso)
	s.turbulenceProb = turbulenceProb
	return s
}

// NewSMPSO returns a PSO strategy using the sigma-method leader
// selection with a velocity-constriction-style clamp and no turbulence.
func NewSMPSO(dim int, min, max []float64, inertia, cognitive, social float64, archiveCap int) *Strategy {
	return newBase(dim, min, max, inertia, cognitive, social, archiveCap, smpso)
}

// NewMOPSO returns a PSO strategy using roulette-on-density grid leader
// selection over gridDivisions cells per objective.
func NewMOPSO(dim int, min, max []float64, inertia, cognitive, social float64, archiveCap, gridDivisions int) *Strategy {
	s := newBase(dim, min, max, inertia, cognitive, social, archiveCap, mopso)
	s.gridDivisions = gridDivisions
	return s
}

func (s *Strategy) CreateSolutionComparator(components []comparator.Component) comparator.Solution {
	s.m = len(components)
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

// Initialize seeds every particle's velocity at zero and personal best
// at its own initial position, then returns the non-dominated front of
// the swarm as the initial leader set.
func (s *Strategy) Initialize(ctx *strategy.Context, swarm solution.Population) (solution.Population, error) {
	for _, p := range swarm {
		ext, ok := p.Fitness.Extension().(*Ext)
		if !ok {
			return nil, fmt.Errorf("%w: particle missing pso extension", errs.ErrFitnessShape)
		}
		ext.velocity = make([]float64, s.dim)
		ext.bestPosition = genomePosition(p)
		ext.bestObjective = append([]float64(nil), p.Fitness.ObjectiveValues()...)
	}
	return s.nonDominated(swarm), nil
}

func genomePosition(p *solution.Solution) []float64 {
	v := p.Genome.(*Vector)
	return append([]float64(nil), v.Position...)
}

func (s *Strategy) nonDominated(pop solution.Population) solution.Population {
	out := make(solution.Population, 0, len(pop))
	for i, candidate := range pop {
		dominated := false
		for j, other := range pop {
			if i == j {
				continue
			}
			sign, err := s.paretoCmp.Compare(other.Fitness, candidate.Fitness)
			if err == nil && sign > 0 {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, candidate.Clone())
		}
	}
	return out
}

// UpdateVelocities recomputes every particle's velocity from its
// personal best and a leader drawn by the strategy's policy, clamped to
// [vmin, vmax].
func (s *Strategy) UpdateVelocities(ctx *strategy.Context) error {
	leaders := ctx.Archive
	if len(leaders) == 0 {
		return nil
	}
	leaderCrowding := s.leaderCrowding(leaders)

	for _, p := range ctx.Inhabitants {
		ext, ok := p.Fitness.Extension().(*Ext)
		if !ok {
			return fmt.Errorf("%w: particle missing pso extension", errs.ErrFitnessShape)
		}
		leader := s.selectLeader(ctx, p, leaders, leaderCrowding)
		position := genomePosition(p)
		leaderPos := genomePosition(leader)

		for i := 0; i < s.dim; i++ {
			r1, r2 := ctx.RNG.Float64(), ctx.RNG.Float64()
			v := s.inertia*ext.velocity[i] +
				s.cognitive*r1*(ext.bestPosition[i]-position[i]) +
				s.social*r2*(leaderPos[i]-position[i])
			ext.velocity[i] = clamp(v, s.vmin[i], s.vmax[i])
		}
	}
	return nil
}

// UpdatePositions advances every particle by its velocity, clamping to
// species bounds and zeroing the velocity component that hit a bound
// (the common PSO boundary-handling rule).
func (s *Strategy) UpdatePositions(ctx *strategy.Context) (solution.Population, error) {
	moved := make(solution.Population, len(ctx.Inhabitants))
	for idx, p := range ctx.Inhabitants {
		ext := p.Fitness.Extension().(*Ext)
		position := genomePosition(p)
		next := make([]float64, s.dim)
		for i := 0; i < s.dim; i++ {
			x := position[i] + ext.velocity[i]
			if x < s.min[i] {
				x = s.min[i]
				ext.velocity[i] = 0
			} else if x > s.max[i] {
				x = s.max[i]
				ext.velocity[i] = 0
			}
			next[i] = x
		}
		clone := p.Clone()
		clone.Genome = &Vector{Position: next}
		moved[idx] = clone
	}
	return moved, nil
}

// Turbulence applies uniform perturbation to the final third of the
// swarm with probability s.turbulenceProb per gene, matching OMOPSO's
// distinguishing use of turbulence; other policies default
// turbulenceProb to 0 and so leave the swarm unchanged.
func (s *Strategy) Turbulence(ctx *strategy.Context, moved solution.Population) (solution.Population, error) {
	if s.turbulenceProb <= 0 {
		return moved, nil
	}
	start := len(moved) * 2 / 3
	for idx := start; idx < len(moved); idx++ {
		v := moved[idx].Genome.(*Vector)
		for i := range v.Position {
			if ctx.RNG.Float64() >= s.turbulenceProb {
				continue
			}
			span := s.max[i] - s.min[i]
			v.Position[i] = clamp(v.Position[i]+(ctx.RNG.Float64()*2-1)*span*0.1, s.min[i], s.max[i])
		}
	}
	return moved, nil
}

// UpdateLeaders merges the current leader archive with the evaluated
// swarm, keeps only the non-dominated members, and truncates to
// archiveCap by crowding distance when over capacity.
func (s *Strategy) UpdateLeaders(ctx *strategy.Context, swarm solution.Population) (solution.Population, error) {
	merged := make(solution.Population, 0, len(ctx.Archive)+len(swarm))
	merged = append(merged, ctx.Archive...)
	merged = append(merged, swarm...)
	nonDominated := s.nonDominated(merged)
	if len(nonDominated) <= s.archiveCap {
		return nonDominated, nil
	}
	return s.truncateByCrowding(nonDominated, s.archiveCap), nil
}

// UpdateMemories replaces each particle's personal best with its
// current position whenever the current fitness is at least as good
// under the active comparator.
func (s *Strategy) UpdateMemories(ctx *strategy.Context, swarm solution.Population) error {
	for _, p := range swarm {
		ext, ok := p.Fitness.Extension().(*Ext)
		if !ok {
			return fmt.Errorf("%w: particle missing pso extension", errs.ErrFitnessShape)
		}
		current := p.Fitness.ObjectiveValues()
		sign, err := compareValues(s.paretoCmp, p.Fitness, ext.bestObjective)
		if err != nil {
			return err
		}
		if sign >= 0 {
			ext.bestPosition = genomePosition(p)
			ext.bestObjective = append([]float64(nil), current...)
		}
	}
	return nil
}

// compareValues compares f against a raw objective vector by building a
// throwaway fitness of the same shape, since comparator.Fitness compares
// fitness.Fitness values rather than raw slices.
func compareValues(cmp comparator.Fitness, f fitness.Fitness, values []float64) (int, error) {
	other := fitness.New(len(values))
	other.SetObjectiveValues(values)
	return cmp.Compare(f, other)
}

func (s *Strategy) Update(ctx *strategy.Context) error { return nil }

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// leaderCrowding computes crowding distance over the leader set,
// consumed by OMOPSO's leader tournament.
func (s *Strategy) leaderCrowding(leaders solution.Population) []float64 {
	if s.pol != omopso || len(leaders) == 0 {
		return nil
	}
	min, max := bounds(leaders, s.m)
	calc := commands.NewCrowdingDistanceCalculator(leaders, min, max)
	if err := calc.Execute(); err != nil {
		return nil
	}
	return calc.Result()
}

func bounds(pop solution.Population, m int) (min, max []float64) {
	min = make([]float64, m)
	max = make([]float64, m)
	for i := range min {
		min[i] = math.Inf(1)
		max[i] = math.Inf(-1)
	}
	for _, sol := range pop {
		values := sol.Fitness.ObjectiveValues()
		for i, v := range values {
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

// selectLeader dispatches to the strategy's configured leader policy.
func (s *Strategy) selectLeader(ctx *strategy.Context, particle *solution.Solution, leaders solution.Population, crowding []float64) *solution.Solution {
	switch s.pol {
	case omopso:
		return s.selectByCrowdingTournament(ctx, leaders, crowding)
	case smpso:
		return s.selectBySigma(particle, leaders)
	case mopso:
		return s.selectByDensityRoulette(ctx, leaders)
	default:
		return leaders[rng.Choice(ctx.RNG, len(leaders))]
	}
}

// selectByCrowdingTournament runs a binary tournament over the leader
// set preferring larger crowding distance (OMOPSO).
func (s *Strategy) selectByCrowdingTournament(ctx *strategy.Context, leaders solution.Population, crowding []float64) *solution.Solution {
	n := len(leaders)
	if n == 1 {
		return leaders[0]
	}
	a, b := rng.TwoDistinct(ctx.RNG, n)
	if crowding[a] >= crowding[b] {
		return leaders[a]
	}
	return leaders[b]
}

// selectBySigma picks the leader whose sigma vector (pairwise normalised
// objective differences) is closest to the particle's own, the
// SMPSO leader-selection rule.
func (s *Strategy) selectBySigma(particle *solution.Solution, leaders solution.Population) *solution.Solution {
	target := sigmaVector(particle.Fitness.ObjectiveValues())
	best, bestDist := leaders[0], math.Inf(1)
	for _, leader := range leaders {
		d := sigmaDistance(target, sigmaVector(leader.Fitness.ObjectiveValues()))
		if d < bestDist {
			bestDist, best = d, leader
		}
	}
	return best
}

func sigmaVector(values []float64) []float64 {
	m := len(values)
	out := make([]float64, 0, m*(m-1)/2)
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			denom := values[i]*values[i] + values[j]*values[j]
			if denom < 1e-12 {
				out = append(out, 0)
				continue
			}
			out = append(out, (values[i]*values[i]-values[j]*values[j])/denom)
		}
	}
	return out
}

func sigmaDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// selectByDensityRoulette partitions the leader set into a hypercube
// grid and picks a leader with probability inversely proportional to
// its cell's population, the MOPSO leader-selection rule.
func (s *Strategy) selectByDensityRoulette(ctx *strategy.Context, leaders solution.Population) *solution.Solution {
	divisions := s.gridDivisions
	if divisions < 1 {
		divisions = 10
	}
	min, max := bounds(leaders, s.m)
	partition, err := commands.NewFixedCountPartition(min, max, divisions)
	if err != nil {
		return leaders[rng.Choice(ctx.RNG, len(leaders))]
	}
	cellOf := make([]string, len(leaders))
	counts := make(map[string]int)
	for i, leader := range leaders {
		coords, err := partition.Coordinates(leader.Fitness.ObjectiveValues())
		if err != nil {
			return leaders[rng.Choice(ctx.RNG, len(leaders))]
		}
		key := fmt.Sprint(coords)
		cellOf[i] = key
		counts[key]++
	}
	weights := make([]float64, len(leaders))
	var total float64
	for i, key := range cellOf {
		w := 1 / float64(counts[key])
		weights[i] = w
		total += w
	}
	r := ctx.RNG.Float64() * total
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return leaders[i]
		}
	}
	return leaders[len(leaders)-1]
}

func (s *Strategy) truncateByCrowding(pop solution.Population, target int) solution.Population {
	min, max := bounds(pop, s.m)
	calc := commands.NewCrowdingDistanceCalculator(pop, min, max)
	if err := calc.Execute(); err != nil {
		return pop[:target]
	}
	distances := calc.Result()
	indices := make([]int, len(pop))
	for i := range indices {
		indices[i] = i
	}
	for i := 0; i < len(indices); i++ {
		for j := i + 1; j < len(indices); j++ {
			if distances[indices[j]] > distances[indices[i]] {
				indices[i], indices[j] = indices[j], indices[i]
			}
		}
	}
	out := make(solution.Population, target)
	for i := 0; i < target; i++ {
		out[i] = pop[indices[i]]
	}
	return out
}
