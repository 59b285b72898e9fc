// Command moga is a "run config" CLI: load a YAML configuration,
// build the matching strategy and evaluator, run it to
// completion, and print the resulting non-dominated front. There is no
// wire protocol and no subcommand beyond this.
package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/config"
	"github.com/luxfi/moga/engine"
	"github.com/luxfi/moga/log"
	"github.com/luxfi/moga/metric"
	"github.com/luxfi/moga/objective"
	"github.com/luxfi/moga/operators"
	"github.com/luxfi/moga/problems"
	"github.com/luxfi/moga/rng"
	"github.com/luxfi/moga/solution"
	"github.com/luxfi/moga/strategy"
	"github.com/luxfi/moga/strategies/epsmoea"
	"github.com/luxfi/moga/strategies/grea"
	"github.com/luxfi/moga/strategies/moead"
	"github.com/luxfi/moga/strategies/nsga2"
	"github.com/luxfi/moga/strategies/nsga3"
	"github.com/luxfi/moga/strategies/paes"
	"github.com/luxfi/moga/strategies/pso"
	"github.com/luxfi/moga/strategies/rvea"
	"github.com/luxfi/moga/strategies/spea2"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: moga <config.yaml>")
		os.Exit(2)
	}
	if err := run(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, "moga:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	logger, err := log.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	params := config.Default()
	if err := yaml.Unmarshal(raw, &params); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	registry := metric.NewRegistry()
	metrics, err := metric.New("moga", registry)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	m := len(params.Evaluator.Objectives)
	dims := problemDimensions(params, m)
	fns := problemFunctions(params, m, dims)

	objectives := make([]*objective.Objective, m)
	maximize := make([]bool, m)
	for i, spec := range params.Evaluator.Objectives {
		i, fn := i, fns[i]
		objectives[i] = objective.New(i, spec.Maximize, spec.Min, spec.Max, fn)
		maximize[i] = spec.Maximize
	}

	var evaluator objective.Evaluator
	strat, err := buildStrategy(params, m, dims)
	if err != nil {
		return err
	}

	if params.Evaluator.Parallel {
		evaluator = objective.NewParallel(objectives, strat.fitnessPrototype())
	} else {
		evaluator = objective.NewSequential(objectives, strat.fitnessPrototype())
	}

	components := make([]comparator.Component, m)
	for i, mx := range maximize {
		components[i] = comparator.NewComponent(mx)
	}
	solCmp := strat.createSolutionComparator(components)

	src := rng.New(params.Seed)
	ctx := &strategy.Context{
		RNG:            src,
		Evaluator:      evaluator,
		Comparator:     solCmp,
		TargetSize:     params.PopulationSize,
		MaxGenerations: params.MaxGenerations,
		MaxEvaluations: params.MaxEvaluations,
	}

	provider := func() solution.Population {
		return randomPopulation(params.PopulationSize, dims, src)
	}
	variation := buildVariation(params, dims)

	background := context.Background()

	if strat.swarm != nil {
		sdriver := engine.NewSwarm(engine.SwarmConfig{
			Strategy:  strat.swarm,
			Evaluator: evaluator,
			Provider:  provider,
			Context:   ctx,
			Logger:    logger,
		})
		sdriver.OnGeneration(func(generation int, nonDominated solution.Population, archiveSize int) {
			metrics.ObserveGeneration(archiveSize, len(nonDominated), 0)
		})
		result, err := sdriver.Run(background)
		if err != nil {
			return err
		}
		return report(result)
	}

	driver := engine.New(engine.Config{
		Strategy:  strat.generational,
		Evaluator: evaluator,
		Provider:  provider,
		Variation: variation,
		Context:   ctx,
		Logger:    logger,
	})
	driver.OnGeneration(func(generation int, nonDominated solution.Population, archiveSize int) {
		metrics.ObserveGeneration(archiveSize, len(nonDominated), 0)
	})
	result, err := driver.Run(background)
	if err != nil {
		return err
	}
	return report(result)
}

// strategyHandle lets buildStrategy return either generational or swarm
// flavour uniformly, since config.AlgorithmKind selects between them.
type strategyHandle struct {
	generational strategy.Strategy
	swarm        engine.SwarmStrategy
}

func (h strategyHandle) fitnessPrototype() objective.Prototype {
	if h.swarm != nil {
		return h.swarm.FitnessPrototype()
	}
	return h.generational.FitnessPrototype()
}

func (h strategyHandle) createSolutionComparator(components []comparator.Component) comparator.Solution {
	if h.swarm != nil {
		return h.swarm.CreateSolutionComparator(components)
	}
	return h.generational.CreateSolutionComparator(components)
}

func buildStrategy(params config.Parameters, m, dims int) (strategyHandle, error) {
	objMin, objMax := objectiveBounds(params, m)
	genMin := genomeBounds(params.Strategy.Min, dims, 0)
	genMax := genomeBounds(params.Strategy.Max, dims, 1)

	switch params.Algorithm {
	case config.NSGA2:
		return strategyHandle{generational: nsga2.New(objMin, objMax)}, nil
	case config.NSGA3:
		s := nsga3.New(m, params.Strategy.P1)
		if params.Strategy.P2 >= 0 {
			s.WithInnerLayer(params.Strategy.P1, params.Strategy.P2)
		}
		return strategyHandle{generational: s}, nil
	case config.SPEA2:
		return strategyHandle{generational: spea2.New(m)}, nil
	case config.MOEAD:
		s, err := moead.New(m, params.Strategy.P1, params.Strategy.NeighborhoodSize, params.Strategy.MaxReplacements, params.Strategy.Scalarization)
		if err != nil {
			return strategyHandle{}, err
		}
		return strategyHandle{generational: s}, nil
	case config.RVEA:
		return strategyHandle{generational: rvea.New(m, params.Strategy.P1, params.Strategy.Alpha, params.Strategy.Fr)}, nil
	case config.EpsMOEA:
		eps := params.Strategy.Epsilon
		if len(eps) != m {
			eps = uniformSlice(m, 0.05)
		}
		return strategyHandle{generational: epsmoea.New(objMin, eps, boolSlice(m, false))}, nil
	case config.GrEA:
		return strategyHandle{generational: grea.New(m, params.Strategy.GridDivisions, boolSlice(m, false))}, nil
	case config.PAES:
		return strategyHandle{generational: paes.New(m, params.Strategy.Depth, params.Strategy.ArchiveSize)}, nil
	case config.OMOPSO:
		return strategyHandle{swarm: pso.NewOMOPSO(dims, genMin, genMax, params.Strategy.Inertia, params.Strategy.Cognitive, params.Strategy.Social, params.Strategy.ArchiveSize, params.Strategy.TurbulenceRate)}, nil
	case config.SMPSO:
		return strategyHandle{swarm: pso.NewSMPSO(dims, genMin, genMax, params.Strategy.Inertia, params.Strategy.Cognitive, params.Strategy.Social, params.Strategy.ArchiveSize)}, nil
	case config.MOPSO:
		return strategyHandle{swarm: pso.NewMOPSO(dims, genMin, genMax, params.Strategy.Inertia, params.Strategy.Cognitive, params.Strategy.Social, params.Strategy.ArchiveSize, params.Strategy.GridDivisions)}, nil
	default:
		return strategyHandle{}, fmt.Errorf("unknown algorithm %q", params.Algorithm)
	}
}

// objectiveBounds reads declared per-objective bounds from the
// configuration; these are species-independent and used by NSGA-II's
// crowding-distance scaling and ε-MOEA's hypercube origin.
func objectiveBounds(params config.Parameters, m int) (min, max []float64) {
	min = make([]float64, m)
	max = make([]float64, m)
	for i, spec := range params.Evaluator.Objectives {
		min[i] = spec.Min
		max[i] = spec.Max
	}
	return min, max
}

// genomeBounds honours a declared species-space bound array when its
// length matches dims, otherwise falls back to a uniform [0,1] bound
// (the convention every real-vector benchmark here is normalised to).
func genomeBounds(declared []float64, dims int, which int) []float64 {
	if len(declared) == dims {
		return declared
	}
	fallback := 0.0
	if which == 1 {
		fallback = 1.0
	}
	return uniformSlice(dims, fallback)
}

func uniformSlice(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func boolSlice(n int, v bool) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// problemDimensions picks the genome length for the built-in benchmark
// named by params.Evaluator.Kind, falling back to DTLZ2's convention
// for any unrecognised kind.
func problemDimensions(params config.Parameters, m int) int {
	switch params.Evaluator.Kind {
	case "zdt1":
		return problems.ZDT1Dimensions
	default:
		return problems.DTLZ2Dimensions(m)
	}
}

func problemFunctions(params config.Parameters, m, dims int) []func(genome any) (float64, error) {
	switch params.Evaluator.Kind {
	case "zdt1":
		return problems.ZDT1(dims)
	default:
		return problems.DTLZ2(m)
	}
}

func randomPopulation(size, dims int, src rng.Source) solution.Population {
	out := make(solution.Population, size)
	for i := range out {
		values := make([]float64, dims)
		for j := range values {
			values[j] = src.Float64()
		}
		out[i] = solution.New(&operators.Genome{Values: values})
	}
	return out
}

func buildVariation(params config.Parameters, dims int) engine.VariationOperator {
	min := genomeBounds(params.Strategy.Min, dims, 0)
	max := genomeBounds(params.Strategy.Max, dims, 1)
	sbx := operators.SBX{Min: min, Max: max, P: params.Recombinator.Probability, Eta: 20}
	mutation := operators.PolynomialMutation{Min: min, Max: max, P: params.Mutator.Probability, Eta: 20}
	src := rng.New(params.Seed ^ 0xA5A5A5A5)

	return func(parents solution.Population) (solution.Population, error) {
		children, err := sbx.Recombine(src, parents)
		if err != nil {
			return nil, err
		}
		if err := mutation.Mutate(src, children); err != nil {
			return nil, err
		}
		return children, nil
	}
}

func report(result engine.Result) error {
	fmt.Printf("generations=%d evaluations=%d elapsed=%s\n", result.Generations, result.Evaluations, result.Elapsed)
	fmt.Printf("non-dominated front (%d members):\n", len(result.NonDominatedFront))
	for _, sol := range result.NonDominatedFront {
		fmt.Println(sol.Fitness.ObjectiveValues())
	}
	return nil
}
