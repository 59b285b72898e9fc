// Package config implements the external configuration surface: a
// nested key-value tree supplying algorithm/strategy kind and keys,
// evaluator/objective declarations, species/genotype schema, RNG seed,
// population/generation/evaluation limits, operator probabilities, and
// reporting. The core only consumes this; it never parses it from a
// file (that is the surrounding reporter/loader's job, out of scope for
// the core).
package config

import "time"

// AlgorithmKind selects which strategy family a run uses.
type AlgorithmKind string

const (
	NSGA2    AlgorithmKind = "nsga2"
	NSGA3    AlgorithmKind = "nsga3"
	SPEA2    AlgorithmKind = "spea2"
	MOEAD    AlgorithmKind = "moead"
	RVEA     AlgorithmKind = "rvea"
	EpsMOEA  AlgorithmKind = "epsmoea"
	GrEA     AlgorithmKind = "grea"
	PAES     AlgorithmKind = "paes"
	OMOPSO   AlgorithmKind = "omopso"
	SMPSO    AlgorithmKind = "smpso"
	MOPSO    AlgorithmKind = "mopso"
)

// ScalarizationKind selects MOEA/D's decomposition function.
type ScalarizationKind string

const (
	WeightedSum  ScalarizationKind = "weighted_sum"
	Tchebycheff  ScalarizationKind = "tchebycheff"
	PBI          ScalarizationKind = "pbi"
)

// ObjectiveSpec declares one objective's direction and bounds.
type ObjectiveSpec struct {
	Maximize bool    `yaml:"maximize"`
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
	Kind     string  `yaml:"kind"`
}

// StrategySpec carries the strategy-specific keys:
// Das-Dennis resolutions, neighbourhood size, scalarisation kind,
// epsilon/grid divisions, and archive size caps. Not every field is
// meaningful for every AlgorithmKind; Validate checks the ones the
// selected kind requires.
type StrategySpec struct {
	// NSGA-III / RVEA reference-direction resolution.
	P1 int `yaml:"p1"`
	P2 int `yaml:"p2"`

	// GrEA and MOPSO grid divisions per objective (epsilon-MOEA uses the
	// Epsilon widths instead).
	GridDivisions int `yaml:"gridDivisions"`

	// PAES adaptive-grid depth.
	Depth int `yaml:"depth"`

	// MOEA/D neighbourhood size, replacement cap, and scalarisation.
	NeighborhoodSize int               `yaml:"neighborhoodSize"`
	MaxReplacements  int               `yaml:"maxReplacements"`
	Scalarization    ScalarizationKind `yaml:"scalarization"`

	// Archive size cap read by PAES and the PSO family's leader archive.
	ArchiveSize int `yaml:"archiveSize"`

	// RVEA's angle-penalty exponent (alpha): the penalty scales with
	// (generation/maxGenerations)^alpha.
	Alpha float64 `yaml:"alpha"`

	// RVEA's vector re-adaptation frequency, as a fraction of maxGenerations.
	Fr float64 `yaml:"fr"`

	// Epsilon-MOEA's per-objective hypercube width and PSO's bound arrays.
	Epsilon []float64 `yaml:"epsilon"`
	Min     []float64 `yaml:"min"`
	Max     []float64 `yaml:"max"`

	// PSO inertia/cognitive/social coefficients and turbulence rate.
	Inertia        float64 `yaml:"inertia"`
	Cognitive      float64 `yaml:"cognitive"`
	Social         float64 `yaml:"social"`
	TurbulenceRate float64 `yaml:"turbulenceRate"`
}

// EvaluatorSpec declares the evaluator kind and its objectives.
type EvaluatorSpec struct {
	Kind       string          `yaml:"kind"`
	Objectives []ObjectiveSpec `yaml:"objectives"`
	Parallel   bool            `yaml:"parallel"`
}

// SpeciesSpec declares the genotype schema (opaque to the core; carried
// only so a loader can hand it to the caller's variation operator).
type SpeciesSpec struct {
	Kind   string         `yaml:"kind"`
	Schema map[string]any `yaml:"schema"`
}

// OperatorSpec declares a variation operator kind and its probability.
type OperatorSpec struct {
	Kind        string  `yaml:"kind"`
	Probability float64 `yaml:"probability"`
}

// ReportingSpec declares listener/reporter keys; the core never acts on
// these itself (reporters are an external collaborator) but
// carries them so a run's configuration is self-describing end to end.
type ReportingSpec struct {
	Kind      string `yaml:"kind"`
	Frequency int    `yaml:"frequency"`
	FileName  string `yaml:"fileName"`
}

// Parameters is the full external configuration consumed by a run.
type Parameters struct {
	Algorithm AlgorithmKind `yaml:"algorithm"`
	Strategy  StrategySpec  `yaml:"strategy"`
	Evaluator EvaluatorSpec `yaml:"evaluator"`
	Species   SpeciesSpec   `yaml:"species"`

	Seed uint64 `yaml:"seed"`

	PopulationSize int    `yaml:"populationSize"`
	MaxGenerations int    `yaml:"maxGenerations"`
	MaxEvaluations uint64 `yaml:"maxEvaluations"`

	Mutator      OperatorSpec `yaml:"mutator"`
	Recombinator OperatorSpec `yaml:"recombinator"`

	Reporting ReportingSpec `yaml:"reporting"`

	Timeout time.Duration `yaml:"timeout"`
}

// Default returns a small, fast NSGA-II configuration suitable for
// smoke tests and local experimentation.
func Default() Parameters {
	return Parameters{
		Algorithm: NSGA2,
		Evaluator: EvaluatorSpec{
			Kind: "real-valued",
			Objectives: []ObjectiveSpec{
				{Maximize: false, Min: 0, Max: 1},
				{Maximize: false, Min: 0, Max: 1},
			},
		},
		Species:        SpeciesSpec{Kind: "real-vector"},
		Seed:           1,
		PopulationSize: 100,
		MaxGenerations: 250,
		MaxEvaluations: 0,
		Mutator:        OperatorSpec{Kind: "polynomial", Probability: 0.1},
		Recombinator:   OperatorSpec{Kind: "sbx", Probability: 0.9},
		Reporting:      ReportingSpec{Frequency: 10},
		Timeout:        0,
	}
}

// ManyObjective returns a larger NSGA-III configuration sized for
// problems with more than three objectives, where Das-Dennis reference
// directions replace crowding distance.
func ManyObjective() Parameters {
	p := Default()
	p.Algorithm = NSGA3
	p.PopulationSize = 210
	p.MaxGenerations = 500
	p.Strategy.P1 = 6
	p.Strategy.P2 = -1
	p.Evaluator.Objectives = []ObjectiveSpec{
		{Maximize: false, Min: 0, Max: 1},
		{Maximize: false, Min: 0, Max: 1},
		{Maximize: false, Min: 0, Max: 1},
		{Maximize: false, Min: 0, Max: 1},
		{Maximize: false, Min: 0, Max: 1},
	}
	return p
}

// Swarm returns an OMOPSO-family configuration.
func Swarm() Parameters {
	p := Default()
	p.Algorithm = OMOPSO
	p.Strategy.ArchiveSize = 100
	p.Strategy.Depth = 5
	p.Mutator = OperatorSpec{Kind: "uniform+non-uniform", Probability: 1.0 / 3}
	return p
}
