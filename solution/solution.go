// Package solution implements the opaque-genome data model: a
// Solution pairs a genome the core never inspects with a Fitness the
// core reasons about, and Population/Offspring/Archive are ordered,
// independently-owned lists of Solutions.
package solution

import "github.com/luxfi/moga/fitness"

// Cloner is implemented by genomes that need custom deep-copy semantics
// (e.g. a real-valued vector backed by a slice). Genomes that don't
// implement it are copied by value, which is correct for any genome type
// that is itself a value type or that the variation operator never
// mutates in place.
type Cloner interface {
	CloneGenome() any
}

// Solution is an opaque genome plus its fitness. The core never inspects
// Genome; only the variation operator and species that produced it do.
type Solution struct {
	Genome  any
	Fitness fitness.Fitness
}

// New wraps a genome with no fitness yet (pre-evaluation).
func New(genome any) *Solution {
	return &Solution{Genome: genome}
}

// Clone returns an independent Solution: the genome is deep-copied via
// Cloner if the genome implements it, and the fitness is deep-copied via
// fitness.Fitness.Clone. Used whenever the same logical solution must
// appear in two lists at once (e.g. the archive retaining an independent
// copy of what the population held).
func (s *Solution) Clone() *Solution {
	clone := &Solution{Genome: s.Genome}
	if c, ok := s.Genome.(Cloner); ok {
		clone.Genome = c.CloneGenome()
	}
	if s.Fitness != nil {
		clone.Fitness = s.Fitness.Clone()
	}
	return clone
}

// Population is an ordered, exclusively-owned list of solutions. The same
// type is used for the driver's current inhabitants, its offspring,
// leader sets, and swarms; the archive is the one list a strategy owns
// instead (see strategy.Context).
type Population []*Solution

// Clone returns a population whose elements are independent copies.
func (p Population) Clone() Population {
	out := make(Population, len(p))
	for i, s := range p {
		out[i] = s.Clone()
	}
	return out
}

// Genomes returns the genomes of p in order, useful for a variation
// operator that wants to ignore fitness entirely.
func (p Population) Genomes() []any {
	out := make([]any, len(p))
	for i, s := range p {
		out[i] = s.Genome
	}
	return out
}

// ObjectiveMatrix returns the objective values of every solution in p, in
// order. Every element of p must carry a non-nil Fitness of equal M;
// callers in commands/ rely on this.
func (p Population) ObjectiveMatrix() [][]float64 {
	out := make([][]float64, len(p))
	for i, s := range p {
		out[i] = s.Fitness.ObjectiveValues()
	}
	return out
}
