package comparator

import (
	"github.com/luxfi/moga/fitness"
	"github.com/luxfi/moga/solution"
)

// Solution compares two Solutions, returning +1/0/-1. Unlike Fitness,
// Solution never returns an error: a malformed fitness is a programmer
// error that strategies surface earlier, at evaluation time.
type Solution func(a, b *solution.Solution) int

// Plain wraps a Fitness comparator with no feasibility handling: it
// simply compares a.Fitness against b.Fitness.
func Plain(fc Fitness) Solution {
	return func(a, b *solution.Solution) int {
		s, err := fc.Compare(a.Fitness, b.Fitness)
		if err != nil {
			return 0
		}
		return s
	}
}

// ByObjective returns a Solution comparator that orders strictly by a
// single objective index, using comp as that objective's Component.
func ByObjective(index int, comp Component) Solution {
	return func(a, b *solution.Solution) int {
		av, aerr := a.Fitness.ObjectiveValue(index)
		bv, berr := b.Fitness.ObjectiveValue(index)
		if aerr != nil || berr != nil {
			return 0
		}
		return comp(av, bv)
	}
}

// Constrained wraps fc so that any feasibility difference decides the
// comparison before fc is consulted at all: a feasible solution always
// beats an infeasible one, and two infeasible solutions are treated as
// equivalent regardless of their InfeasibilityDegree (NSGA2Constrained
// below is the variant that breaks that tie by degree).
func Constrained(fc Fitness) Solution {
	return func(a, b *solution.Solution) int {
		af, bf := a.Fitness, b.Fitness
		ai, bi := af.Infeasible(), bf.Infeasible()
		switch {
		case ai && !bi:
			return -1
		case !ai && bi:
			return 1
		case ai && bi:
			return 0
		}
		s, err := fc.Compare(af, bf)
		if err != nil {
			return 0
		}
		return s
	}
}

// RankedFitness is implemented by a fitness extension carrying a
// non-dominated front rank and a secondary density estimate (NSGA-II's
// crowding distance, NSGA-III's niche distance, ...). NSGA2Constrained
// reads it to break ties inside a feasibility class.
type RankedFitness interface {
	Rank() int
	Density() float64
}

// NSGA2Constrained implements the constrained-dominance comparator used
// by NSGA-II and its descendants: feasibility dominates first, as in
// Constrained; among two infeasible solutions the smaller infeasibility
// degree wins and equal degrees compare as equivalent (rank is not
// consulted); among two feasible solutions, a lower front rank wins;
// among equal ranks, a larger
// density (crowding distance) wins, since a more isolated solution is
// preferred.
func NSGA2Constrained(extractor func(f fitness.Fitness) (RankedFitness, bool)) Solution {
	return func(a, b *solution.Solution) int {
		af, bf := a.Fitness, b.Fitness
		ai, bi := af.Infeasible(), bf.Infeasible()
		switch {
		case ai && !bi:
			return -1
		case !ai && bi:
			return 1
		case ai && bi:
			ad, bd := af.InfeasibilityDegree(), bf.InfeasibilityDegree()
			switch {
			case ad < bd:
				return 1
			case ad > bd:
				return -1
			default:
				return 0
			}
		}
		ar, aok := extractor(af)
		br, bok := extractor(bf)
		if !aok || !bok {
			return 0
		}
		if ar.Rank() != br.Rank() {
			if ar.Rank() < br.Rank() {
				return 1
			}
			return -1
		}
		switch {
		case ar.Density() > br.Density():
			return 1
		case ar.Density() < br.Density():
			return -1
		default:
			return 0
		}
	}
}
