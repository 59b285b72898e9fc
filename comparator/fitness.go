package comparator

import (
	"fmt"

	"github.com/luxfi/moga/errs"
	"github.com/luxfi/moga/fitness"
)

// Fitness compares two M-dimensional fitness values, returning +1/0/-1.
// Implementations must return an error wrapping errs.ErrFitnessShape when
// a and b disagree on M.
type Fitness interface {
	Compare(a, b fitness.Fitness) (int, error)
}

func checkShape(a, b fitness.Fitness) error {
	if a.NumObjectives() != b.NumObjectives() {
		return fmt.Errorf("%w: %d vs %d objectives", errs.ErrFitnessShape, a.NumObjectives(), b.NumObjectives())
	}
	return nil
}

// pareto implements strict Pareto dominance: for each
// objective i let cᵢ be the component comparator. Return 0 if the signs
// of cᵢ disagree anywhere (mutually non-dominating); otherwise the common
// sign, with 0 components treated as neutral.
type pareto struct {
	components []Component
}

// NewPareto returns a Fitness comparator applying one Component per
// objective, in declared order. len(components) must equal every
// compared fitness's M.
func NewPareto(components []Component) Fitness {
	return &pareto{components: components}
}

func (p *pareto) Compare(a, b fitness.Fitness) (int, error) {
	if err := checkShape(a, b); err != nil {
		return 0, err
	}
	if len(p.components) != a.NumObjectives() {
		return 0, fmt.Errorf("%w: %d components for %d objectives", errs.ErrFitnessShape, len(p.components), a.NumObjectives())
	}
	av, bv := a.ObjectiveValues(), b.ObjectiveValues()
	sign := 0
	for i, c := range p.components {
		s := c(av[i], bv[i])
		if s == 0 {
			continue
		}
		switch {
		case sign == 0:
			sign = s
		case sign != s:
			return 0, nil
		}
	}
	return sign, nil
}

// lexicographic decides by the first non-zero component comparator along
// declared order.
type lexicographic struct {
	components []Component
}

// NewLexicographic returns a Fitness comparator that breaks ties
// left-to-right through the declared objective order.
func NewLexicographic(components []Component) Fitness {
	return &lexicographic{components: components}
}

func (l *lexicographic) Compare(a, b fitness.Fitness) (int, error) {
	if err := checkShape(a, b); err != nil {
		return 0, err
	}
	av, bv := a.ObjectiveValues(), b.ObjectiveValues()
	for i, c := range l.components {
		if s := c(av[i], bv[i]); s != 0 {
			return s, nil
		}
	}
	return 0, nil
}

// scalarValue compares fitness.Value(), which acts like maximisation
// unless inverted is set (scalar-decomposition strategies store a cost,
// where smaller is better, and set inverted=true).
type scalarValue struct {
	inverted bool
}

// NewScalarValue returns a Fitness comparator over Fitness.Value().
func NewScalarValue(inverted bool) Fitness {
	return &scalarValue{inverted: inverted}
}

func (s *scalarValue) Compare(a, b fitness.Fitness) (int, error) {
	if err := checkShape(a, b); err != nil {
		return 0, err
	}
	av, bv := a.Value(), b.Value()
	switch {
	case av == bv:
		return 0, nil
	case (av > bv) != s.inverted:
		return 1, nil
	default:
		return -1, nil
	}
}

// HypercubeCoords is implemented by a fitness extension that carries
// integer grid coordinates (epsilon-MOEA, GrEA). EpsilonDominance reads
// through this rather than raw objective values.
type HypercubeCoords interface {
	HypercubeCoordinates() []int
}

// epsilonDominance applies Pareto dominance to hypercube coordinates
// instead of raw objective values, yielding a coarser equivalence
// ("ε-dominance").
type epsilonDominance struct {
	maximize []bool
}

// NewEpsilonDominance returns a Fitness comparator that Pareto-compares
// the hypercube coordinates attached to a and b's extension. maximize[i]
// controls whether a larger coordinate on axis i is better.
func NewEpsilonDominance(maximize []bool) Fitness {
	return &epsilonDominance{maximize: maximize}
}

func (e *epsilonDominance) Compare(a, b fitness.Fitness) (int, error) {
	if err := checkShape(a, b); err != nil {
		return 0, err
	}
	ac, ok := a.Extension().(HypercubeCoords)
	if !ok {
		return 0, fmt.Errorf("%w: fitness extension %T has no hypercube coordinates", errs.ErrFitnessShape, a.Extension())
	}
	bc, ok := b.Extension().(HypercubeCoords)
	if !ok {
		return 0, fmt.Errorf("%w: fitness extension %T has no hypercube coordinates", errs.ErrFitnessShape, b.Extension())
	}
	ah, bh := ac.HypercubeCoordinates(), bc.HypercubeCoordinates()
	if len(ah) != len(bh) || len(ah) != len(e.maximize) {
		return 0, fmt.Errorf("%w: hypercube coordinate length mismatch", errs.ErrFitnessShape)
	}
	sign := 0
	for i := range ah {
		var s int
		switch {
		case ah[i] == bh[i]:
			s = 0
		case (ah[i] > bh[i]) == e.maximize[i]:
			s = 1
		default:
			s = -1
		}
		if s == 0 {
			continue
		}
		switch {
		case sign == 0:
			sign = s
		case sign != s:
			return 0, nil
		}
	}
	return sign, nil
}
