// Package objective implements declared objectives with bounds
// and a maximisation flag, and the sequential/parallel evaluators that
// turn a genome into a stamped fitness.Fitness.
package objective

import (
	"fmt"

	"github.com/luxfi/moga/errs"
)

// Objective is one declared dimension of the fitness vector. It is
// immutable once built: the index, direction, and bounds are fixed at
// configuration time and never mutated during a run.
type Objective struct {
	index    int
	maximize bool
	min, max float64
	evaluate func(genome any) (float64, error)
}

// New returns an Objective at the given index, with the given direction
// and declared bounds, computed by evaluate.
func New(index int, maximize bool, min, max float64, evaluate func(genome any) (float64, error)) *Objective {
	return &Objective{index: index, maximize: maximize, min: min, max: max, evaluate: evaluate}
}

func (o *Objective) Index() int        { return o.index }
func (o *Objective) Maximize() bool    { return o.maximize }
func (o *Objective) Bounds() (float64, float64) { return o.min, o.max }

// Evaluate computes this objective's scalar for genome.
func (o *Objective) Evaluate(genome any) (float64, error) {
	v, err := o.evaluate(genome)
	if err != nil {
		return 0, fmt.Errorf("%w: objective %d: %v", errs.ErrFitnessShape, o.index, err)
	}
	return v, nil
}

// MaximizeFlags returns the direction of every objective in objs, in
// index order, for use by comparator.NewComponent.
func MaximizeFlags(objs []*Objective) []bool {
	out := make([]bool, len(objs))
	for i, o := range objs {
		out[i] = o.maximize
	}
	return out
}
