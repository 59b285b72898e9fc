// Package fitness implements the multi-objective fitness algebra: an
// ordered vector of objective values plus an optional aggregated scalar,
// an acceptability flag, feasibility bookkeeping, and a strategy-owned
// extension slot.
//
// The deep inheritance of the source material (MOFitness -> NSGA2MOFitness
// -> NSGA3MOFitness, ...) is deliberately not reproduced. Instead Base
// carries every field common to all strategies, and each strategy package
// declares its own small extension struct (front rank + crowding for
// NSGA-II, normalised objectives + reference index for NSGA-III, ...)
// stored in the Ext slot as a tagged variant. See Extension/SetExtension.
package fitness

import (
	"fmt"

	"github.com/luxfi/moga/errs"
)

// Fitness is the contract every strategy's extended fitness type satisfies.
// Base implements it directly; strategy packages use Base as is and keep
// their own data in its extension slot (SetExtension).
type Fitness interface {
	NumObjectives() int
	ObjectiveValues() []float64
	ObjectiveValue(i int) (float64, error)
	SetObjectiveValues(vs []float64)
	SetObjectiveValue(i int, v float64) error

	Value() float64
	SetValue(v float64)

	Acceptable() bool
	SetAcceptable(b bool)

	// Infeasible/InfeasibilityDegree back the Constrained and NSGA-II
	// constrained solution comparators.
	Infeasible() bool
	SetInfeasible(b bool)
	InfeasibilityDegree() float64
	SetInfeasibilityDegree(d float64)

	// Extension returns the strategy-owned payload stamped by the
	// evaluator's fitness prototype, or nil if none was stamped.
	Extension() any
	SetExtension(ext any)

	Clone() Fitness
	Equal(other Fitness) bool
}

// Base is the common fitness representation shared by every strategy.
// Strategy packages store their per-solution data in its extension slot.
type Base struct {
	values               []float64
	value                float64
	acceptable           bool
	infeasible           bool
	infeasibilityDegree  float64
	ext                  any
}

// New returns a Base with m objective slots, all zero.
func New(m int) *Base {
	return &Base{values: make([]float64, m)}
}

// FromValues returns a Base initialised from vs. vs is copied.
func FromValues(vs []float64) *Base {
	b := &Base{values: make([]float64, len(vs))}
	copy(b.values, vs)
	return b
}

func (b *Base) NumObjectives() int { return len(b.values) }

func (b *Base) ObjectiveValues() []float64 {
	out := make([]float64, len(b.values))
	copy(out, b.values)
	return out
}

func (b *Base) ObjectiveValue(i int) (float64, error) {
	if i < 0 || i >= len(b.values) {
		return 0, fmt.Errorf("%w: objective index %d out of [0,%d)", errs.ErrInvalidIndex, i, len(b.values))
	}
	return b.values[i], nil
}

func (b *Base) SetObjectiveValues(vs []float64) {
	if len(b.values) != len(vs) {
		b.values = make([]float64, len(vs))
	}
	copy(b.values, vs)
}

func (b *Base) SetObjectiveValue(i int, v float64) error {
	if i < 0 || i >= len(b.values) {
		return fmt.Errorf("%w: objective index %d out of [0,%d)", errs.ErrInvalidIndex, i, len(b.values))
	}
	b.values[i] = v
	return nil
}

func (b *Base) Value() float64      { return b.value }
func (b *Base) SetValue(v float64)  { b.value = v }

func (b *Base) Acceptable() bool       { return b.acceptable }
func (b *Base) SetAcceptable(a bool)   { b.acceptable = a }

func (b *Base) Infeasible() bool            { return b.infeasible }
func (b *Base) SetInfeasible(inf bool)      { b.infeasible = inf }
func (b *Base) InfeasibilityDegree() float64 { return b.infeasibilityDegree }
func (b *Base) SetInfeasibilityDegree(d float64) {
	b.infeasibilityDegree = d
}

func (b *Base) Extension() any        { return b.ext }
func (b *Base) SetExtension(ext any)  { b.ext = ext }

// Clone returns a copy whose objective values, scalar value and flags
// are independent of b. The extension is not copied: the clone holds the
// same ext value as b, so a pointer extension is shared by both.
// Strategies that need an independent extension replace it on the clone
// (see cloneWithExt in strategies/nsga2).
func (b *Base) Clone() Fitness {
	clone := &Base{
		values:              make([]float64, len(b.values)),
		value:               b.value,
		acceptable:          b.acceptable,
		infeasible:          b.infeasible,
		infeasibilityDegree: b.infeasibilityDegree,
		ext:                 b.ext,
	}
	copy(clone.values, b.values)
	return clone
}

// Equal reports value equality over (M, values, scalar value). Extensions
// and the acceptable flag are not compared: they are derived bookkeeping,
// not part of the fitness's logical value.
func (b *Base) Equal(other Fitness) bool {
	o, ok := other.(*Base)
	if !ok {
		return false
	}
	if len(b.values) != len(o.values) || b.value != o.value {
		return false
	}
	for i, v := range b.values {
		if v != o.values[i] {
			return false
		}
	}
	return true
}

// RequireExtension type-asserts f.Extension() to *T, returning
// errs.ErrFitnessShape if the fitness carries no extension or an
// extension of the wrong type. Strategy packages call this from every
// method that reads strategy-private fields: a strategy that reads an
// extension from a fitness it did not itself create fails with a
// programmer-error kind rather than silently misbehaving.
func RequireExtension[T any](f Fitness) (*T, error) {
	ext, ok := f.Extension().(*T)
	if !ok {
		return nil, fmt.Errorf("%w: fitness extension is %T, want %T", errs.ErrFitnessShape, f.Extension(), (*T)(nil))
	}
	return ext, nil
}
