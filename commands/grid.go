package commands

import (
	"fmt"
	"math"

	"github.com/luxfi/moga/errs"
)

// HypercubePartition maps an objective vector onto an integer grid cell,
// used by epsilon-MOEA (box membership) and GrEA (grid ranking). Both
// a fixed-width form (explicit cell length per objective)
// and a fixed-count form (K cells spanning declared bounds per
// objective) are supported.
type HypercubePartition struct {
	min, max []float64
	widths   []float64
}

// NewFixedWidthPartition seeds a partition with an explicit cell length
// per objective (the epsilon vector of epsilon-dominance).
func NewFixedWidthPartition(min []float64, widths []float64) *HypercubePartition {
	return &HypercubePartition{min: min, widths: widths}
}

// NewFixedCountPartition seeds a partition with K equal-width cells per
// objective spanning [min[i], max[i]] (GrEA's grid).
func NewFixedCountPartition(min, max []float64, k int) (*HypercubePartition, error) {
	if len(min) != len(max) {
		return nil, fmt.Errorf("%w: bound length mismatch", errs.ErrFitnessShape)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: grid count K must be positive", errs.ErrConfiguration)
	}
	widths := make([]float64, len(min))
	for i := range widths {
		span := max[i] - min[i]
		if span == 0 {
			widths[i] = 1
			continue
		}
		widths[i] = span / float64(k)
	}
	return &HypercubePartition{min: min, max: max, widths: widths}, nil
}

// Coordinates returns the integer grid cell containing v.
func (p *HypercubePartition) Coordinates(v []float64) ([]int, error) {
	if len(v) != len(p.min) {
		return nil, fmt.Errorf("%w: vector length %d does not match %d declared objectives", errs.ErrFitnessShape, len(v), len(p.min))
	}
	out := make([]int, len(v))
	for i, x := range v {
		out[i] = int(math.Floor((x - p.min[i]) / p.widths[i]))
	}
	return out, nil
}

// Widths returns the per-objective cell width used by this partition.
func (p *HypercubePartition) Widths() []float64 { return p.widths }

// CellBounds returns the lower and upper bound of the cell at coords,
// one pair of corners per objective.
func (p *HypercubePartition) CellBounds(coords []int) (lo, hi []float64) {
	lo = make([]float64, len(coords))
	hi = make([]float64, len(coords))
	for i, c := range coords {
		lo[i] = p.min[i] + float64(c)*p.widths[i]
		hi[i] = lo[i] + p.widths[i]
	}
	return lo, hi
}
