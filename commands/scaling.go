package commands

import (
	"fmt"

	"github.com/luxfi/moga/errs"
	"github.com/luxfi/moga/solution"
)

// ObjectiveScaler rewrites every objective value of a population into
// [0,1] given declared bounds: v' = (v-min)/(max-min). An objective
// whose bounds coincide maps every value to 0.
type ObjectiveScaler struct {
	population solution.Population
	min, max   []float64
}

// NewObjectiveScaler seeds the command with declared bounds.
func NewObjectiveScaler(population solution.Population, min, max []float64) *ObjectiveScaler {
	return &ObjectiveScaler{population: population, min: min, max: max}
}

// Execute rewrites every solution's objective values in place.
func (c *ObjectiveScaler) Execute() error {
	if len(c.population) == 0 {
		return fmt.Errorf("%w: scaling needs at least one solution", errs.ErrInvalidPopulation)
	}
	for _, s := range c.population {
		values := s.Fitness.ObjectiveValues()
		if len(values) != len(c.min) || len(values) != len(c.max) {
			return fmt.Errorf("%w: scaling bounds length mismatch", errs.ErrFitnessShape)
		}
		for i, v := range values {
			span := c.max[i] - c.min[i]
			if span == 0 {
				values[i] = 0
				continue
			}
			values[i] = (v - c.min[i]) / span
		}
		s.Fitness.SetObjectiveValues(values)
	}
	return nil
}

// ObjectiveScalerNoBounds scales using the population's own observed
// min/max per objective instead of declared bounds, for strategies that
// normalise against the current generation's spread (NSGA-III's
// ideal/nadir normalisation).
type ObjectiveScalerNoBounds struct {
	population solution.Population

	min, max []float64
}

// NewObjectiveScalerNoBounds seeds the command.
func NewObjectiveScalerNoBounds(population solution.Population) *ObjectiveScalerNoBounds {
	return &ObjectiveScalerNoBounds{population: population}
}

// Execute computes the observed bounds and rewrites every solution's
// objective values in place. ObservedMin/ObservedMax expose the bounds
// used.
func (c *ObjectiveScalerNoBounds) Execute() error {
	if len(c.population) == 0 {
		return fmt.Errorf("%w: scaling needs at least one solution", errs.ErrInvalidPopulation)
	}
	m := c.population[0].Fitness.NumObjectives()
	min := make([]float64, m)
	max := make([]float64, m)
	for i := range min {
		v, _ := c.population[0].Fitness.ObjectiveValue(i)
		min[i], max[i] = v, v
	}
	for _, s := range c.population[1:] {
		values := s.Fitness.ObjectiveValues()
		for i, v := range values {
			if v < min[i] {
				min[i] = v
			}
			if v > max[i] {
				max[i] = v
			}
		}
	}

	c.min, c.max = min, max
	for _, s := range c.population {
		values := s.Fitness.ObjectiveValues()
		for i, v := range values {
			span := max[i] - min[i]
			if span == 0 {
				values[i] = 0
				continue
			}
			values[i] = (v - min[i]) / span
		}
		s.Fitness.SetObjectiveValues(values)
	}
	return nil
}

// ObservedMin returns the per-objective minimum computed by Execute.
func (c *ObjectiveScalerNoBounds) ObservedMin() []float64 { return c.min }

// ObservedMax returns the per-objective maximum computed by Execute.
func (c *ObjectiveScalerNoBounds) ObservedMax() []float64 { return c.max }

// ObjectiveInverter negates every objective value of a population,
// turning a maximisation view into a minimisation view or back.
type ObjectiveInverter struct {
	population solution.Population
}

// NewObjectiveInverter seeds the command.
func NewObjectiveInverter(population solution.Population) *ObjectiveInverter {
	return &ObjectiveInverter{population: population}
}

// Execute negates every solution's objective values in place.
func (c *ObjectiveInverter) Execute() error {
	if len(c.population) == 0 {
		return fmt.Errorf("%w: inversion needs at least one solution", errs.ErrInvalidPopulation)
	}
	for _, s := range c.population {
		values := s.Fitness.ObjectiveValues()
		for i, v := range values {
			values[i] = -v
		}
		s.Fitness.SetObjectiveValues(values)
	}
	return nil
}
