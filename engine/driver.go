// Package engine implements the generational driver: an
// INIT/RUNNING/FINISHED state machine that composes a strategy.Strategy
// with an objective.Evaluator and a caller-supplied variation operator,
// and the swarm variant that replaces generation/environmental-selection
// with particle movement.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/luxfi/moga/comparator"
	"github.com/luxfi/moga/errs"
	"github.com/luxfi/moga/log"
	"github.com/luxfi/moga/objective"
	"github.com/luxfi/moga/solution"
	"github.com/luxfi/moga/strategy"
)

// State is the driver's position in its state machine.
type State int

const (
	StateInit State = iota
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateRunning:
		return "RUNNING"
	case StateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// VariationOperator produces offspring from the parents returned by
// strategy.MatingSelection. It is the caller's recombination/mutation
// pipeline; the core treats it as an opaque collaborator.
type VariationOperator func(parents solution.Population) (solution.Population, error)

// Provider constructs the initial, unevaluated population.
type Provider func() solution.Population

// Config configures a Driver.
type Config struct {
	Strategy  strategy.Strategy
	Evaluator objective.Evaluator
	Provider  Provider
	Variation VariationOperator

	Context *strategy.Context

	// Logger receives one Debug line per generation and an Info line on
	// the INIT/FINISHED transitions. Defaults to log.NoOp{} when nil.
	Logger log.Logger
}

// Result is what a FINISHED driver exposes.
type Result struct {
	FinalPopulation   solution.Population
	FinalArchive      solution.Population
	NonDominatedFront solution.Population
	Elapsed           time.Duration
	Evaluations       uint64
	Generations       int
}

// GenerationCallback is invoked once per completed generation with a
// snapshot the caller may use for reporting; it must not mutate its
// arguments.
type GenerationCallback func(generation int, nonDominated solution.Population, archiveSize int)

// Driver runs the generational loop.
type Driver struct {
	cfg Config

	state     State
	startedAt time.Time
	onGen     GenerationCallback
}

// New returns a Driver in state INIT.
func New(cfg Config) *Driver {
	if cfg.Logger == nil {
		cfg.Logger = log.NoOp{}
	}
	return &Driver{cfg: cfg, state: StateInit}
}

// OnGeneration registers a callback invoked after every completed
// generation. Replaces any previously registered callback.
func (d *Driver) OnGeneration(cb GenerationCallback) { d.onGen = cb }

// State returns the driver's current state.
func (d *Driver) State() State { return d.state }

// Health reports the current generation, evaluation count, and state.
// It reads these fields without locking and does not synchronise with a
// Run in progress on another goroutine.
func (d *Driver) Health(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return map[string]any{
		"state":       d.state.String(),
		"generation":  d.cfg.Context.Generation,
		"evaluations": d.cfg.Evaluator.NumberOfEvaluations(),
	}, nil
}

// Run drives the full INIT → RUNNING → FINISHED cycle and returns the
// final Result. Run is not re-entrant: call it once per Driver.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	if d.state != StateInit {
		return Result{}, fmt.Errorf("%w: driver already started", errs.ErrConfiguration)
	}
	d.startedAt = time.Now()

	population := d.cfg.Provider()
	if len(population) == 0 {
		return Result{}, fmt.Errorf("%w: provider returned an empty population", errs.ErrInvalidPopulation)
	}
	if err := d.cfg.Evaluator.EvaluatePopulation(ctx, population); err != nil {
		return Result{}, err
	}

	archive, err := d.cfg.Strategy.Initialize(d.cfg.Context, population)
	if err != nil {
		return Result{}, err
	}
	d.cfg.Context.Inhabitants = population
	d.cfg.Context.Archive = archive

	d.state = StateRunning
	d.cfg.Logger.Info("driver init",
		zap.Int("populationSize", len(population)),
		zap.Int("archiveSize", len(archive)),
	)

	for {
		done, err := d.step(ctx)
		if err != nil {
			return Result{}, err
		}
		if done {
			break
		}
	}

	d.state = StateFinished
	nonDominated := nonDominatedOf(d.cfg.Context.Inhabitants, d.cfg.Context.Comparator)
	elapsed := time.Since(d.startedAt)
	evaluations := d.cfg.Evaluator.NumberOfEvaluations()
	d.cfg.Logger.Info("driver finished",
		zap.Int("generation", d.cfg.Context.Generation),
		zap.Int("archiveSize", len(d.cfg.Context.Archive)),
		zap.Uint64("evaluations", evaluations),
		zap.Duration("elapsed", elapsed),
	)
	return Result{
		FinalPopulation:   d.cfg.Context.Inhabitants,
		FinalArchive:      d.cfg.Context.Archive,
		NonDominatedFront: nonDominated,
		Elapsed:           elapsed,
		Evaluations:       evaluations,
		Generations:       d.cfg.Context.Generation,
	}, nil
}

// step runs one RUNNING iteration, returning true
// once the stopping predicate fires.
func (d *Driver) step(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c := d.cfg.Context
	c.Generation++

	parentsSet, err := d.cfg.Strategy.MatingSelection(c)
	if err != nil {
		return false, err
	}

	offspring, err := d.cfg.Variation(parentsSet)
	if err != nil {
		return false, err
	}
	if err := d.cfg.Evaluator.EvaluatePopulation(ctx, offspring); err != nil {
		return false, err
	}

	survivors, err := d.cfg.Strategy.EnvironmentalSelection(c, offspring)
	if err != nil {
		return false, err
	}
	if len(survivors) != c.TargetSize {
		return false, fmt.Errorf("%w: environmental selection returned %d survivors, want %d", errs.ErrInvalidPopulation, len(survivors), c.TargetSize)
	}

	newArchive, err := d.cfg.Strategy.UpdateArchive(c, offspring)
	if err != nil {
		return false, err
	}
	c.Archive = newArchive
	c.Inhabitants = survivors

	stop := false
	if err := d.cfg.Strategy.Update(c); err != nil {
		if !errors.Is(err, errs.ErrStop) {
			return false, err
		}
		stop = true
	}

	d.cfg.Logger.Debug("generation complete",
		zap.Int("generation", c.Generation),
		zap.Int("archiveSize", len(c.Archive)),
		zap.Uint64("evaluations", d.cfg.Evaluator.NumberOfEvaluations()),
	)

	if d.onGen != nil {
		d.onGen(c.Generation, nonDominatedOf(c.Inhabitants, c.Comparator), len(c.Archive))
	}

	return stop || d.shouldStop(c), nil
}

func (d *Driver) shouldStop(c *strategy.Context) bool {
	if c.MaxGenerations > 0 && c.Generation >= c.MaxGenerations {
		return true
	}
	if c.MaxEvaluations > 0 && d.cfg.Evaluator.NumberOfEvaluations() > c.MaxEvaluations {
		return true
	}
	for _, s := range c.Inhabitants {
		if s.Fitness.Acceptable() {
			return true
		}
	}
	return false
}

func nonDominatedOf(p solution.Population, cmp comparator.Solution) solution.Population {
	out := make(solution.Population, 0, len(p))
	for i, candidate := range p {
		dominated := false
		for j, other := range p {
			if i == j {
				continue
			}
			if cmp(other, candidate) > 0 {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, candidate)
		}
	}
	return out
}
