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

// SwarmStrategy is the PSO-family analogue of strategy.Strategy, the
// swarm variant: it replaces generation/environmental
// selection with velocity/position updates, optional turbulence, and
// leader/memory bookkeeping.
type SwarmStrategy interface {
	// Initialize seeds per-particle memory and returns the initial
	// leader set.
	Initialize(ctx *strategy.Context, swarm solution.Population) (leaders solution.Population, err error)

	// UpdateVelocities recomputes every particle's velocity from its
	// personal best and the current leader set. Mutates swarm state the
	// strategy owns; does not touch ctx.Inhabitants.
	UpdateVelocities(ctx *strategy.Context) error

	// UpdatePositions advances every particle's position using the
	// velocities just computed, returning the moved (not yet evaluated)
	// swarm.
	UpdatePositions(ctx *strategy.Context) (solution.Population, error)

	// Turbulence optionally disturbs a fraction of the moved swarm
	// (OMOPSO-style mutation). Implementations that skip turbulence may
	// return moved unchanged.
	Turbulence(ctx *strategy.Context, moved solution.Population) (solution.Population, error)

	// UpdateLeaders refreshes the global leader archive from the
	// now-evaluated swarm, returning the new leader set.
	UpdateLeaders(ctx *strategy.Context, swarm solution.Population) (solution.Population, error)

	// UpdateMemories refreshes each particle's personal best: the
	// current position replaces the remembered best whenever it is at
	// least as good under the active comparator.
	UpdateMemories(ctx *strategy.Context, swarm solution.Population) error

	// Update performs end-of-generation bookkeeping (inertia/weight
	// schedules, mutation probability decay).
	Update(ctx *strategy.Context) error

	CreateSolutionComparator(components []comparator.Component) comparator.Solution
	FitnessPrototype() objective.Prototype
}

// SwarmConfig configures a SwarmDriver.
type SwarmConfig struct {
	Strategy  SwarmStrategy
	Evaluator objective.Evaluator
	Provider  Provider
	Context   *strategy.Context

	// Logger receives one Debug line per generation and an Info line on
	// the INIT/FINISHED transitions. Defaults to log.NoOp{} when nil.
	Logger log.Logger
}

// SwarmDriver runs the PSO-family loop: INIT evaluates the initial
// swarm and seeds leaders/memories; each RUNNING iteration moves the
// swarm, evaluates it, updates leaders and memories, then tests the
// same stopping predicates as Driver.
type SwarmDriver struct {
	cfg SwarmConfig

	state     State
	startedAt time.Time
	onGen     GenerationCallback
}

// NewSwarm returns a SwarmDriver in state INIT.
func NewSwarm(cfg SwarmConfig) *SwarmDriver {
	if cfg.Logger == nil {
		cfg.Logger = log.NoOp{}
	}
	return &SwarmDriver{cfg: cfg, state: StateInit}
}

// OnGeneration registers a per-generation callback.
func (d *SwarmDriver) OnGeneration(cb GenerationCallback) { d.onGen = cb }

// State returns the driver's current state.
func (d *SwarmDriver) State() State { return d.state }

// Run drives the full swarm INIT → RUNNING → FINISHED cycle.
func (d *SwarmDriver) Run(ctx context.Context) (Result, error) {
	if d.state != StateInit {
		return Result{}, fmt.Errorf("%w: swarm driver already started", errs.ErrConfiguration)
	}
	d.startedAt = time.Now()

	swarm := d.cfg.Provider()
	if len(swarm) == 0 {
		return Result{}, fmt.Errorf("%w: provider returned an empty swarm", errs.ErrInvalidPopulation)
	}
	if err := d.cfg.Evaluator.EvaluatePopulation(ctx, swarm); err != nil {
		return Result{}, err
	}

	leaders, err := d.cfg.Strategy.Initialize(d.cfg.Context, swarm)
	if err != nil {
		return Result{}, err
	}
	d.cfg.Context.Inhabitants = swarm
	d.cfg.Context.Archive = leaders
	if err := d.cfg.Strategy.UpdateMemories(d.cfg.Context, swarm); err != nil {
		return Result{}, err
	}

	d.state = StateRunning
	d.cfg.Logger.Info("swarm driver init",
		zap.Int("swarmSize", len(swarm)),
		zap.Int("archiveSize", len(leaders)),
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
	d.cfg.Logger.Info("swarm driver finished",
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

func (d *SwarmDriver) step(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c := d.cfg.Context
	c.Generation++

	if err := d.cfg.Strategy.UpdateVelocities(c); err != nil {
		return false, err
	}
	moved, err := d.cfg.Strategy.UpdatePositions(c)
	if err != nil {
		return false, err
	}
	disturbed, err := d.cfg.Strategy.Turbulence(c, moved)
	if err != nil {
		return false, err
	}
	if err := d.cfg.Evaluator.EvaluatePopulation(ctx, disturbed); err != nil {
		return false, err
	}

	leaders, err := d.cfg.Strategy.UpdateLeaders(c, disturbed)
	if err != nil {
		return false, err
	}
	if err := d.cfg.Strategy.UpdateMemories(c, disturbed); err != nil {
		return false, err
	}

	c.Inhabitants = disturbed
	c.Archive = leaders

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

	return stop || d.swarmShouldStop(c), nil
}

func (d *SwarmDriver) swarmShouldStop(c *strategy.Context) bool {
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
