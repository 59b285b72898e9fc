package objective

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"

	"github.com/luxfi/moga/errs"
	"github.com/luxfi/moga/fitness"
	"github.com/luxfi/moga/solution"
)

// Prototype returns a fresh, strategy-stamped fitness ready to receive
// objective values. Strategies supply this via
// strategy.Strategy.FitnessPrototype.
type Prototype func() fitness.Fitness

// Evaluator owns the declared objectives, a fitness prototype, and an
// evaluation counter. evaluate(solution) clones the prototype, invokes
// every objective, stores the returned scalars, and attaches the result
// to the solution.
type Evaluator interface {
	Evaluate(ctx context.Context, s *solution.Solution) error
	EvaluatePopulation(ctx context.Context, p solution.Population) error
	NumberOfEvaluations() uint64
	Objectives() []*Objective
}

type base struct {
	objectives []*Objective
	prototype  Prototype
	count      atomic.Uint64
}

func (b *base) Objectives() []*Objective    { return b.objectives }
func (b *base) NumberOfEvaluations() uint64 { return b.count.Load() }

func (b *base) evaluateOne(solutionIndex int, s *solution.Solution) error {
	f := b.prototype()
	var combined error
	for _, obj := range b.objectives {
		v, err := obj.Evaluate(s.Genome)
		if err != nil {
			combined = multierr.Append(combined, &errs.EvaluatorFailure{
				ObjectiveIndex: obj.Index(),
				SolutionIndex:  solutionIndex,
				Err:            err,
			})
			continue
		}
		if serr := f.SetObjectiveValue(obj.Index(), v); serr != nil {
			combined = multierr.Append(combined, serr)
		}
	}
	s.Fitness = f
	b.count.Add(1)
	return combined
}

// sequential evaluates one solution at a time, in input order.
type sequential struct{ base }

// NewSequential returns an Evaluator that evaluates solutions one at a
// time, in the order given.
func NewSequential(objectives []*Objective, prototype Prototype) Evaluator {
	e := &sequential{}
	e.objectives = objectives
	e.prototype = prototype
	return e
}

func (e *sequential) Evaluate(ctx context.Context, s *solution.Solution) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.evaluateOne(0, s)
}

func (e *sequential) EvaluatePopulation(ctx context.Context, p solution.Population) error {
	var combined error
	for i, s := range p {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.evaluateOne(i, s); err != nil {
			combined = multierr.Append(combined, err)
		}
	}
	return combined
}

// parallel fans evaluation out across a fixed worker pool. Each
// solution's evaluation is independent: no objective touches shared
// mutable state, so the only coordination needed is a work queue and a
// WaitGroup barrier. The effective order of p is preserved (each worker
// writes s.Fitness back into the same *Solution it read), even though
// the evaluations complete in real time out of order.
type parallel struct {
	base
	workers int
}

// NewParallel returns an Evaluator that fans EvaluatePopulation out
// across runtime.NumCPU() workers. Evaluate (single-solution) runs
// inline; there is nothing to parallelise for one solution.
func NewParallel(objectives []*Objective, prototype Prototype) Evaluator {
	e := &parallel{workers: runtime.NumCPU()}
	e.objectives = objectives
	e.prototype = prototype
	return e
}

func (e *parallel) Evaluate(ctx context.Context, s *solution.Solution) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.evaluateOne(0, s)
}

func (e *parallel) EvaluatePopulation(ctx context.Context, p solution.Population) error {
	if len(p) == 0 {
		return nil
	}
	work := make(chan int, len(p))
	var mu sync.Mutex
	var combined error
	var wg sync.WaitGroup

	workers := e.workers
	if workers > len(p) {
		workers = len(p)
	}
	if workers < 1 {
		workers = 1
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				if ctx.Err() != nil {
					return
				}
				if err := e.evaluateOne(i, p[i]); err != nil {
					mu.Lock()
					combined = multierr.Append(combined, err)
					mu.Unlock()
				}
			}
		}()
	}
	for i := range p {
		work <- i
	}
	close(work)
	wg.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return combined
}
