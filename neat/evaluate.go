package neat

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// EvalFunc computes the fitness of a single agent. It must only read the agent.
type EvalFunc func(ctx context.Context, a *Agent) (float64, error)

// ParallelFitness returns a FitnessFunc that evaluates agents on at most workers
// goroutines (workers <= 0 means one per agent). Each worker writes only its own
// agent's fitness. The first failing evaluation cancels the rest and its error is
// returned.
func ParallelFitness(workers int, eval EvalFunc) FitnessFunc {
	return func(ctx context.Context, agents []*Agent) error {
		g, gCtx := errgroup.WithContext(ctx)
		if workers > 0 {
			g.SetLimit(workers)
		}
		for _, a := range agents {
			g.Go(func() error {
				if err := gCtx.Err(); err != nil {
					return err
				}
				f, err := eval(gCtx, a)
				if err != nil {
					return fmt.Errorf("evaluating agent %d: %w", a.ID, err)
				}
				a.SetFitness(f)
				return nil
			})
		}
		return g.Wait()
	}
}

// SerialFitness returns a FitnessFunc that evaluates agents one after another.
func SerialFitness(eval EvalFunc) FitnessFunc {
	return func(ctx context.Context, agents []*Agent) error {
		for _, a := range agents {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := eval(ctx, a)
			if err != nil {
				return fmt.Errorf("evaluating agent %d: %w", a.ID, err)
			}
			a.SetFitness(f)
		}
		return nil
	}
}
