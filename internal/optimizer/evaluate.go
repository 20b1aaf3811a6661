package optimizer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// evaluateAll forces fitness computation for every individual in pop,
// fanned out across a bounded worker pool. This is the data-parallel batch
// step spec §5 calls for: each individual's fitness is independent, and
// evaluateAll is the only synchronization point before the next
// generation's selection step reads the results.
//
// ctx cancellation stops dispatching new work and returns the context's
// error; individuals not yet evaluated keep an uncomputed fitness, which
// Individual.Fitness computes on first use. On that error RunDirect returns
// the best of the current population, so those individuals still compete
// with their real fitness.
func evaluateAll(ctx context.Context, individuals []*Individual) error {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(individuals) {
		workers = len(individuals)
	}
	if workers < 1 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, ind := range individuals {
		ind := ind
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			ind.Fitness()
			return nil
		})
	}
	return g.Wait()
}
