package optimizer

import (
	"github.com/ska-sa/obssched/internal/fitness"
	"github.com/ska-sa/obssched/internal/schedule"
)

// Individual wraps a Schedule with a fitness cache. Per spec §4.4, fitness
// must be cached once computed and invalidated by any mutation or
// crossover — since Crossover/Mutate always build a fresh Schedule rather
// than editing one in place, a freshly-wrapped Individual simply starts
// uncached; there is nothing to invalidate in place.
type Individual struct {
	Schedule *schedule.Schedule

	fitness  float64
	computed bool
}

// NewIndividual wraps s with an empty fitness cache.
func NewIndividual(s *schedule.Schedule) *Individual {
	return &Individual{Schedule: s}
}

// Fitness returns F(Schedule), computing and caching it on first call.
func (ind *Individual) Fitness() float64 {
	if !ind.computed {
		ind.fitness = fitness.Evaluate(ind.Schedule)
		ind.computed = true
	}
	return ind.fitness
}
