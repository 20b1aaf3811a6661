package schedule

import (
	"math/rand"

	"github.com/ska-sa/obssched/internal/proposal"
)

// Crossover produces a fresh child from two crossover-compatible parents
// (same proposal ordering, enforced by construction since every Schedule
// in a population is built from the same Proposals slice). Each gene
// (binding) is taken from a with probability 0.5, else from b —
// independent per-gene Bernoulli(0.5), per spec §4.3. Neither parent is
// modified.
func Crossover(a, b *Schedule, rng *rand.Rand) *Schedule {
	child := &Schedule{
		Proposals: a.Proposals,
		Bindings:  make([]Binding, len(a.Bindings)),
	}
	for i := range child.Bindings {
		if rng.Intn(2) == 0 {
			child.Bindings[i] = a.Bindings[i]
		} else {
			child.Bindings[i] = b.Bindings[i]
		}
	}
	return child
}

// Mutate returns a fresh schedule with a random mutationRate*n subset of
// bindings reassigned (each to UNSCHEDULED w.p. 0.75, else a fresh
// feasible instant found by rejection sampling). s is not modified.
func Mutate(s *Schedule, mutationRate float64, h proposal.Horizon, site proposal.ObserverSite, antennas proposal.AntennaAvailabilityFunc, rng *rand.Rand) *Schedule {
	child := s.Clone()

	n := len(child.Bindings)
	count := int(mutationRate * float64(n))
	if count < 1 && n > 0 {
		count = 1
	}

	indices := rng.Perm(n)[:min(count, n)]
	child.reassign(indices, h, site, antennas, rng)
	return child
}
