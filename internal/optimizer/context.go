// Package optimizer implements the two population-based search engines
// (C5 direct-encoding, C6 hyper-heuristic) that explore candidate
// schedules and converge on a best one. Both share an immutable Context —
// replacing the process-wide mutable globals of earlier source variants —
// and a data-parallel fitness-evaluation worker pool built on
// golang.org/x/sync/errgroup.
package optimizer

import (
	"math/rand"

	"github.com/ska-sa/obssched/internal/proposal"
)

// Context is the read-only state threaded into every construction and
// evaluation call during one optimizer run: the filtered proposal list,
// the horizon, the observer site, and the antenna-availability function.
// It is built once by the driver and never mutated afterward, so workers
// read it without synchronization (spec §5).
type Context struct {
	Proposals []*proposal.Proposal
	Horizon   proposal.Horizon
	Site      proposal.ObserverSite
	Antennas  proposal.AntennaAvailabilityFunc

	// Seed seeds the top-level RNG; every worker derives its own
	// thread-local generator from it so a run is reproducible regardless
	// of how many workers executed it (spec §5, §9).
	Seed int64
}

// NewRand returns a fresh, independently-seeded RNG derived from the
// context's top-level seed and a caller-supplied stream index (e.g. a
// worker ID or population index). Two calls with different indices never
// share a stream.
func (c Context) NewRand(streamIndex int64) *rand.Rand {
	return rand.New(rand.NewSource(c.Seed ^ (streamIndex*-0x61C8864680B583EB + 1)))
}
