// Package schedule implements the direct-encoding schedule representation
// (C3): a fixed-order list of proposal->instant bindings, pairwise overlap
// accounting, and clash repair. It has no notion of fitness or
// optimization — that lives in internal/fitness and internal/optimizer,
// which operate on a Schedule purely through this package's API.
package schedule

import (
	"math/rand"
	"time"

	"github.com/ska-sa/obssched/internal/astro"
	"github.com/ska-sa/obssched/internal/proposal"
)

// Binding is a single proposal->instant assignment. Unscheduled is true
// when the proposal has no assigned start in this schedule.
type Binding struct {
	ProposalID  int64
	Start       time.Time
	Unscheduled bool
}

// End returns the binding's end instant. Callers must not call this on an
// unscheduled binding.
func (b Binding) End(duration time.Duration) time.Time {
	return b.Start.Add(duration)
}

// Schedule is an ordered list of bindings, one per input proposal, in the
// same order as the Proposals slice it was built from. The ordering is
// load-bearing: crossover and mutation assume index i of one Schedule
// corresponds to index i of any crossover-compatible Schedule, i.e. to the
// same proposal.
type Schedule struct {
	Proposals []*proposal.Proposal
	Bindings  []Binding
}

// rejectionAttempts bounds how many random instants new_random tries per
// proposal before giving up and marking it UNSCHEDULED (spec §4.3).
const rejectionAttempts = 5

// unscheduledProbability is the chance a binding is left UNSCHEDULED
// outright, without even attempting rejection sampling.
const unscheduledProbability = 0.75

// NewRandom builds a schedule over proposals by, for each one,
// leaving it UNSCHEDULED with probability ~0.75 or otherwise attempting to
// find a uniformly random feasible start instant via rejection sampling
// (at most rejectionAttempts tries; UNSCHEDULED on exhaustion).
func NewRandom(proposals []*proposal.Proposal, h proposal.Horizon, site proposal.ObserverSite, antennas proposal.AntennaAvailabilityFunc, rng *rand.Rand) *Schedule {
	s := &Schedule{
		Proposals: proposals,
		Bindings:  make([]Binding, len(proposals)),
	}
	for i, p := range proposals {
		s.Bindings[i] = randomBinding(p, h, site, antennas, rng)
	}
	return s
}

func randomBinding(p *proposal.Proposal, h proposal.Horizon, site proposal.ObserverSite, antennas proposal.AntennaAvailabilityFunc, rng *rand.Rand) Binding {
	if rng.Float64() < unscheduledProbability {
		return Binding{ProposalID: p.ID, Unscheduled: true}
	}
	for attempt := 0; attempt < rejectionAttempts; attempt++ {
		t, ok := randomCandidateInstant(p, h, site, rng)
		if !ok {
			continue
		}
		if proposal.Feasible(p, t, site, antennas) {
			return Binding{ProposalID: p.ID, Start: t}
		}
	}
	return Binding{ProposalID: p.ID, Unscheduled: true}
}

// randomCandidateInstant picks a uniformly random calendar day within h and
// a uniformly random LST within p's start window, converting to a UTC
// candidate instant. It does not itself check feasibility.
func randomCandidateInstant(p *proposal.Proposal, h proposal.Horizon, site proposal.ObserverSite, rng *rand.Rand) (time.Time, bool) {
	days := h.Days()
	if len(days) == 0 {
		return time.Time{}, false
	}
	day := days[rng.Intn(len(days))]

	lst := p.LSTStart
	if p.WrapsMidnight() {
		span := (24 - p.LSTStart) + p.LSTStartEnd
		lst = p.LSTStart + rng.Float64()*span
		if lst >= 24 {
			lst -= 24
		}
	} else {
		lst = p.LSTStart + rng.Float64()*(p.LSTStartEnd-p.LSTStart)
	}

	t, err := astro.LSTToUTC(day, lst, site.LongitudeDeg)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// reassign rewrites a subset of bindings (indices) to fresh random values,
// used by Mutate. Each target is reassigned either UNSCHEDULED (prob.
// 0.75) or a fresh feasible start instant, exactly like NewRandom.
func (s *Schedule) reassign(indices []int, h proposal.Horizon, site proposal.ObserverSite, antennas proposal.AntennaAvailabilityFunc, rng *rand.Rand) {
	for _, i := range indices {
		s.Bindings[i] = randomBinding(s.Proposals[i], h, site, antennas, rng)
	}
}

// Clone returns a deep-enough copy of s: a fresh Bindings slice sharing the
// (immutable) Proposals slice. Operators must call this before mutating —
// parents are never modified in place (spec §3 Lifecycle).
func (s *Schedule) Clone() *Schedule {
	out := &Schedule{
		Proposals: s.Proposals,
		Bindings:  make([]Binding, len(s.Bindings)),
	}
	copy(out.Bindings, s.Bindings)
	return out
}
