package heuristic

import (
	"math/rand"
	"time"

	"github.com/ska-sa/obssched/internal/proposal"
	"github.com/ska-sa/obssched/internal/schedule"
)

// siderealDaySeconds mirrors astro's sidereal-day constant without
// importing astro's internal name; used only for slot-grid sizing here.
const siderealDaySeconds = (23*3600 + 56*60 + 4)

// DecodeResult is what a genome decodes to: a Schedule aligned with the
// Context's proposal ordering (for reuse by export / repair), plus the two
// quantities the hyper-heuristic fitness needs.
type DecodeResult struct {
	Schedule     *schedule.Schedule
	Unplaceable  int
	EmptySlots   int
}

// Decode runs the greedy decoder described in spec §4.6: repeatedly pick a
// proposal with the genome's current proposal-heuristic and a slot with
// its current slot-heuristic, rotating the "current" index on failure.
// After L consecutive rotation failures, every still-remaining proposal is
// marked unplaceable and decoding stops.
//
// preFiltered is the set of proposal IDs the infeasibility short-circuit
// already determined can never be placed; they are excluded from the
// decode attempt entirely and counted as unplaceable up front.
func Decode(genome Genome, proposals []*proposal.Proposal, preFiltered map[int64]bool, h proposal.Horizon, site proposal.ObserverSite, antennas proposal.AntennaAvailabilityFunc, slotDuration time.Duration, rng *rand.Rand) DecodeResult {
	l := genome.L()

	bindings := make([]schedule.Binding, len(proposals))
	for i, p := range proposals {
		bindings[i] = schedule.Binding{ProposalID: p.ID, Unscheduled: true}
	}
	result := &schedule.Schedule{Proposals: proposals, Bindings: bindings}

	var remaining []*proposal.Proposal
	unplaceable := 0
	for _, p := range proposals {
		if preFiltered[p.ID] {
			unplaceable++
			continue
		}
		remaining = append(remaining, p)
	}

	var occupied []Occupied
	current := 0
	consecutiveFailures := 0

	for len(remaining) > 0 {
		if l == 0 {
			break
		}
		propH := ProposalHeuristic(genome.Prop[current%l])
		slotH := SlotHeuristic(genome.Slot[current%l])

		chosen := selectProposal(propH, remaining, rng)
		placed := false
		if chosen != nil {
			candidates := CandidateInstants(chosen, h, site, slotDuration)
			if t, ok := SelectSlot(slotH, chosen, candidates, site, antennas, occupied, rng); ok {
				setBinding(result, chosen.ID, t)
				occupied = append(occupied, Occupied{Start: t, End: t.Add(chosen.Duration)})
				remaining = removeProposal(remaining, chosen.ID)
				placed = true
			}
		}

		if placed {
			consecutiveFailures = 0
		} else {
			consecutiveFailures++
			current++
			if consecutiveFailures >= l {
				unplaceable += len(remaining)
				remaining = nil
				break
			}
		}
	}

	return DecodeResult{
		Schedule:    result,
		Unplaceable: unplaceable,
		EmptySlots:  emptySlots(result, h, slotDuration),
	}
}

func setBinding(s *schedule.Schedule, proposalID int64, t time.Time) {
	for i, p := range s.Proposals {
		if p.ID == proposalID {
			s.Bindings[i] = schedule.Binding{ProposalID: proposalID, Start: t}
			return
		}
	}
}

func removeProposal(in []*proposal.Proposal, id int64) []*proposal.Proposal {
	out := make([]*proposal.Proposal, 0, len(in))
	for _, p := range in {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// emptySlots estimates unused slot-grid capacity: the horizon's total
// slot count minus the slots occupied by successfully placed proposals.
// Grounded on the original source's slots_per_day = floor(sidereal_day /
// slot_duration) grid sizing.
func emptySlots(s *schedule.Schedule, h proposal.Horizon, slotDuration time.Duration) int {
	slotSeconds := slotDuration.Seconds()
	if slotSeconds <= 0 {
		slotSeconds = DefaultSlotDuration.Seconds()
	}
	slotsPerDay := int(siderealDaySeconds / slotSeconds)
	totalSlots := slotsPerDay * h.NumDays()

	occupied := 0
	for i, b := range s.Bindings {
		if b.Unscheduled {
			continue
		}
		occupied += int(s.Proposals[i].Duration.Seconds()/slotSeconds) + 1
	}

	empty := totalSlots - occupied
	if empty < 0 {
		empty = 0
	}
	return empty
}

// FHard is the fixed per-unplaceable-proposal penalty weight in
// F_h = HARD*|unplaceable| + |empty slots| (spec §4.6).
const FHard = 10000

// Fitness computes the hyper-heuristic objective for a decode result.
// Lower is better; the optimizer minimizes it.
func Fitness(r DecodeResult) int {
	return FHard*r.Unplaceable + r.EmptySlots
}
