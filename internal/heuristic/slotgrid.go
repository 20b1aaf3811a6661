package heuristic

import (
	"math/rand"
	"sort"
	"time"

	"github.com/ska-sa/obssched/internal/astro"
	"github.com/ska-sa/obssched/internal/proposal"
)

// DefaultSlotDuration is the discretization granularity used to lay the
// horizon out in LST for slot-selection, per spec §4.6's example ("e.g. 60
// s").
const DefaultSlotDuration = 60 * time.Second

// Occupied is an already-placed interval the decoder must avoid clashing
// with when placing the next proposal.
type Occupied struct {
	Start, End time.Time
}

// CandidateInstants enumerates every slot-aligned UTC instant within p's
// LST start window across every day of h, in chronological order. It does
// not itself test feasibility or occupancy — callers filter afterward.
func CandidateInstants(p *proposal.Proposal, h proposal.Horizon, site proposal.ObserverSite, slotDuration time.Duration) []time.Time {
	stepHours := slotDuration.Seconds() / 3600
	if stepHours <= 0 {
		stepHours = DefaultSlotDuration.Seconds() / 3600
	}

	span := p.LSTStartEnd - p.LSTStart
	if p.WrapsMidnight() {
		span = (24 - p.LSTStart) + p.LSTStartEnd
	}

	var out []time.Time
	for _, day := range h.Days() {
		for off := 0.0; off < span; off += stepHours {
			lst := p.LSTStart + off
			if lst >= 24 {
				lst -= 24
			}
			t, err := astro.LSTToUTC(day, lst, site.LongitudeDeg)
			if err != nil {
				continue
			}
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// feasibleFreeCandidates narrows candidates to those that pass
// proposal.Feasible and don't overlap any already-occupied interval.
func feasibleFreeCandidates(p *proposal.Proposal, candidates []time.Time, site proposal.ObserverSite, antennas proposal.AntennaAvailabilityFunc, occupied []Occupied) []time.Time {
	var out []time.Time
	for _, t := range candidates {
		if !proposal.Feasible(p, t, site, antennas) {
			continue
		}
		if overlapsAny(t, p.Duration, occupied) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func overlapsAny(start time.Time, duration time.Duration, occupied []Occupied) bool {
	end := start.Add(duration)
	for _, o := range occupied {
		if start.Before(o.End) && o.Start.Before(end) {
			return true
		}
	}
	return false
}

// SelectSlot applies slot-selection heuristic h to pick a placement for p,
// given the candidate instants already restricted to p's LST window and
// the set of intervals occupied by proposals placed earlier in this
// decode pass. Returns ok=false when no candidate is feasible and clash-
// free.
func SelectSlot(h SlotHeuristic, p *proposal.Proposal, candidates []time.Time, site proposal.ObserverSite, antennas proposal.AntennaAvailabilityFunc, occupied []Occupied, rng *rand.Rand) (time.Time, bool) {
	valid := feasibleFreeCandidates(p, candidates, site, antennas, occupied)
	if len(valid) == 0 {
		return time.Time{}, false
	}

	switch h {
	case FirstValid:
		return valid[0], true
	case LastValid:
		return valid[len(valid)-1], true
	case RandomValid:
		return valid[rng.Intn(len(valid))], true
	case TightestFit, LoosestFit:
		return fitSelect(h, p, valid, occupied), true
	default:
		return valid[0], true
	}
}

// fitSelect picks the candidate whose post-placement slack (time until the
// next occupied interval's start) is smallest (TightestFit) or largest
// (LoosestFit).
func fitSelect(h SlotHeuristic, p *proposal.Proposal, valid []time.Time, occupied []Occupied) time.Time {
	starts := make([]time.Time, len(occupied))
	for i, o := range occupied {
		starts[i] = o.Start
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	best := valid[0]
	bestSlack := slackAfter(best, p.Duration, starts)
	for _, c := range valid[1:] {
		slack := slackAfter(c, p.Duration, starts)
		if (h == TightestFit && slack < bestSlack) || (h == LoosestFit && slack > bestSlack) {
			best = c
			bestSlack = slack
		}
	}
	return best
}

// slackAfter returns the gap between the end of a placement starting at t
// and the next occupied interval's start, or a large sentinel if there is
// none.
func slackAfter(t time.Time, duration time.Duration, sortedOccupiedStarts []time.Time) time.Duration {
	end := t.Add(duration)
	idx := sort.Search(len(sortedOccupiedStarts), func(i int) bool { return sortedOccupiedStarts[i].After(end) || sortedOccupiedStarts[i].Equal(end) })
	if idx == len(sortedOccupiedStarts) {
		return 365 * 24 * time.Hour
	}
	return sortedOccupiedStarts[idx].Sub(end)
}
