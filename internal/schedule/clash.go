package schedule

import "math/rand"

// ClashPair is an unordered pair of binding indices whose scheduled
// intervals overlap.
type ClashPair struct {
	I, J int
}

// ClashPairs enumerates every unordered pair of scheduled (non-UNSCHEDULED)
// bindings with non-zero temporal overlap.
func (s *Schedule) ClashPairs() []ClashPair {
	var pairs []ClashPair
	for i := 0; i < len(s.Bindings); i++ {
		if s.Bindings[i].Unscheduled {
			continue
		}
		for j := i + 1; j < len(s.Bindings); j++ {
			if s.Bindings[j].Unscheduled {
				continue
			}
			if s.overlapSeconds(i, j) > 0 {
				pairs = append(pairs, ClashPair{I: i, J: j})
			}
		}
	}
	return pairs
}

func (s *Schedule) overlapSeconds(i, j int) float64 {
	bi, bj := s.Bindings[i], s.Bindings[j]
	ei := bi.End(s.Proposals[i].Duration)
	ej := bj.End(s.Proposals[j].Duration)

	start := bi.Start
	if bj.Start.After(start) {
		start = bj.Start
	}
	end := ei
	if ej.Before(end) {
		end = ej
	}
	overlap := end.Sub(start).Seconds()
	if overlap < 0 {
		return 0
	}
	return overlap
}

// ClashSeconds sums the overlap duration across every clashing pair:
// clash_seconds(S) = sum max(0, min(end_i, end_j) - max(start_i, start_j)).
func (s *Schedule) ClashSeconds() float64 {
	var total float64
	for i := 0; i < len(s.Bindings); i++ {
		if s.Bindings[i].Unscheduled {
			continue
		}
		for j := i + 1; j < len(s.Bindings); j++ {
			if s.Bindings[j].Unscheduled {
				continue
			}
			total += s.overlapSeconds(i, j)
		}
	}
	return total
}

// UnscheduledCount returns the number of UNSCHEDULED bindings.
func (s *Schedule) UnscheduledCount() int {
	n := 0
	for _, b := range s.Bindings {
		if b.Unscheduled {
			n++
		}
	}
	return n
}

// TotalDuration returns D = sum of every proposal's duration, in seconds,
// regardless of whether it ended up scheduled.
func (s *Schedule) TotalDuration() float64 {
	var total float64
	for _, p := range s.Proposals {
		total += p.Duration.Seconds()
	}
	return total
}

// Repair removes one binding from each clashing pair (chosen by a fair
// coin) until no two scheduled bindings overlap. Worst case O(n^2); used
// only to produce the final exported schedule, never inside the fitness
// loop (spec §4.3). The receiver is mutated in place — callers that need
// the pre-repair schedule preserved should Clone first.
func (s *Schedule) Repair(rng *rand.Rand) {
	for {
		pairs := s.ClashPairs()
		if len(pairs) == 0 {
			return
		}
		pair := pairs[0]
		victim := pair.I
		if rng.Intn(2) == 0 {
			victim = pair.J
		}
		s.Bindings[victim] = Binding{ProposalID: s.Bindings[victim].ProposalID, Unscheduled: true}
	}
}
