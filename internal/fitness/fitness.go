// Package fitness maps a schedule to the scalar objective the optimizers
// select on (C4). It holds no state of its own — caching lives on the
// individual wrapper in internal/optimizer, which knows when a schedule
// has actually changed.
package fitness

import (
	"math"

	"github.com/ska-sa/obssched/internal/schedule"
)

// unscheduledPenaltyBase is the per-unscheduled-binding multiplicative
// penalty, 0.95^U.
const unscheduledPenaltyBase = 0.95

// Evaluate computes F(S) = ((D - C) / D) * 0.95^U for the direct-encoding
// optimizer, clamped to [0, 1]. Returns 0 when nothing is scheduled (D==0
// can't happen for a non-empty proposal set, but an all-UNSCHEDULED
// schedule is handled the same way as "nothing gained").
func Evaluate(s *schedule.Schedule) float64 {
	d := s.TotalDuration()
	if d <= 0 {
		return 0
	}
	if s.UnscheduledCount() == len(s.Bindings) {
		return 0
	}

	c := s.ClashSeconds()
	u := s.UnscheduledCount()

	coverage := (d - c) / d
	f := coverage * math.Pow(unscheduledPenaltyBase, float64(u))

	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
