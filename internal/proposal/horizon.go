package proposal

import (
	"fmt"
	"time"

	"github.com/ska-sa/obssched/internal/schederr"
)

// Horizon is the closed-inclusive calendar-date interval available for
// scheduling, reckoned in the observer's local calendar.
type Horizon struct {
	Start, End time.Time
}

// NewHorizon truncates start/end to calendar dates (UTC midnight) and
// validates that the interval is non-empty.
func NewHorizon(start, end time.Time) (Horizon, error) {
	start = truncateToDate(start)
	end = truncateToDate(end)
	if end.Before(start) {
		return Horizon{}, fmt.Errorf("horizon end %s precedes start %s: %w", end, start, schederr.ErrInvalidTimeFormat)
	}
	return Horizon{Start: start, End: end}, nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Days returns every calendar date in the horizon, inclusive of both ends.
func (h Horizon) Days() []time.Time {
	var days []time.Time
	for d := h.Start; !d.After(h.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// NumDays returns the number of calendar dates in the horizon.
func (h Horizon) NumDays() int {
	return int(h.End.Sub(h.Start).Hours()/24) + 1
}

// Seconds returns the horizon's total duration in seconds, used by the
// driver's cumulative-duration acceptance cap.
func (h Horizon) Seconds() float64 {
	return float64(h.NumDays()) * 24 * 3600
}

// Contains reports whether t's calendar date falls within the horizon.
func (h Horizon) Contains(t time.Time) bool {
	d := truncateToDate(t)
	return !d.Before(h.Start) && !d.After(h.End)
}
