// Package proposal holds the scheduling input record and the feasibility
// predicate it is judged against. Proposals are immutable once constructed:
// ingestion builds them, the driver filters them, and the optimizer reads
// them — nothing downstream ever mutates a Proposal in place.
package proposal

import (
	"fmt"
	"time"

	"github.com/ska-sa/obssched/internal/schederr"
)

// DateRange is a closed-inclusive calendar date interval, used for the
// optional preferred/avoided date fields on a Proposal.
type DateRange struct {
	Start, End time.Time
}

// Contains reports whether d falls within the range, comparing calendar
// dates only (time-of-day is ignored).
func (r DateRange) Contains(d time.Time) bool {
	y, m, day := d.Date()
	d = time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Proposal is an immutable unit of observation work submitted for
// scheduling.
type Proposal struct {
	ID         int64
	OwnerEmail string

	// LSTStart and LSTStartEnd bound the admissible LST start window, in
	// decimal hours [0, 24). The window wraps midnight when
	// LSTStartEnd < LSTStart.
	LSTStart    float64
	LSTStartEnd float64

	Duration time.Duration

	NightObs           bool
	AvoidSunriseSunset bool

	MinimumAntennas int
	Score           float64

	PreferredDates []DateRange
	AvoidDates     []DateRange
}

// Validate checks the invariants spec'd for a Proposal: positive duration,
// at least one required antenna, and well-formed LST window endpoints.
func (p *Proposal) Validate() error {
	if p.Duration <= 0 {
		return fmt.Errorf("proposal %d: duration must be positive, got %s: %w", p.ID, p.Duration, schederr.ErrInvalidTimeFormat)
	}
	if p.MinimumAntennas < 1 {
		return fmt.Errorf("proposal %d: minimum_antennas must be >= 1, got %d: %w", p.ID, p.MinimumAntennas, schederr.ErrInvalidTimeFormat)
	}
	if p.Score < 1 {
		return fmt.Errorf("proposal %d: score must be >= 1, got %f: %w", p.ID, p.Score, schederr.ErrInvalidTimeFormat)
	}
	if p.LSTStart < 0 || p.LSTStart >= 24 {
		return fmt.Errorf("proposal %d: lst_start %f out of range [0,24): %w", p.ID, p.LSTStart, schederr.ErrInvalidTimeFormat)
	}
	if p.LSTStartEnd < 0 || p.LSTStartEnd >= 24 {
		return fmt.Errorf("proposal %d: lst_start_end %f out of range [0,24): %w", p.ID, p.LSTStartEnd, schederr.ErrInvalidTimeFormat)
	}
	return nil
}

// WrapsMidnight reports whether the proposal's LST window crosses local
// sidereal midnight.
func (p *Proposal) WrapsMidnight() bool {
	return p.LSTStartEnd < p.LSTStart
}
