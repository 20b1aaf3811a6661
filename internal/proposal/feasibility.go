package proposal

import (
	"time"

	"github.com/ska-sa/obssched/internal/astro"
)

// ObserverSite is the process-wide read-only location the feasibility
// predicate is evaluated against. The SKA core site coordinates are the
// default (see internal/config), but the type itself carries no global
// state — every call site threads it explicitly.
type ObserverSite struct {
	LatitudeDeg  float64
	LongitudeDeg float64
}

// AntennaAvailabilityFunc reports how many antennas are available at t.
// The simple form used throughout this package is a site-wide constant;
// the signature leaves room for a calendar of maintenance windows without
// changing any caller.
type AntennaAvailabilityFunc func(t time.Time) int

// ConstantAntennaAvailability returns an AntennaAvailabilityFunc that
// always reports n antennas available, regardless of t.
func ConstantAntennaAvailability(n int) AntennaAvailabilityFunc {
	return func(time.Time) int { return n }
}

// timeRange is a half-open-free closed interval of instants, used to
// express the (possibly midnight-wrapping) admissible LST window.
type timeRange struct {
	start, end time.Time
}

func (r timeRange) contains(t time.Time) bool {
	return !t.Before(r.start) && !t.After(r.end)
}

// admissibleRanges returns the UTC instant ranges admissible under P's LST
// start window on the calendar date of t. When the window's UTC image
// crosses UTC midnight (its end instant falls before its start instant) two
// ranges are returned; otherwise one.
func admissibleRanges(p *Proposal, t time.Time, site ObserverSite) ([]timeRange, bool) {
	date := t
	lo, err := astro.LSTToUTC(date, p.LSTStart, site.LongitudeDeg)
	if err != nil {
		return nil, false
	}
	hi, err := astro.LSTToUTC(date, p.LSTStartEnd, site.LongitudeDeg)
	if err != nil {
		return nil, false
	}

	if !hi.Before(lo) {
		return []timeRange{{start: lo, end: hi}}, true
	}

	y, m, d := date.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	nextMidnight := midnight.AddDate(0, 0, 1)
	return []timeRange{
		{start: lo, end: nextMidnight},
		{start: midnight, end: hi},
	}, true
}

// withinLSTWindow implements the LST start-window test (spec §4.2.1).
func withinLSTWindow(p *Proposal, t time.Time, site ObserverSite) bool {
	ranges, ok := admissibleRanges(p, t, site)
	if !ok {
		return false
	}
	for _, r := range ranges {
		if r.contains(t) {
			return true
		}
	}
	return false
}

// withinNightWindow implements the night-observation test (spec §4.2.2).
func withinNightWindow(p *Proposal, t time.Time, site ObserverSite) bool {
	if !p.NightObs {
		return true
	}
	begin, end := astro.NightWindow(t, site.LongitudeDeg)
	endInstant := t.Add(p.Duration)
	window := timeRange{start: begin, end: end}
	return window.contains(t) && window.contains(endInstant)
}

// avoidsSunriseSunset implements the sunrise/sunset avoidance test (spec
// §4.2.3): neither sunrise nor sunset may fall strictly inside
// [t, t+duration].
func avoidsSunriseSunset(p *Proposal, t time.Time, site ObserverSite) bool {
	if !p.AvoidSunriseSunset {
		return true
	}
	rise, set := astro.SunriseSunset(t, site.LatitudeDeg, site.LongitudeDeg)
	end := t.Add(p.Duration)
	if rise != nil && rise.After(t) && rise.Before(end) {
		return false
	}
	if set != nil && set.After(t) && set.Before(end) {
		return false
	}
	return true
}

// hasAntennas implements the antenna-availability test (spec §4.2.4).
func hasAntennas(p *Proposal, t time.Time, antennasAvailable AntennaAvailabilityFunc) bool {
	return antennasAvailable(t) >= p.MinimumAntennas
}

// Feasible reports whether p may start at instant t, composing all four
// sub-tests from spec §4.2. Every branch is a pure boolean check — no
// error can escape the hot path, per the error-handling policy in
// schederr.
func Feasible(p *Proposal, t time.Time, site ObserverSite, antennasAvailable AntennaAvailabilityFunc) bool {
	return withinLSTWindow(p, t, site) &&
		withinNightWindow(p, t, site) &&
		avoidsSunriseSunset(p, t, site) &&
		hasAntennas(p, t, antennasAvailable)
}

// Schedulable implements the horizon-level predicate (spec §4.2): true iff
// some date in h admits at least one feasible instant, tested at the
// earliest and latest admissible instants derived from the LST window (the
// endpoints most and least likely to clear the night/twilight/antenna
// tests).
func Schedulable(p *Proposal, h Horizon, site ObserverSite, antennasAvailable AntennaAvailabilityFunc) bool {
	for _, day := range h.Days() {
		ranges, ok := admissibleRanges(p, day, site)
		if !ok {
			continue
		}
		for _, r := range ranges {
			latestStart := r.end.Add(-p.Duration)
			if latestStart.Before(r.start) {
				latestStart = r.start
			}
			if Feasible(p, r.start, site, antennasAvailable) {
				return true
			}
			if Feasible(p, latestStart, site, antennasAvailable) {
				return true
			}
		}
	}
	return false
}
