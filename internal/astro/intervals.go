package astro

import (
	"sort"
	"time"
)

// Interval is a closed interval [Start, End] expressed in LST hours,
// possibly exceeding 24 when lifted onto a multi-day horizon (day i's
// hours run from i*siderealDay to (i+1)*siderealDay).
type Interval struct {
	Start, End float64
	Label      string
}

// IntervalTree is an immutable, sorted set of non-overlapping intervals
// over LST-hours. Containment queries are O(log n) via binary search over
// the sorted start times — the same complexity the spec asks for, without
// the bookkeeping of an augmented binary tree, which buys nothing extra
// here since the intervals built by this package never overlap.
type IntervalTree struct {
	intervals []Interval
}

// NewIntervalTree builds an IntervalTree from a set of intervals, sorting
// them by start time. The caller must ensure the intervals don't overlap;
// daylight and twilight interval construction below guarantees this by
// construction (one interval per calendar day, offset by the sidereal-day
// period).
func NewIntervalTree(intervals []Interval) *IntervalTree {
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	return &IntervalTree{intervals: sorted}
}

// Contains reports whether lstHours falls inside any interval in the tree.
func (t *IntervalTree) Contains(lstHours float64) bool {
	return t.find(lstHours) >= 0
}

// find returns the index of the interval containing lstHours, or -1.
func (t *IntervalTree) find(lstHours float64) int {
	n := len(t.intervals)
	i := sort.Search(n, func(i int) bool { return t.intervals[i].Start > lstHours })
	// The candidate interval is the last one whose Start <= lstHours.
	if i == 0 {
		return -1
	}
	i--
	if lstHours <= t.intervals[i].End {
		return i
	}
	return -1
}

// DaylightIntervalTree builds the set of daytime intervals (sunrise to
// sunset, lifted across numDays days starting at date) expressed in LST
// hours. Grounded on original_source/util.py's
// sunrise_and_sunset_times_to_interval_tree.
func DaylightIntervalTree(date time.Time, numDays int, latDeg, lonDeg float64) *IntervalTree {
	var intervals []Interval
	for i := 0; i < numDays; i++ {
		day := date.AddDate(0, 0, i)
		rise, set := SunriseSunset(day, latDeg, lonDeg)
		if rise == nil || set == nil {
			continue
		}
		lstRise := utcToLSTApprox(*rise, lonDeg)
		lstSet := utcToLSTApprox(*set, lonDeg)

		offset := float64(i) * siderealDay
		if lstRise > lstSet {
			intervals = append(intervals, Interval{
				Start: lstRise + offset,
				End:   lstSet + offset + siderealDay,
				Label: "daylight",
			})
		} else {
			intervals = append(intervals, Interval{
				Start: lstRise + offset,
				End:   lstSet + offset,
				Label: "daylight",
			})
		}
	}
	return NewIntervalTree(intervals)
}

// TwilightIntervalTree builds narrow intervals (+/- 15 minutes) around
// each day's sunrise and sunset, lifted across numDays days. The
// avoid_sunrise_sunset feasibility test in the proposal package does not use
// it; it works on UTC sunrise/sunset instants directly.
func TwilightIntervalTree(date time.Time, numDays int, latDeg, lonDeg float64) *IntervalTree {
	const halfWidth = 0.25 // hours
	var intervals []Interval
	for i := 0; i < numDays; i++ {
		day := date.AddDate(0, 0, i)
		rise, set := SunriseSunset(day, latDeg, lonDeg)
		if rise == nil || set == nil {
			continue
		}
		lstRise := utcToLSTApprox(*rise, lonDeg)
		lstSet := utcToLSTApprox(*set, lonDeg)
		offset := float64(i) * siderealDay

		intervals = append(intervals,
			Interval{Start: lstRise + offset - halfWidth, End: lstRise + offset + halfWidth, Label: "sunrise"},
			Interval{Start: lstSet + offset - halfWidth, End: lstSet + offset + halfWidth, Label: "sunset"},
		)
	}
	return NewIntervalTree(intervals)
}

// utcToLSTApprox converts a UTC instant to local sidereal decimal hours.
// Used only to build the interval trees above; the feasibility predicate
// itself (feasibility.go in the proposal package) works the other
// direction (LST window -> UTC instant) per spec.md §4.1.
func utcToLSTApprox(t time.Time, lonDeg float64) float64 {
	jd := jdAt0hUTC(t)
	gmst0 := GMSTAt0hUTC(jd)
	hoursSinceMidnight := t.Sub(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)).Hours()
	gmst := gmst0 + hoursSinceMidnight/siderealToSolarRate
	return normalizeHours(gmst + lonDeg/15)
}
