package astro

import (
	"fmt"
	"math"
	"time"
)

// siderealDay is the length of one sidereal day: 23h 56m 4s, expressed in
// decimal hours. Used when an interval tree needs to be lifted across
// multiple days of LST (see intervals.go).
const siderealDay = 23 + 56.0/60 + 4.0/3600

// siderealToSolarRate converts an interval of mean sidereal time into the
// mean solar time that elapses over it: one sidereal hour is ~0.99727 solar
// hours. Dividing by it goes the other way (solar to sidereal).
const siderealToSolarRate = 0.9972695663

// GMSTAt0hUTC returns the Greenwich mean sidereal time, in decimal hours
// mod 24, at 0h UTC on the day whose Julian date (at 0h UTC) is jd.
func GMSTAt0hUTC(jd float64) float64 {
	gmst := 6.697374558 + 0.06570982441908*(jd-2451545.0)
	return normalizeHours(gmst)
}

// normalizeHours reduces h into [0, 24).
func normalizeHours(h float64) float64 {
	h = math.Mod(h, 24)
	if h < 0 {
		h += 24
	}
	return h
}

// jdAt0hUTC returns the Julian date of midnight UTC on the calendar date
// of t (t's own time-of-day is discarded).
func jdAt0hUTC(t time.Time) float64 {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return JulianDate(midnight)
}

// LSTToUTC converts a local sidereal time-of-day on the calendar date of
// date (date's own time-of-day is ignored — only its Y/M/D matter) into
// the corresponding UTC instant at the given longitude (degrees, east
// positive).
//
// lstHours is decimal hours since local sidereal midnight, in [0, 24).
func LSTToUTC(date time.Time, lstHours float64, longitudeDeg float64) (time.Time, error) {
	if lstHours < 0 || lstHours >= 24 {
		return time.Time{}, fmt.Errorf("lst hours %f out of range [0,24)", lstHours)
	}

	longHours := longitudeDeg / 15.0
	jd0 := jdAt0hUTC(date)
	gmst0 := GMSTAt0hUTC(jd0)

	gst := normalizeHours(lstHours - longHours)
	deltaSidereal := normalizeHours(gst - gmst0)
	deltaSolar := deltaSidereal * siderealToSolarRate

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	offset := time.Duration(deltaSolar * float64(time.Hour))
	return midnight.Add(offset).Truncate(time.Second), nil
}

// HoursOfDay converts a time-of-day ("HH:MM" or "HH:MM:SS", validated
// upstream by the ingestion layer) already parsed into hour/minute/second
// components into decimal hours.
func HoursOfDay(hour, minute, second int) float64 {
	return float64(hour) + float64(minute)/60 + float64(second)/3600
}
