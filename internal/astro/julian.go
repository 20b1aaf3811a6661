// Package astro implements the astronomical primitives the scheduler's
// feasibility model is built on: Julian date, Greenwich mean sidereal
// time, LST<->UTC conversion, sunrise/sunset, and the night-observation
// window. Every function here is pure — no hidden state, no I/O — so it
// can be called from the optimizer's hot loop without synchronization.
package astro

import "time"

// JulianDate computes the Julian date of t using the Fliegel-Van
// Flandern algorithm. t is interpreted in UTC.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	y, m, d := t.Date()
	year, month, day := y, int(m), d

	a := (14 - month) / 12
	yy := year + 4800 - a
	mm := month + 12*a - 3

	jdn := day + (153*mm+2)/5 + 365*yy + yy/4 - yy/100 + yy/400 - 32045

	dayFraction := (float64(t.Hour())-12)/24 +
		float64(t.Minute())/1440 +
		float64(t.Second())/86400

	return float64(jdn) + dayFraction
}
