package astro

import (
	"math"
	"time"
)

// zenithDeg is the standard almanac sunrise/sunset zenith angle, 90 degrees
// 50 arcminutes, accounting for atmospheric refraction and the sun's
// apparent radius.
const zenithDeg = 90 + 50.0/60

// SunriseSunset returns the UTC sunrise and sunset instants for the given
// date at the given site. Either return value is nil when the sun does
// not cross the horizon that day (polar day/night) — not an error, per
// spec.md's SunNeverRisesOrSets policy: the caller's feasibility test
// simply treats that constraint as unsatisfiable for the day.
func SunriseSunset(date time.Time, latDeg, lonDeg float64) (sunrise, sunset *time.Time) {
	dayOfYear := float64(date.YearDay())

	gamma := 2 * math.Pi / 365 * (dayOfYear - 1)

	eqTimeMin := 229.18 * (0.000075 +
		0.001868*math.Cos(gamma) - 0.032077*math.Sin(gamma) -
		0.014615*math.Cos(2*gamma) - 0.040849*math.Sin(2*gamma))

	decl := 0.006918 -
		0.399912*math.Cos(gamma) + 0.070257*math.Sin(gamma) -
		0.006758*math.Cos(2*gamma) + 0.000907*math.Sin(2*gamma) -
		0.002697*math.Cos(3*gamma) + 0.00148*math.Sin(3*gamma)

	latRad := latDeg * math.Pi / 180
	zenithRad := zenithDeg * math.Pi / 180

	cosHA := (math.Cos(zenithRad) - math.Sin(latRad)*math.Sin(decl)) / (math.Cos(latRad) * math.Cos(decl))
	if cosHA < -1 || cosHA > 1 {
		// Sun never crosses the horizon today at this latitude.
		return nil, nil
	}

	haDeg := math.Acos(cosHA) * 180 / math.Pi

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	riseMinutes := 720 - 4*(lonDeg+haDeg) - eqTimeMin
	setMinutes := 720 - 4*(lonDeg-haDeg) - eqTimeMin

	rise := midnight.Add(time.Duration(riseMinutes * float64(time.Minute))).Truncate(time.Second)
	set := midnight.Add(time.Duration(setMinutes * float64(time.Minute))).Truncate(time.Second)
	return &rise, &set
}

// NightWindowFunc is the shape of NightWindow, kept as a named type so a
// stricter definition (e.g. astronomical-twilight-bounded) can be swapped
// in by callers that accept one, without changing their own signatures.
type NightWindowFunc func(date time.Time, lonDeg float64) (begin, end time.Time)

// NightWindow returns the site-local proxy night-observation window for
// date: 18:00 to 06:00 the next day, in the observer's local solar time,
// expressed as UTC instants at the given longitude. This is the spec's
// canonical proxy (spec.md §9 — astronomical twilight is an allowed but
// unimplemented refinement).
func NightWindow(date time.Time, lonDeg float64) (begin, end time.Time) {
	offset := time.Duration(lonDeg / 15 * float64(time.Hour))
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	begin = midnight.Add(18 * time.Hour).Add(-offset)
	end = midnight.Add(30 * time.Hour).Add(-offset) // 06:00 the following day
	return begin, end
}
