package astro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SKA core site coordinates, per spec.md.
const (
	skaLatDeg = -30 - 42.0/60 - 39.8/3600
	skaLonDeg = 21 + 26.0/60 + 38.0/3600
)

func TestLSTToUTC_August(t *testing.T) {
	date := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	got, err := LSTToUTC(date, HoursOfDay(9, 25, 7), skaLonDeg)
	require.NoError(t, err)

	want := time.Date(2025, 8, 20, 10, 3, 20, 0, time.UTC)
	assert.WithinDuration(t, want, got, 5*time.Second)
}

func TestLSTToUTC_October(t *testing.T) {
	date := time.Date(2024, 10, 14, 0, 0, 0, 0, time.UTC)
	got, err := LSTToUTC(date, HoursOfDay(11, 11, 43), skaLonDeg)
	require.NoError(t, err)

	want := time.Date(2024, 10, 14, 8, 12, 27, 0, time.UTC)
	assert.WithinDuration(t, want, got, 5*time.Second)
}

func TestLSTToUTC_RejectsOutOfRange(t *testing.T) {
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := LSTToUTC(date, 24, skaLonDeg)
	assert.Error(t, err)

	_, err = LSTToUTC(date, -0.1, skaLonDeg)
	assert.Error(t, err)
}

func TestSunriseSunset_JuneSolstice(t *testing.T) {
	date := time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)
	rise, set := SunriseSunset(date, skaLatDeg, skaLonDeg)
	require.NotNil(t, rise)
	require.NotNil(t, set)

	wantRise := time.Date(2025, 6, 21, 5, 31, 0, 0, time.UTC)  // 07:31 local (+2h)
	wantSet := time.Date(2025, 6, 21, 15, 41, 0, 0, time.UTC)  // 17:41 local (+2h)
	assert.WithinDuration(t, wantRise, *rise, 60*time.Second)
	assert.WithinDuration(t, wantSet, *set, 60*time.Second)
}

func TestSunriseSunset_DecemberSolstice(t *testing.T) {
	date := time.Date(2025, 12, 21, 0, 0, 0, 0, time.UTC)
	rise, set := SunriseSunset(date, skaLatDeg, skaLonDeg)
	require.NotNil(t, rise)
	require.NotNil(t, set)

	wantRise := time.Date(2025, 12, 21, 3, 27, 0, 0, time.UTC) // 05:27 local (+2h)
	wantSet := time.Date(2025, 12, 21, 17, 36, 0, 0, time.UTC) // 19:36 local (+2h)
	assert.WithinDuration(t, wantRise, *rise, 60*time.Second)
	assert.WithinDuration(t, wantSet, *set, 60*time.Second)
}

func TestSunriseSunset_PolarNightReturnsNil(t *testing.T) {
	date := time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)
	rise, set := SunriseSunset(date, -89.9, 0)
	assert.Nil(t, rise)
	assert.Nil(t, set)
}

func TestNightWindow_SpansEighteenToSix(t *testing.T) {
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	begin, end := NightWindow(date, skaLonDeg)
	assert.Equal(t, 12*time.Hour, end.Sub(begin))
}

func TestLSTToUTC_RoundTripsThroughForwardConversion(t *testing.T) {
	date := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	for _, h := range []float64{0, 3.5, 11.999, 12, 18.25, 23.9} {
		got, err := LSTToUTC(date, h, skaLonDeg)
		require.NoError(t, err)

		back := utcToLSTApprox(got, skaLonDeg)
		diff := back - h
		if diff > 12 {
			diff -= 24
		} else if diff < -12 {
			diff += 24
		}
		assert.InDelta(t, 0, diff, 0.01, "lst=%v", h)
	}
}

func TestDaylightIntervalTree_ContainsMidday(t *testing.T) {
	date := time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)
	tree := DaylightIntervalTree(date, 3, skaLatDeg, skaLonDeg)

	rise, _ := SunriseSunset(date, skaLatDeg, skaLonDeg)
	require.NotNil(t, rise)
	middayLST := utcToLSTApprox(rise.Add(2*time.Hour), skaLonDeg)
	assert.True(t, tree.Contains(middayLST))
}

func TestDaylightIntervalTree_ExcludesMidnight(t *testing.T) {
	date := time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)
	tree := DaylightIntervalTree(date, 3, skaLatDeg, skaLonDeg)

	rise, set := SunriseSunset(date, skaLatDeg, skaLonDeg)
	require.NotNil(t, rise)
	require.NotNil(t, set)
	midnightLST := utcToLSTApprox(set.Add(3*time.Hour), skaLonDeg)
	assert.False(t, tree.Contains(midnightLST))
}

func TestIntervalTree_EmptyTreeContainsNothing(t *testing.T) {
	tree := NewIntervalTree(nil)
	assert.False(t, tree.Contains(0))
	assert.False(t, tree.Contains(12))
}

func TestTwilightIntervalTree_ContainsSunriseInstant(t *testing.T) {
	date := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	tree := TwilightIntervalTree(date, 2, skaLatDeg, skaLonDeg)

	rise, _ := SunriseSunset(date, skaLatDeg, skaLonDeg)
	require.NotNil(t, rise)
	lst := utcToLSTApprox(*rise, skaLonDeg)
	assert.True(t, tree.Contains(lst))
}
