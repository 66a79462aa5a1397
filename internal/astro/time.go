package astro

import (
	"fmt"
	"math"
	"time"
)

const (
	// J2000 is the Julian date of 2000-01-01 12:00 TT.
	J2000 = 2451545.0

	// unixEpochJD is the Julian date of 1970-01-01 00:00 UTC.
	unixEpochJD = 2440587.5

	// TTMinusUTC is TT-UTC in seconds (37 leap seconds + 32.184s) since 2017.
	// Kernels are indexed by TDB, which stays within 2ms of TT, so wall-clock
	// conversions use this fixed offset. Precise timescales are the caller's job.
	TTMinusUTC = 69.184

	secondsPerDay = 86400.0
)

// JulianDate returns the Julian date of t on its own clock (no timescale
// shift). Calendar arithmetic follows Meeus, Astronomical Algorithms ch. 7.
func JulianDate(t time.Time) float64 {
	t = t.UTC()

	y := float64(t.Year())
	m := float64(t.Month())
	d := float64(t.Day())

	dayFrac := (float64(t.Hour()) +
		float64(t.Minute())/60 +
		float64(t.Second())/3600 +
		float64(t.Nanosecond())/3600e9) / 24.0

	// January and February count as months 13 and 14 of the previous year
	if m <= 2 {
		y--
		m += 12
	}

	// Gregorian calendar correction
	A := math.Floor(y / 100)
	B := 2 - A + math.Floor(A/4)

	return math.Floor(365.25*(y+4716)) +
		math.Floor(30.6001*(m+1)) +
		d + dayFrac + B - 1524.5
}

// TDB converts a UTC wall-clock time to an approximate TDB Julian date.
func TDB(t time.Time) float64 {
	return JulianDate(t) + TTMinusUTC/secondsPerDay
}

// TimeFromTDB converts a TDB Julian date back to UTC wall-clock time,
// inverting TDB.
func TimeFromTDB(jd float64) time.Time {
	seconds := (jd-unixEpochJD)*secondsPerDay - TTMinusUTC
	whole := math.Floor(seconds)
	return time.Unix(int64(whole), int64((seconds-whole)*1e9)).UTC()
}

// CalendarDate returns the Gregorian calendar date containing a Julian date.
// day carries the fraction of the day.
func CalendarDate(jd float64) (year, month int, day float64) {
	z := math.Floor(jd + 0.5)
	f := jd + 0.5 - z

	a := z
	if z >= 2299161 {
		alpha := math.Floor((z - 1867216.25) / 36524.25)
		a = z + 1 + alpha - math.Floor(alpha/4)
	}

	b := a + 1524
	c := math.Floor((b - 122.1) / 365.25)
	d := math.Floor(365.25 * c)
	e := math.Floor((b - d) / 30.6001)

	day = b - d - math.Floor(30.6001*e) + f
	if e < 14 {
		month = int(e) - 1
	} else {
		month = int(e) - 13
	}
	if month > 2 {
		year = int(c) - 4716
	} else {
		year = int(c) - 4715
	}
	return year, month, day
}

// FormatDate renders a Julian date as yyyy-mm-dd.
func FormatDate(jd float64) string {
	y, m, d := CalendarDate(jd)
	return fmt.Sprintf("%04d-%02d-%02d", y, m, int(d))
}
