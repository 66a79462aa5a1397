// Package astro provides vector math, time scales and frame helpers shared
// by the ephemeris engine and its consumers.
package astro

import (
	"fmt"
	"math"
)

// AU is the Astronomical Unit in kilometers.
const AU = 149597870.7

// SpeedOfLight is the speed of light in km/s.
const SpeedOfLight = 299792.458

// Vec3 represents a 3D vector in any reference frame.
// Ephemeris positions are ICRF equatorial, in km.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Neg returns the vector pointing the opposite way.
func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Dot returns the scalar product of two vectors.
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

func (v Vec3) String() string {
	return fmt.Sprintf("[%.6f %.6f %.6f]", v.X, v.Y, v.Z)
}

// KmToAU converts kilometers to Astronomical Units.
func KmToAU(km float64) float64 {
	return km / AU
}

// AUToKm converts Astronomical Units to kilometers.
func AUToKm(au float64) float64 {
	return au * AU
}

// RADec returns right ascension (0-360) and declination in degrees for an
// equatorial vector.
func RADec(v Vec3) (raDeg, decDeg float64) {
	r := v.Norm()
	if r == 0 {
		return 0, 0
	}
	raDeg = radToDeg(math.Atan2(v.Y, v.X))
	if raDeg < 0 {
		raDeg += 360
	}
	return raDeg, radToDeg(math.Asin(v.Z / r))
}

// EclipticLatitude returns the ecliptic latitude in degrees for a vector.
func EclipticLatitude(v Vec3) float64 {
	r := v.Norm()
	if r == 0 {
		return 0
	}
	return radToDeg(math.Asin(v.Z / r))
}

// EclipticLongitude returns the ecliptic longitude in degrees for a vector.
func EclipticLongitude(v Vec3) float64 {
	lon := radToDeg(math.Atan2(v.Y, v.X))
	if lon < 0 {
		lon += 360
	}
	return lon
}

// Obliquity of the ecliptic at J2000, in radians.
const obliquityRad = 23.439291 * math.Pi / 180

// EquatorialToEcliptic rotates equatorial XYZ into ecliptic XYZ.
// Units are preserved.
func EquatorialToEcliptic(eq Vec3) Vec3 {
	cosE := math.Cos(obliquityRad)
	sinE := math.Sin(obliquityRad)

	return Vec3{
		X: eq.X,
		Y: eq.Y*cosE + eq.Z*sinE,
		Z: -eq.Y*sinE + eq.Z*cosE,
	}
}

// EclipticToEquatorial rotates ecliptic XYZ back into equatorial XYZ.
func EclipticToEquatorial(ecl Vec3) Vec3 {
	cosE := math.Cos(obliquityRad)
	sinE := math.Sin(obliquityRad)

	return Vec3{
		X: ecl.X,
		Y: ecl.Y*cosE - ecl.Z*sinE,
		Z: ecl.Y*sinE + ecl.Z*cosE,
	}
}

// LightTime returns the one-way light time in seconds for a distance in km.
func LightTime(km float64) float64 {
	return km / SpeedOfLight
}

// FormatLightTime formats light time in seconds to a human-readable string.
func FormatLightTime(seconds float64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%.1fs", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm%ds", int(seconds/60), int(seconds)%60)
	default:
		return fmt.Sprintf("%dh%dm", int(seconds/3600), (int(seconds)%3600)/60)
	}
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
