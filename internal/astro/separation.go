package astro

import "math"

// Separation returns the angle in degrees between two direction vectors.
func Separation(a, b Vec3) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}

	c := a.Dot(b) / (na * nb)
	// Clamp to avoid NaN from rounding
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return radToDeg(math.Acos(c))
}

// SunSeparationTier categorizes sun separation for display.
type SunSeparationTier int

const (
	SunSepSafe    SunSeparationTier = iota // >= 20 degrees
	SunSepCaution                          // 10-20 degrees
	SunSepWarning                          // < 10 degrees
)

// String returns the tier name.
func (t SunSeparationTier) String() string {
	switch t {
	case SunSepSafe:
		return "safe"
	case SunSepCaution:
		return "caution"
	case SunSepWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// GetSunSeparationTier returns the tier for a given separation angle.
func GetSunSeparationTier(sepDeg float64) SunSeparationTier {
	switch {
	case sepDeg < 10:
		return SunSepWarning
	case sepDeg < 20:
		return SunSepCaution
	default:
		return SunSepSafe
	}
}
