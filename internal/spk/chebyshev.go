package spk

import (
	"fmt"
	"math"

	"github.com/litescript/ls-ephem/internal/astro"
)

// Evaluator computes a position in km at a TDB Julian date.
type Evaluator interface {
	Position(tdb float64) astro.Vec3
}

// VelocityEvaluator is an Evaluator that can also supply velocity in km/day.
type VelocityEvaluator interface {
	Evaluator
	Velocity(tdb float64) astro.Vec3
}

// ChebyshevRecord holds the per-axis coefficients for one record.
// Velocity coefficients are optional; without them velocity is the
// derivative of the position series.
type ChebyshevRecord struct {
	X, Y, Z    []float64
	VX, VY, VZ []float64
}

// Chebyshev evaluates equally spaced Chebyshev records, the layout of SPK
// types 2 and 3. Record i covers [Init + i*IntLen, Init + (i+1)*IntLen].
type Chebyshev struct {
	Init    float64 // TDB Julian date at the start of the first record
	IntLen  float64 // record length in days
	Records []ChebyshevRecord
}

// Validate checks the record layout.
func (c *Chebyshev) Validate() error {
	if c.IntLen <= 0 || math.IsNaN(c.IntLen) {
		return fmt.Errorf("record length must be positive, got %v", c.IntLen)
	}
	if len(c.Records) == 0 {
		return fmt.Errorf("no coefficient records")
	}
	for i, r := range c.Records {
		n := len(r.X)
		if n == 0 || len(r.Y) != n || len(r.Z) != n {
			return fmt.Errorf("record %d: position axes must be non-empty and equal length (%d, %d, %d)",
				i, len(r.X), len(r.Y), len(r.Z))
		}
		if m := len(r.VX); len(r.VY) != m || len(r.VZ) != m {
			return fmt.Errorf("record %d: velocity axes must be equal length (%d, %d, %d)",
				i, len(r.VX), len(r.VY), len(r.VZ))
		}
	}
	return nil
}

// End returns the TDB date at which the last record ends.
func (c *Chebyshev) End() float64 {
	return c.Init + float64(len(c.Records))*c.IntLen
}

// Position implements Evaluator.
func (c *Chebyshev) Position(tdb float64) astro.Vec3 {
	r, s := c.locate(tdb)
	return astro.Vec3{
		X: chebyshevSum(r.X, s),
		Y: chebyshevSum(r.Y, s),
		Z: chebyshevSum(r.Z, s),
	}
}

// Velocity implements VelocityEvaluator.
func (c *Chebyshev) Velocity(tdb float64) astro.Vec3 {
	r, s := c.locate(tdb)
	if len(r.VX) > 0 {
		return astro.Vec3{
			X: chebyshevSum(r.VX, s),
			Y: chebyshevSum(r.VY, s),
			Z: chebyshevSum(r.VZ, s),
		}
	}
	// ds/dt = 2 / IntLen
	scale := 2 / c.IntLen
	return astro.Vec3{
		X: chebyshevDerivative(r.X, s) * scale,
		Y: chebyshevDerivative(r.Y, s) * scale,
		Z: chebyshevDerivative(r.Z, s) * scale,
	}
}

// locate returns the record containing tdb and the normalized time in
// [-1, 1] within it. The end boundary belongs to the last record.
func (c *Chebyshev) locate(tdb float64) (*ChebyshevRecord, float64) {
	idx := int(math.Floor((tdb - c.Init) / c.IntLen))
	if idx < 0 {
		idx = 0
	} else if idx >= len(c.Records) {
		idx = len(c.Records) - 1
	}
	mid := c.Init + (float64(idx)+0.5)*c.IntLen
	return &c.Records[idx], (tdb - mid) / (c.IntLen / 2)
}

// chebyshevSum evaluates sum(c[k] * T_k(s)) with the Clenshaw recurrence.
func chebyshevSum(c []float64, s float64) float64 {
	if len(c) == 0 {
		return 0
	}
	var b1, b2 float64
	for k := len(c) - 1; k >= 1; k-- {
		b1, b2 = 2*s*b1-b2+c[k], b1
	}
	return s*b1 - b2 + c[0]
}

// chebyshevDerivative evaluates d/ds sum(c[k] * T_k(s)) = sum(k * c[k] * U_{k-1}(s)).
func chebyshevDerivative(c []float64, s float64) float64 {
	var sum float64
	uPrev, u := 0.0, 1.0 // U_{-1}, U_0
	for k := 1; k < len(c); k++ {
		sum += float64(k) * c[k] * u
		uPrev, u = u, 2*s*u-uPrev
	}
	return sum
}
