package spk

import (
	"github.com/litescript/ls-ephem/internal/astro"
)

const (
	de421Start = 2414864.5
	de421End   = 2471184.5
	de405Start = 2305424.5
	de405End   = 2525008.5
)

// constantSegment returns a segment whose position is pos everywhere in
// [start, end] and whose velocity is zero.
func constantSegment(source string, index int, center, target Code, start, end float64, pos astro.Vec3) *Segment {
	return NewSegment(SegmentRecord{
		Source: source,
		Index:  index,
		Center: center,
		Target: target,
		Start:  start,
		End:    end,
		Evaluator: &Chebyshev{
			Init:   start,
			IntLen: end - start,
			Records: []ChebyshevRecord{
				{X: []float64{pos.X}, Y: []float64{pos.Y}, Z: []float64{pos.Z}},
			},
		},
	})
}

// positionOnly hides the velocity capability of an evaluator.
type positionOnly struct {
	pos astro.Vec3
}

func (p positionOnly) Position(float64) astro.Vec3 { return p.pos }

// de421 mimics the planetary layout of DE421: barycenters off the SSB,
// planets and moons off their barycenters.
func de421() *Kernel {
	src := "de421.bsp"
	k := NewKernel(nil)
	edges := []struct {
		center, target Code
	}{
		{0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}, {0, 7}, {0, 8}, {0, 9}, {0, 10},
		{3, 301}, {3, 399}, {1, 199}, {2, 299}, {4, 499},
	}
	for i, e := range edges {
		pos := astro.Vec3{X: float64(e.target), Y: float64(i), Z: 1}
		k.Append(constantSegment(src, i, e.center, e.target, de421Start, de421End, pos))
	}
	return k
}

// de405 is a smaller kernel with a wider time span.
func de405() *Kernel {
	src := "de405.bsp"
	k := NewKernel(nil)
	for i, target := range []Code{1, 2, 3, 4} {
		pos := astro.Vec3{X: 100 * float64(target), Y: -1, Z: 0}
		k.Append(constantSegment(src, i, 0, target, de405Start, de405End, pos))
	}
	return k
}
