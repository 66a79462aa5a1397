package spk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-ephem/internal/astro"
)

func TestKernel_RemovingSegments(t *testing.T) {
	k := de421()

	k.Segments = keepTargets(k.Segments, 3, 4)

	require.Len(t, k.Segments, 2)
	assert.False(t, k.Contains(2))
	assert.True(t, k.Contains(3))
	assert.Equal(t, []Code{0, 3, 4}, k.Codes())
	assert.Equal(t, map[Code][]string{
		0: {"SOLAR_SYSTEM_BARYCENTER", "SSB", "SOLAR SYSTEM BARYCENTER"},
		3: {"EARTH_BARYCENTER", "EMB", "EARTH MOON BARYCENTER", "EARTH-MOON BARYCENTER", "EARTH BARYCENTER"},
		4: {"MARS_BARYCENTER", "MARS BARYCENTER"},
	}, k.Names().Map())

	assert.Equal(t, "<Kernel 'de421.bsp'>", k.Label())
	assert.Equal(t, `Segments from kernel file 'de421.bsp':
  JD 2414864.50 - JD 2471184.50  (1899-07-28 through 2053-10-08)
      0 -> 3    SOLAR SYSTEM BARYCENTER -> EARTH BARYCENTER
      0 -> 4    SOLAR SYSTEM BARYCENTER -> MARS BARYCENTER`, k.String())

	v, err := k.Lookup(4)
	require.NoError(t, err)
	assert.IsType(t, edge{}, v)

	_, err = k.Lookup(5)
	require.Error(t, err)
	assert.True(t, Is(err, ErrLookup))
	assert.Contains(t, err.Error(), "is missing 5")
}

func TestKernel_AddingSegmentsFromSecondFile(t *testing.T) {
	k := de405()
	k.Retain(func(s *Segment) bool { return s.Target() == 3 })

	other := de421()
	k.Append(keepTargets(other.Segments, 301, 399)...)

	require.Equal(t, 3, k.Len())
	assert.False(t, k.Contains(2))
	assert.True(t, k.Contains(3))
	assert.True(t, k.Contains(301))
	assert.Equal(t, []Code{0, 3, 301, 399}, k.Codes())
	assert.Equal(t, map[Code][]string{
		0:   {"SOLAR_SYSTEM_BARYCENTER", "SSB", "SOLAR SYSTEM BARYCENTER"},
		3:   {"EARTH_BARYCENTER", "EMB", "EARTH MOON BARYCENTER", "EARTH-MOON BARYCENTER", "EARTH BARYCENTER"},
		301: {"MOON"},
		399: {"EARTH"},
	}, k.Names().Map())

	assert.Equal(t, "<Kernel 'de405.bsp' 'de421.bsp'>", k.Label())
	assert.Equal(t, `Segments from kernel file 'de405.bsp':
  JD 2305424.50 - JD 2525008.50  (1599-12-08 through 2201-02-19)
      0 -> 3    SOLAR SYSTEM BARYCENTER -> EARTH BARYCENTER
And from kernel file 'de421.bsp':
  JD 2414864.50 - JD 2471184.50  (1899-07-28 through 2053-10-08)
      3 -> 301  EARTH BARYCENTER -> MOON
      3 -> 399  EARTH BARYCENTER -> EARTH`, k.Summary())

	v, err := k.Lookup(399)
	require.NoError(t, err)
	vs, ok := v.(*VectorSum)
	require.True(t, ok, "expected *VectorSum, got %T", v)
	assert.Equal(t, `Sum of 2 vectors:
 'de405.bsp' segment 0 SOLAR SYSTEM BARYCENTER -> 3 EARTH BARYCENTER
 'de421.bsp' segment 3 EARTH BARYCENTER -> 399 EARTH`, vs.String())

	legs := vs.Legs()
	require.Len(t, legs, 2)
	assert.Equal(t, pair{0, 3}, pair{legs[0].Vector.Center(), legs[0].Vector.Target()})
	assert.Equal(t, pair{3, 399}, pair{legs[1].Vector.Center(), legs[1].Vector.Target()})
	assert.Same(t, k, vs.Kernel())

	// 0->3 is constant (300,-1,0); 3->399 is (399, 11, 1) in the de421 fixture
	pos, _, err := vs.Evaluate(2451545.0)
	require.NoError(t, err)
	assert.Equal(t, astro.Vec3{X: 699, Y: 10, Z: 1}, pos[0])

	_, err = k.Lookup(4)
	assert.True(t, Is(err, ErrLookup))
}

func TestKernel_MissingBarycenterLink(t *testing.T) {
	k := de421()
	k.Retain(func(s *Segment) bool { return s.Target() == 399 })

	assert.Equal(t, []Code{0, 399}, k.Codes())

	_, err := k.LookupName("Earth")
	require.Error(t, err)
	assert.True(t, Is(err, ErrLookup))
	assert.Contains(t, err.Error(), "Barycenter to the target 'Earth'")
	assert.Contains(t, err.Error(), "3 EARTH BARYCENTER")

	_, err = k.Lookup(399)
	assert.Contains(t, err.Error(), "to the target 399 EARTH")
}

func TestKernel_LookupByName(t *testing.T) {
	k := de421()

	v, err := k.LookupName("earth barycenter")
	require.NoError(t, err)
	assert.Equal(t, Code(3), v.Target())

	v, err = k.Body("301")
	require.NoError(t, err)
	assert.Equal(t, Code(301), v.Target())

	v, err = k.Body("Moon")
	require.NoError(t, err)
	assert.Equal(t, Code(301), v.Target())

	_, err = k.LookupName("Vulcan")
	assert.True(t, Is(err, ErrLookup))
	assert.Contains(t, err.Error(), "unknown body name")

	_, err = k.LookupName("Titan")
	assert.True(t, Is(err, ErrLookup))
	assert.Contains(t, err.Error(), "is missing 606 'Titan'")
}

func TestKernel_ResolveBetweenBranches(t *testing.T) {
	k := de421()

	v, err := k.Resolve(301, 399)
	require.NoError(t, err)
	vs, ok := v.(*VectorSum)
	require.True(t, ok)

	legs := vs.Legs()
	require.Len(t, legs, 2)
	assert.Equal(t, Code(301), legs[0].Vector.Target())
	assert.Equal(t, -1, legs[0].Sign)
	assert.Equal(t, Code(399), legs[1].Vector.Target())
	assert.Equal(t, 1, legs[1].Sign)

	moon, _, err := k.Segments[10].Evaluate(2451545.0)
	require.NoError(t, err)
	earth, _, err := k.Segments[11].Evaluate(2451545.0)
	require.NoError(t, err)
	got, _, err := vs.Evaluate(2451545.0)
	require.NoError(t, err)
	assert.Equal(t, earth[0].Sub(moon[0]), got[0])

	// Across barycenters: Mars -> Earth climbs to the SSB and back down
	v, err = k.Resolve(499, 399)
	require.NoError(t, err)
	assert.Len(t, v.(*VectorSum).Legs(), 4)
}

func TestKernel_ResolveAncestor(t *testing.T) {
	k := de421()

	v, err := k.Resolve(3, 399)
	require.NoError(t, err)
	assert.IsType(t, edge{}, v)

	// A reversed single edge needs a sign flip, so it comes back wrapped
	v, err = k.Resolve(399, 3)
	require.NoError(t, err)
	vs, ok := v.(*VectorSum)
	require.True(t, ok)
	require.Len(t, vs.Legs(), 1)
	assert.Equal(t, -1, vs.Legs()[0].Sign)

	_, err = k.Resolve(3, 3)
	assert.True(t, Is(err, ErrLookup))
}

func TestKernel_AmbiguousTarget(t *testing.T) {
	k := de421()
	k.Append(constantSegment("other.bsp", 0, 5, 399, de421Start, de421End, astro.Vec3{}))

	_, err := k.Lookup(399)
	require.Error(t, err)
	assert.True(t, Is(err, ErrAmbiguousPath))

	// Unrelated branches still resolve
	_, err = k.Lookup(499)
	assert.NoError(t, err)
}

func TestKernel_StacksSamePairSegments(t *testing.T) {
	k := NewKernel(nil,
		constantSegment("de441-1969.bsp", 0, 0, 9, 28, 30, astro.Vec3{X: 1}),
		constantSegment("de441-1969.bsp", 1, 0, 9, 30, 32, astro.Vec3{X: 2}),
	)

	v, err := k.LookupName("pluto barycenter")
	require.NoError(t, err)
	stack, ok := v.(*Stack)
	require.True(t, ok, "expected *Stack, got %T", v)
	assert.Len(t, stack.Segments(), 2)
	assert.Same(t, k, stack.Kernel())

	pos, _, err := stack.Evaluate(28, 29, 30, 31)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 2, 2}, []float64{pos[0].X, pos[1].X, pos[2].X, pos[3].X})
}

func TestKernel_StackAsVectorSumLeg(t *testing.T) {
	k := NewKernel(nil,
		constantSegment("de441-1969.bsp", 0, 0, 9, 28, 30, astro.Vec3{X: 1}),
		constantSegment("de441-1969.bsp", 1, 0, 9, 30, 32, astro.Vec3{X: 2}),
		constantSegment("plu058.bsp", 0, 9, 999, 28, 32, astro.Vec3{X: 10}),
	)

	v, err := k.Lookup(999)
	require.NoError(t, err)
	vs, ok := v.(*VectorSum)
	require.True(t, ok, "expected *VectorSum, got %T", v)
	legs := vs.Legs()
	require.Len(t, legs, 2)
	assert.IsType(t, &Stack{}, legs[0].Vector)
	assert.Equal(t, 1, legs[0].Sign)
	assert.Equal(t, Code(999), legs[1].Vector.Target())

	pos, _, err := vs.Evaluate(28, 29, 30, 31)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 11, 12, 12}, []float64{pos[0].X, pos[1].X, pos[2].X, pos[3].X})

	// The stack's range error comes out of the sum unchanged
	_, _, err = vs.Evaluate(29, 33)
	require.Error(t, err)
	assert.True(t, Is(err, ErrRange))
	assert.Contains(t, err.Error(), "no segment for 0 -> 9 covers time JD 33.000000")
}

func TestKernel_SharedSegmentKeepsOwner(t *testing.T) {
	mars := constantSegment("de421.bsp", 3, 0, 4, de421Start, de421End, astro.Vec3{X: 4})
	earth := constantSegment("de421.bsp", 2, 0, 3, de421Start, de421End, astro.Vec3{X: 3})
	kA := NewKernel(nil, mars, earth)
	kB := NewKernel(nil, mars)

	vA, err := kA.Lookup(4)
	require.NoError(t, err)
	vB, err := kB.Lookup(4)
	require.NoError(t, err)

	assert.Same(t, kA, vA.Kernel())
	assert.Same(t, kB, vB.Kernel())
	assert.Nil(t, mars.Kernel(), "building a graph must not mark the segment")

	// Composites built after the other kernel's lookup still point home
	sum, err := kA.Resolve(3, 4)
	require.NoError(t, err)
	assert.Same(t, kA, sum.Kernel())
	for _, leg := range sum.(*VectorSum).Legs() {
		assert.Same(t, kA, leg.Vector.Kernel())
	}
}

func TestKernel_OverlappingSamePairIsConflict(t *testing.T) {
	k := NewKernel(nil,
		constantSegment("a.bsp", 0, 0, 9, 28, 31, astro.Vec3{}),
		constantSegment("b.bsp", 0, 0, 9, 30, 32, astro.Vec3{}),
	)

	_, err := k.Lookup(9)
	require.Error(t, err)
	assert.True(t, Is(err, ErrConflict))
}

func TestKernel_DirectEditsInvalidateGraph(t *testing.T) {
	k := de421()

	_, err := k.Lookup(399)
	require.NoError(t, err)

	// Drop 0->3 behind the kernel's back; the cached graph must not be used
	k.Segments = append(k.Segments[:2:2], k.Segments[3:]...)

	_, err = k.Lookup(399)
	require.Error(t, err)
	assert.True(t, Is(err, ErrLookup))

	// Swapping an element in place is also an edit
	k = de421()
	_, err = k.Lookup(3)
	require.NoError(t, err)
	k.Segments[2] = constantSegment("patch.bsp", 0, 0, 3, de421Start, de421End, astro.Vec3{X: 42})
	v, err := k.Lookup(3)
	require.NoError(t, err)
	assert.Equal(t, "patch.bsp", v.(edge).Source())
}

func TestKernel_RepeatedLookupIsStable(t *testing.T) {
	k := de421()

	a, err := k.Lookup(399)
	require.NoError(t, err)
	b, err := k.Lookup(399)
	require.NoError(t, err)

	pa, _, err := a.Evaluate(2451545.0, 2451600.0)
	require.NoError(t, err)
	pb, _, err := b.Evaluate(2451545.0, 2451600.0)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
	assert.Equal(t, a.String(), b.String())
}

func TestKernel_Empty(t *testing.T) {
	k := NewKernel(nil)

	assert.Empty(t, k.Codes())
	assert.False(t, k.Contains(0))
	assert.Equal(t, 0, k.Names().Len())
	assert.Equal(t, "Kernel with no segments", k.Summary())

	_, err := k.Lookup(0)
	assert.True(t, Is(err, ErrLookup))
}

func TestKernel_Replace(t *testing.T) {
	k := de421()
	k.Replace(de405().Segments)

	assert.Equal(t, []string{"de405.bsp"}, k.Files())
	assert.Equal(t, []Code{0, 1, 2, 3, 4}, k.Codes())
}

func TestParseCode(t *testing.T) {
	c, err := ParseCode("399")
	require.NoError(t, err)
	assert.Equal(t, Earth, c)

	c, err = ParseCode("Mars Barycenter")
	require.NoError(t, err)
	assert.Equal(t, MarsBarycenter, c)

	c, err = ParseCode("-31")
	require.NoError(t, err)
	assert.Equal(t, Code(-31), c)

	_, err = ParseCode("Vulcan")
	assert.True(t, Is(err, ErrLookup))
}

func keepTargets(segs []*Segment, targets ...Code) []*Segment {
	var out []*Segment
	for _, s := range segs {
		for _, t := range targets {
			if s.Target() == t {
				out = append(out, s)
				break
			}
		}
	}
	return out
}
