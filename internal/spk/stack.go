package spk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/litescript/ls-ephem/internal/astro"
)

// Stack joins two or more segments of one pair that cover disjoint spans of
// time. Each query time is routed to the member whose interval holds it.
type Stack struct {
	center   Code
	target   Code
	segments []*Segment // sorted by start, non-overlapping
	kernel   *Kernel
}

// NewStack builds a stack owned by kernel. Members are sorted by start time;
// intervals may touch but not overlap.
func NewStack(kernel *Kernel, segments ...*Segment) (*Stack, error) {
	if len(segments) < 2 {
		return nil, &Error{
			Code:    ErrConflict,
			Message: fmt.Sprintf("a stack needs at least 2 segments, got %d", len(segments)),
		}
	}

	sorted := append([]*Segment(nil), segments...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	first := sorted[0]
	for i := 1; i < len(sorted); i++ {
		s := sorted[i]
		if s.center != first.center || s.target != first.target {
			return nil, NewMixedPairs(first, s)
		}
		if prev := sorted[i-1]; s.start < prev.end {
			return nil, NewConflict(prev, s)
		}
	}

	return &Stack{
		center:   first.center,
		target:   first.target,
		segments: sorted,
		kernel:   kernel,
	}, nil
}

// Center implements Vector.
func (s *Stack) Center() Code { return s.center }

// Target implements Vector.
func (s *Stack) Target() Code { return s.target }

// Kernel implements Vector.
func (s *Stack) Kernel() *Kernel { return s.kernel }

// Segments returns the members in time order.
func (s *Stack) Segments() []*Segment {
	return append([]*Segment(nil), s.segments...)
}

// Start returns the start of the earliest member.
func (s *Stack) Start() float64 { return s.segments[0].start }

// End returns the end of the latest member.
func (s *Stack) End() float64 { return s.segments[len(s.segments)-1].end }

// hasGaps reports whether some time between Start and End is covered by no
// member.
func (s *Stack) hasGaps() bool {
	for i := 1; i < len(s.segments); i++ {
		if s.segments[i].start > s.segments[i-1].end {
			return true
		}
	}
	return false
}

// member returns the segment covering tdb, or nil. When two members touch,
// the shared instant belongs to the later one.
func (s *Stack) member(tdb float64) *Segment {
	i := sort.Search(len(s.segments), func(i int) bool { return s.segments[i].start > tdb }) - 1
	if i < 0 || !s.segments[i].Covers(tdb) {
		return nil
	}
	return s.segments[i]
}

// Evaluate implements Vector. Times are grouped by member so each member
// is evaluated once; results come back in input order.
func (s *Stack) Evaluate(tdb ...float64) ([]astro.Vec3, []astro.Vec3, error) {
	groups := make(map[*Segment][]int)
	var order []*Segment
	for i, t := range tdb {
		seg := s.member(t)
		if seg == nil {
			return nil, nil, NewStackRangeError(t, s.center, s.target, s.Start(), s.End(), s.hasGaps())
		}
		if _, seen := groups[seg]; !seen {
			order = append(order, seg)
		}
		groups[seg] = append(groups[seg], i)
	}

	pos := make([]astro.Vec3, len(tdb))
	vel := make([]astro.Vec3, len(tdb))
	hasVel := true
	for _, seg := range order {
		idx := groups[seg]
		times := make([]float64, len(idx))
		for j, i := range idx {
			times[j] = tdb[i]
		}

		p, v, err := seg.Evaluate(times...)
		if err != nil {
			return nil, nil, err
		}
		if v == nil {
			hasVel = false
		}
		for j, i := range idx {
			pos[i] = p[j]
			if v != nil {
				vel[i] = v[j]
			}
		}
	}

	if !hasVel {
		vel = nil
	}
	return pos, vel, nil
}

func (s *Stack) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "stack of %d segments %s -> %s:", len(s.segments), describe(s.center), describe(s.target))
	for _, seg := range s.segments {
		fmt.Fprintf(&b, " ['%s' JD %.2f - JD %.2f]", seg.source, seg.start, seg.end)
	}
	return b.String()
}
