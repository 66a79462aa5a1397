// Package spk resolves body positions from ephemeris segments.
//
// A Kernel holds the segments decoded from one or more kernel files. Each
// segment is an edge center -> target in a forest rooted at the solar system
// barycenter (code 0). Lookups walk that forest and return the smallest
// composite answering the query: a bare Segment, a Stack of same-pair
// segments split in time, or a VectorSum chaining edges across pairs.
//
// The Kernel's Segments slice is the single source of truth. It may be
// edited directly; every derived view (codes, names, graph) is rebuilt from
// it when the slice no longer matches the cached build. A Kernel is not safe
// for concurrent mutation.
package spk

import (
	"fmt"
	"math"

	"github.com/litescript/ls-ephem/internal/astro"
)

// Vector is anything that yields the displacement of Target from Center at
// given TDB Julian dates: a Segment, Stack or VectorSum.
type Vector interface {
	Center() Code
	Target() Code

	// Kernel returns the kernel this vector was resolved from, so callers can
	// resolve further chains (an observer, the Sun) against the same data.
	Kernel() *Kernel

	// Evaluate returns one position (km) per time and, when every underlying
	// segment supports it, one velocity (km/day) per time; otherwise vel is nil.
	Evaluate(tdb ...float64) (pos, vel []astro.Vec3, err error)

	String() string
}

// SegmentRecord is a decoded segment as handed over by a file reader.
type SegmentRecord struct {
	Source    string // label of the file the segment came from
	Index     int    // position of the segment within that file
	Center    Code
	Target    Code
	Start     float64 // TDB Julian date
	End       float64 // TDB Julian date
	Evaluator Evaluator
}

// Segment is one polynomial position function over [Start, End] for one
// center -> target pair. Segments are immutable once created.
type Segment struct {
	source string
	index  int
	center Code
	target Code
	start  float64
	end    float64
	eval   Evaluator
}

// NewSegment creates a segment from a decoded record.
func NewSegment(rec SegmentRecord) *Segment {
	return &Segment{
		source: rec.Source,
		index:  rec.Index,
		center: rec.Center,
		target: rec.Target,
		start:  rec.Start,
		end:    rec.End,
		eval:   rec.Evaluator,
	}
}

// Center implements Vector.
func (s *Segment) Center() Code { return s.center }

// Target implements Vector.
func (s *Segment) Target() Code { return s.target }

// Kernel implements Vector. A Segment may sit in several kernels' lists, so
// on its own it belongs to none; vectors resolved from a Kernel report it.
func (s *Segment) Kernel() *Kernel { return nil }

// Source returns the label of the file the segment was decoded from.
func (s *Segment) Source() string { return s.source }

// Index returns the segment's position within its source file.
func (s *Segment) Index() int { return s.index }

// Start returns the first covered TDB Julian date.
func (s *Segment) Start() float64 { return s.start }

// End returns the last covered TDB Julian date.
func (s *Segment) End() float64 { return s.end }

// Evaluator returns the function behind the segment.
func (s *Segment) Evaluator() Evaluator { return s.eval }

// Covers reports whether tdb lies within [Start, End].
func (s *Segment) Covers(tdb float64) bool {
	return !math.IsNaN(tdb) && s.start <= tdb && tdb <= s.end
}

// HasVelocity reports whether the segment's evaluator supplies velocity.
func (s *Segment) HasVelocity() bool {
	_, ok := s.eval.(VelocityEvaluator)
	return ok
}

// Evaluate implements Vector.
func (s *Segment) Evaluate(tdb ...float64) ([]astro.Vec3, []astro.Vec3, error) {
	pos := make([]astro.Vec3, len(tdb))
	ve, hasVel := s.eval.(VelocityEvaluator)
	var vel []astro.Vec3
	if hasVel {
		vel = make([]astro.Vec3, len(tdb))
	}

	for i, t := range tdb {
		if !s.Covers(t) {
			return nil, nil, NewRangeError(t, s.center, s.target, s.start, s.end)
		}
		pos[i] = s.eval.Position(t)
		if hasVel {
			vel[i] = ve.Velocity(t)
		}
	}
	return pos, vel, nil
}

func (s *Segment) String() string {
	return fmt.Sprintf("'%s' segment %s -> %s", s.source, describe(s.center), describe(s.target))
}
