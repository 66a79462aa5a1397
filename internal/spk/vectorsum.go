package spk

import (
	"fmt"
	"strings"

	"github.com/litescript/ls-ephem/internal/astro"
)

// Leg is one edge of a VectorSum. Sign is +1 when the path walks the edge
// from its center to its target and -1 when it walks target to center.
type Leg struct {
	Vector Vector
	Sign   int
}

// from and to return the path endpoints of the leg in walking order.
func (l Leg) from() Code {
	if l.Sign < 0 {
		return l.Vector.Target()
	}
	return l.Vector.Center()
}

func (l Leg) to() Code {
	if l.Sign < 0 {
		return l.Vector.Center()
	}
	return l.Vector.Target()
}

// VectorSum chains edges of different pairs, possibly from different files,
// into the displacement from Center to Target.
type VectorSum struct {
	center Code
	target Code
	legs   []Leg
	kernel *Kernel
}

// NewVectorSum validates that legs walk from center to target as a single
// path visiting no body twice. A lone forward leg is rejected: callers use
// the edge itself instead.
func NewVectorSum(kernel *Kernel, center, target Code, legs ...Leg) (*VectorSum, error) {
	if len(legs) == 0 {
		return nil, NewBrokenChain(fmt.Sprintf("no legs from %s to %s", describe(center), describe(target)))
	}
	if len(legs) == 1 && legs[0].Sign > 0 {
		return nil, NewBrokenChain(fmt.Sprintf("single forward leg %s needs no vector sum", legs[0].Vector))
	}

	visited := map[Code]bool{center: true}
	at := center
	for i, leg := range legs {
		if leg.Vector == nil {
			return nil, NewBrokenChain(fmt.Sprintf("leg %d is nil", i))
		}
		if leg.Sign != 1 && leg.Sign != -1 {
			return nil, NewBrokenChain(fmt.Sprintf("leg %d has sign %d, want +1 or -1", i, leg.Sign))
		}
		if leg.from() != at {
			return nil, NewBrokenChain(fmt.Sprintf("leg %d starts at %s but the path is at %s",
				i, describe(leg.from()), describe(at)))
		}
		next := leg.to()
		if visited[next] {
			return nil, NewBrokenChain(fmt.Sprintf("leg %d revisits %s", i, describe(next)))
		}
		visited[next] = true
		at = next
	}
	if at != target {
		return nil, NewBrokenChain(fmt.Sprintf("path ends at %s, want %s", describe(at), describe(target)))
	}

	return &VectorSum{
		center: center,
		target: target,
		legs:   append([]Leg(nil), legs...),
		kernel: kernel,
	}, nil
}

// Center implements Vector.
func (v *VectorSum) Center() Code { return v.center }

// Target implements Vector.
func (v *VectorSum) Target() Code { return v.target }

// Kernel implements Vector.
func (v *VectorSum) Kernel() *Kernel { return v.kernel }

// Legs returns the legs in path order.
func (v *VectorSum) Legs() []Leg {
	return append([]Leg(nil), v.legs...)
}

// Evaluate implements Vector. The first failing leg aborts the sum.
func (v *VectorSum) Evaluate(tdb ...float64) ([]astro.Vec3, []astro.Vec3, error) {
	pos := make([]astro.Vec3, len(tdb))
	vel := make([]astro.Vec3, len(tdb))
	hasVel := true

	for _, leg := range v.legs {
		p, vl, err := leg.Vector.Evaluate(tdb...)
		if err != nil {
			return nil, nil, err
		}
		sign := float64(leg.Sign)
		for i := range tdb {
			pos[i] = pos[i].Add(p[i].Scale(sign))
		}
		if vl == nil {
			hasVel = false
			continue
		}
		for i := range tdb {
			vel[i] = vel[i].Add(vl[i].Scale(sign))
		}
	}

	if !hasVel {
		vel = nil
	}
	return pos, vel, nil
}

func (v *VectorSum) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sum of %d vectors:", len(v.legs))
	for _, leg := range v.legs {
		sign := ""
		if leg.Sign < 0 {
			sign = "- "
		}
		fmt.Fprintf(&b, "\n %s%s", sign, leg.Vector)
	}
	return b.String()
}
