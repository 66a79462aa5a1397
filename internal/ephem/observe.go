package ephem

import (
	"fmt"
	"time"

	"github.com/litescript/ls-ephem/internal/astro"
	"github.com/litescript/ls-ephem/internal/spk"
)

// Observation is the geometric direction and range of a target as seen
// from an observer body. No light-time or aberration correction is applied.
type Observation struct {
	Observer spk.Code
	Target   spk.Code
	Time     time.Time
	TDB      float64

	Position  astro.Vec3 // observer -> target, km, equatorial
	RADeg     float64
	DecDeg    float64
	RangeKm   float64
	LightTime time.Duration

	// Angle between target and Sun as seen by the observer. Only set when
	// the kernel reaches the Sun; SunTier is meaningless otherwise.
	SunSeparationDeg float64
	SunTier          astro.SunSeparationTier
	HasSun           bool
}

// Observe returns where target appears from observer at t. The target chain
// is resolved first; the observer and Sun chains are then requested from the
// same kernel through the resolved vector's back-reference.
func (p *KernelProvider) Observe(observer, target spk.Code, t time.Time) (Observation, error) {
	if observer == target {
		return Observation{}, spk.NewLookup(fmt.Sprintf("cannot observe %d from itself", target))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tdb := astro.TDB(t)

	k := p.kernel
	var targetPos astro.Vec3
	if target != spk.SolarSystemBarycenter {
		tv, err := p.kernel.Lookup(target)
		if err != nil {
			return Observation{}, fmt.Errorf("target %d: %w", target, err)
		}
		k = tv.Kernel()

		targetPos, err = positionAt(tv, tdb)
		if err != nil {
			return Observation{}, fmt.Errorf("target %d: %w", target, err)
		}
	}
	observerPos, err := barycentric(k, observer, tdb)
	if err != nil {
		return Observation{}, fmt.Errorf("observer %d: %w", observer, err)
	}

	rel := targetPos.Sub(observerPos)
	ra, dec := astro.RADec(rel)
	rng := rel.Norm()
	obs := Observation{
		Observer:  observer,
		Target:    target,
		Time:      t,
		TDB:       tdb,
		Position:  rel,
		RADeg:     ra,
		DecDeg:    dec,
		RangeKm:   rng,
		LightTime: time.Duration(astro.LightTime(rng) * float64(time.Second)),
	}

	if observer != spk.Sun && target != spk.Sun && k.Contains(spk.Sun) {
		sunPos, err := barycentric(k, spk.Sun, tdb)
		if err != nil {
			p.logger.Debug("no sun separation for %d: %v", target, err)
			return obs, nil
		}
		obs.SunSeparationDeg = astro.Separation(rel, sunPos.Sub(observerPos))
		obs.SunTier = astro.GetSunSeparationTier(obs.SunSeparationDeg)
		obs.HasSun = true
	}
	return obs, nil
}

// barycentric returns the position of code relative to the solar system
// barycenter. The barycenter itself is the origin.
func barycentric(k *spk.Kernel, code spk.Code, tdb float64) (astro.Vec3, error) {
	if code == spk.SolarSystemBarycenter {
		return astro.Vec3{}, nil
	}
	v, err := k.Lookup(code)
	if err != nil {
		return astro.Vec3{}, err
	}
	return positionAt(v, tdb)
}

func positionAt(v spk.Vector, tdb float64) (astro.Vec3, error) {
	pos, _, err := v.Evaluate(tdb)
	if err != nil {
		return astro.Vec3{}, err
	}
	return pos[0], nil
}
