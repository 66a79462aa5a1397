// Package ephem answers wall-clock position queries from a segment kernel.
package ephem

import (
	"fmt"
	"sync"
	"time"

	"github.com/litescript/ls-ephem/internal/astro"
	"github.com/litescript/ls-ephem/internal/logging"
	"github.com/litescript/ls-ephem/internal/spk"
)

const (
	// DefaultPathDuration is the default time span for trajectory paths.
	DefaultPathDuration = 24 * time.Hour

	// DefaultPathStep is the default step between path points.
	DefaultPathStep = 10 * time.Minute

	// maxPathPoints bounds the samples in one path request.
	maxPathPoints = 10000
)

// Point is a position of a target relative to a center at one instant.
type Point struct {
	Time        time.Time
	TDB         float64    // TDB Julian date used for the lookup
	Position    astro.Vec3 // km
	Velocity    astro.Vec3 // km/day, zero unless HasVelocity
	HasVelocity bool
}

// Distance returns the length of the position vector in km.
func (p Point) Distance() float64 {
	return p.Position.Norm()
}

// Path is a sampled trajectory of a target relative to a center.
type Path struct {
	Center spk.Code
	Target spk.Code
	Points []Point
	Start  time.Time
	End    time.Time
}

// Provider defines the interface for ephemeris data sources.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// Position returns the barycentric position of target at t.
	Position(target spk.Code, t time.Time) (Point, error)

	// PositionFrom returns the position of target relative to center at t.
	PositionFrom(center, target spk.Code, t time.Time) (Point, error)

	// Path samples PositionFrom over [start, end] every step.
	Path(center, target spk.Code, start, end time.Time, step time.Duration) (Path, error)

	// Available returns true if this provider can supply data for the target.
	Available(target spk.Code) bool
}

// KernelProvider answers queries from an spk.Kernel. The kernel can be
// swapped while the provider is in use; every query holds the provider's
// lock because kernel lookups refresh the kernel's routing cache.
type KernelProvider struct {
	mu     sync.Mutex
	kernel *spk.Kernel
	logger *logging.Logger
}

// NewKernelProvider creates a provider over kernel. A nil logger discards
// output.
func NewKernelProvider(kernel *spk.Kernel, logger *logging.Logger) *KernelProvider {
	if logger == nil {
		logger = logging.Discard()
	}
	return &KernelProvider{kernel: kernel, logger: logger}
}

// Name implements Provider.
func (p *KernelProvider) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return "Kernel " + p.kernel.Label()
}

// SetKernel replaces the kernel behind the provider.
func (p *KernelProvider) SetKernel(k *spk.Kernel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kernel = k
}

// Update runs fn against the current kernel under the provider's lock, for
// in-place edits such as Kernel.Replace.
func (p *KernelProvider) Update(fn func(*spk.Kernel)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.kernel)
}

// Position implements Provider.
func (p *KernelProvider) Position(target spk.Code, t time.Time) (Point, error) {
	return p.PositionFrom(spk.SolarSystemBarycenter, target, t)
}

// PositionFrom implements Provider.
func (p *KernelProvider) PositionFrom(center, target spk.Code, t time.Time) (Point, error) {
	path, err := p.sample(center, target, []time.Time{t})
	if err != nil {
		return Point{}, err
	}
	return path[0], nil
}

// Heliocentric returns the position of target relative to the Sun.
func (p *KernelProvider) Heliocentric(target spk.Code, t time.Time) (Point, error) {
	return p.PositionFrom(spk.Sun, target, t)
}

// Distance returns the distance in km between center and target at t.
func (p *KernelProvider) Distance(center, target spk.Code, t time.Time) (float64, error) {
	pt, err := p.PositionFrom(center, target, t)
	if err != nil {
		return 0, err
	}
	return pt.Distance(), nil
}

// LightTime returns the one-way light time between center and target at t.
func (p *KernelProvider) LightTime(center, target spk.Code, t time.Time) (time.Duration, error) {
	km, err := p.Distance(center, target, t)
	if err != nil {
		return 0, err
	}
	return time.Duration(astro.LightTime(km) * float64(time.Second)), nil
}

// Path implements Provider.
func (p *KernelProvider) Path(center, target spk.Code, start, end time.Time, step time.Duration) (Path, error) {
	if step <= 0 {
		return Path{}, fmt.Errorf("path step must be positive, got %v", step)
	}
	if end.Before(start) {
		return Path{}, fmt.Errorf("path end %v is before start %v", end, start)
	}
	n := int(end.Sub(start)/step) + 1
	if n > maxPathPoints {
		return Path{}, fmt.Errorf("path of %d points exceeds the limit of %d", n, maxPathPoints)
	}

	times := make([]time.Time, n)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * step)
	}
	points, err := p.sample(center, target, times)
	if err != nil {
		return Path{}, err
	}
	return Path{Center: center, Target: target, Points: points, Start: start, End: end}, nil
}

// Available implements Provider.
func (p *KernelProvider) Available(target spk.Code) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kernel.Contains(target)
}

// Codes returns the body codes the current kernel can answer for.
func (p *KernelProvider) Codes() []spk.Code {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kernel.Codes()
}

// Summary describes the current kernel.
func (p *KernelProvider) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kernel.Summary()
}

// Chain returns the description of the composite vector used for
// center -> target.
func (p *KernelProvider) Chain(center, target spk.Code) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, err := p.kernel.Resolve(center, target)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func (p *KernelProvider) sample(center, target spk.Code, times []time.Time) ([]Point, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, err := p.kernel.Resolve(center, target)
	if err != nil {
		return nil, fmt.Errorf("resolving %d -> %d: %w", center, target, err)
	}

	tdb := make([]float64, len(times))
	for i, t := range times {
		tdb[i] = astro.TDB(t)
	}
	pos, vel, err := v.Evaluate(tdb...)
	if err != nil {
		return nil, fmt.Errorf("evaluating %d -> %d: %w", center, target, err)
	}

	points := make([]Point, len(times))
	for i := range times {
		points[i] = Point{Time: times[i], TDB: tdb[i], Position: pos[i]}
		if vel != nil {
			points[i].Velocity = vel[i]
			points[i].HasVelocity = true
		}
	}
	p.logger.Debug("sampled %d points for %d -> %d", len(points), center, target)
	return points, nil
}
