// Package spkfile reads and writes segment manifests: TOML files holding
// decoded ephemeris segments as Chebyshev coefficient records.
package spkfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/litescript/ls-ephem/internal/logging"
	"github.com/litescript/ls-ephem/internal/spk"
)

// ErrNoSegments indicates a manifest that parsed but declares no segments.
var ErrNoSegments = errors.New("manifest declares no segments")

// Manifest is the on-disk layout of one segment file.
type Manifest struct {
	Label    string        `toml:"label,omitempty"`
	Segments []SegmentSpec `toml:"segment"`
}

// SegmentSpec describes one center -> target segment.
type SegmentSpec struct {
	Center  int          `toml:"center"`
	Target  int          `toml:"target"`
	Start   float64      `toml:"start"`
	End     float64      `toml:"end"`
	Init    *float64     `toml:"init,omitempty"` // defaults to Start
	IntLen  float64      `toml:"intlen"`
	Records []RecordSpec `toml:"record"`
}

// RecordSpec holds the coefficients of one record.
type RecordSpec struct {
	X  []float64 `toml:"x"`
	Y  []float64 `toml:"y"`
	Z  []float64 `toml:"z"`
	VX []float64 `toml:"vx,omitempty"`
	VY []float64 `toml:"vy,omitempty"`
	VZ []float64 `toml:"vz,omitempty"`
}

// Load reads the manifest at path and returns its label and segments.
// Without a label in the file, the file's base name is used.
func Load(path string) (string, []*spk.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading manifest: %w", err)
	}
	label, segs, err := Parse(data, filepath.Base(path))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	return label, segs, nil
}

// Parse decodes manifest bytes. defaultLabel is used when the manifest has
// no label of its own.
func Parse(data []byte, defaultLabel string) (string, []*spk.Segment, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return "", nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if len(m.Segments) == 0 {
		return "", nil, ErrNoSegments
	}

	label := strings.TrimSpace(m.Label)
	if label == "" {
		label = defaultLabel
	}

	segs := make([]*spk.Segment, 0, len(m.Segments))
	for i, spec := range m.Segments {
		seg, err := spec.segment(label, i)
		if err != nil {
			return "", nil, fmt.Errorf("segment %d (%d -> %d): %w", i, spec.Center, spec.Target, err)
		}
		segs = append(segs, seg)
	}
	return label, segs, nil
}

func (s SegmentSpec) segment(label string, index int) (*spk.Segment, error) {
	if s.End < s.Start {
		return nil, fmt.Errorf("end JD %.6f is before start JD %.6f", s.End, s.Start)
	}
	if s.Center == s.Target {
		return nil, fmt.Errorf("center and target are both %d", s.Center)
	}

	init := s.Start
	if s.Init != nil {
		init = *s.Init
	}
	cheb := &spk.Chebyshev{
		Init:    init,
		IntLen:  s.IntLen,
		Records: make([]spk.ChebyshevRecord, len(s.Records)),
	}
	for i, r := range s.Records {
		cheb.Records[i] = spk.ChebyshevRecord{X: r.X, Y: r.Y, Z: r.Z, VX: r.VX, VY: r.VY, VZ: r.VZ}
	}
	if err := cheb.Validate(); err != nil {
		return nil, err
	}
	if init > s.Start || cheb.End() < s.End {
		return nil, fmt.Errorf("records cover JD %.6f - JD %.6f, short of JD %.6f - JD %.6f",
			init, cheb.End(), s.Start, s.End)
	}

	return spk.NewSegment(spk.SegmentRecord{
		Source:    label,
		Index:     index,
		Center:    spk.Code(s.Center),
		Target:    spk.Code(s.Target),
		Start:     s.Start,
		End:       s.End,
		Evaluator: cheb,
	}), nil
}

// LoadSegments reads every manifest in order and concatenates the segments.
func LoadSegments(paths ...string) ([]*spk.Segment, error) {
	var all []*spk.Segment
	for _, p := range paths {
		_, segs, err := Load(p)
		if err != nil {
			return nil, err
		}
		all = append(all, segs...)
	}
	return all, nil
}

// LoadKernel builds a kernel from the manifests at paths, in order.
func LoadKernel(logger *logging.Logger, paths ...string) (*spk.Kernel, error) {
	segs, err := LoadSegments(paths...)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("loaded %d segments from %d manifests", len(segs), len(paths))
	}
	return spk.NewKernel(logger, segs...), nil
}

// Encode renders segments as a manifest. Only segments backed by a
// Chebyshev evaluator can be written.
func Encode(label string, segments []*spk.Segment) ([]byte, error) {
	m := Manifest{Label: label, Segments: make([]SegmentSpec, 0, len(segments))}
	for _, s := range segments {
		cheb, ok := s.Evaluator().(*spk.Chebyshev)
		if !ok {
			return nil, fmt.Errorf("%s: evaluator %T has no manifest form", s, s.Evaluator())
		}
		init := cheb.Init
		spec := SegmentSpec{
			Center:  int(s.Center()),
			Target:  int(s.Target()),
			Start:   s.Start(),
			End:     s.End(),
			Init:    &init,
			IntLen:  cheb.IntLen,
			Records: make([]RecordSpec, len(cheb.Records)),
		}
		for i, r := range cheb.Records {
			spec.Records[i] = RecordSpec{X: r.X, Y: r.Y, Z: r.Z, VX: r.VX, VY: r.VY, VZ: r.VZ}
		}
		m.Segments = append(m.Segments, spec)
	}
	return toml.Marshal(m)
}

// Write encodes segments to path, replacing any existing file. The manifest
// is written to a temp file first and renamed into place.
func Write(path, label string, segments []*spk.Segment) error {
	data, err := Encode(label, segments)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing manifest: %w", err)
	}
	return nil
}
