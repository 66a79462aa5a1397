package spk

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/litescript/ls-ephem/internal/logging"
)

// Kernel owns the segments loaded from one or more kernel files and
// resolves body-to-body queries against them.
type Kernel struct {
	// Segments is the source of truth. Edit it freely; nothing is validated
	// until the next lookup.
	Segments []*Segment

	logger *logging.Logger
	cached *graph
}

// NewKernel creates an empty kernel. A nil logger discards output.
func NewKernel(logger *logging.Logger, segments ...*Segment) *Kernel {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Kernel{
		Segments: append([]*Segment(nil), segments...),
		logger:   logger,
	}
}

// Append adds segments to the end of the list.
func (k *Kernel) Append(segments ...*Segment) {
	k.Segments = append(k.Segments, segments...)
}

// Retain keeps only the segments for which keep returns true.
func (k *Kernel) Retain(keep func(*Segment) bool) {
	kept := make([]*Segment, 0, len(k.Segments))
	for _, s := range k.Segments {
		if keep(s) {
			kept = append(kept, s)
		}
	}
	k.Segments = kept
}

// Replace swaps in a new segment list.
func (k *Kernel) Replace(segments []*Segment) {
	k.Segments = append([]*Segment(nil), segments...)
}

// Len returns the number of segments.
func (k *Kernel) Len() int {
	return len(k.Segments)
}

// Codes returns every target code plus 0 when any segment exists, sorted.
func (k *Kernel) Codes() []Code {
	seen := make(map[Code]bool, len(k.Segments)+1)
	for _, s := range k.Segments {
		seen[s.target] = true
	}
	if len(k.Segments) > 0 {
		seen[SolarSystemBarycenter] = true
	}

	codes := make([]Code, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Contains reports whether code is one of Codes.
func (k *Kernel) Contains(code Code) bool {
	if code == SolarSystemBarycenter {
		return len(k.Segments) > 0
	}
	for _, s := range k.Segments {
		if s.target == code {
			return true
		}
	}
	return false
}

// Names returns the name registry for the current codes.
func (k *Kernel) Names() *NameRegistry {
	return NewNameRegistry(k.Codes())
}

// Files returns the distinct segment sources in order of first appearance.
func (k *Kernel) Files() []string {
	var files []string
	seen := make(map[string]bool)
	for _, s := range k.Segments {
		if !seen[s.source] {
			seen[s.source] = true
			files = append(files, s.source)
		}
	}
	return files
}

// Label returns a short identifier such as <Kernel 'de405.bsp' 'de421.bsp'>.
func (k *Kernel) Label() string {
	var b strings.Builder
	b.WriteString("<Kernel")
	for _, f := range k.Files() {
		fmt.Fprintf(&b, " '%s'", f)
	}
	b.WriteString(">")
	return b.String()
}

// Lookup resolves the vector from the solar system barycenter to code.
func (k *Kernel) Lookup(code Code) (Vector, error) {
	if !k.Contains(code) {
		return nil, NewMissing(describe(code))
	}
	return k.resolve(SolarSystemBarycenter, code, describe(code))
}

// LookupName resolves the vector from the solar system barycenter to the
// body with the given name (case-insensitive).
func (k *Kernel) LookupName(name string) (Vector, error) {
	code, ok := BuiltinCode(name)
	if !ok {
		return nil, NewLookup(fmt.Sprintf("unknown body name '%s'", name))
	}
	if !k.Contains(code) {
		return nil, NewMissing(fmt.Sprintf("%d '%s'", code, name))
	}
	return k.resolve(SolarSystemBarycenter, code, fmt.Sprintf("'%s'", name))
}

// Body resolves a key that is either a numeric code or a body name.
func (k *Kernel) Body(key string) (Vector, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(key)); err == nil {
		return k.Lookup(Code(n))
	}
	return k.LookupName(key)
}

// ParseCode turns a numeric code or a builtin body name into a code.
func ParseCode(key string) (Code, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(key)); err == nil {
		return Code(n), nil
	}
	if c, ok := BuiltinCode(key); ok {
		return c, nil
	}
	return 0, NewLookup(fmt.Sprintf("unknown body name '%s'", key))
}

// Resolve returns the vector from center to target.
func (k *Kernel) Resolve(center, target Code) (Vector, error) {
	return k.resolve(center, target, describe(target))
}

func (k *Kernel) String() string {
	return k.Summary()
}
