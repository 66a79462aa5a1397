package spk

import "sort"

// NameRegistry maps body codes to their names and back, restricted to the
// codes present in one kernel.
type NameRegistry struct {
	names map[Code][]string
	codes map[string]Code
}

// NewNameRegistry builds a registry for codes from the builtin name table.
// Codes with no builtin names are left out.
func NewNameRegistry(codes []Code) *NameRegistry {
	r := &NameRegistry{
		names: make(map[Code][]string, len(codes)),
		codes: make(map[string]Code, len(codes)*2),
	}
	for _, c := range codes {
		names := bodyNames[c]
		if len(names) == 0 {
			continue
		}
		r.names[c] = append([]string(nil), names...)
		for _, n := range names {
			r.codes[normalizeName(n)] = c
		}
	}
	return r
}

// Names returns the names registered for code in insertion order.
func (r *NameRegistry) Names(code Code) []string {
	return r.names[code]
}

// Code returns the code for a name (case-insensitive).
func (r *NameRegistry) Code(name string) (Code, bool) {
	c, ok := r.codes[normalizeName(name)]
	return c, ok
}

// Codes returns the named codes in ascending order.
func (r *NameRegistry) Codes() []Code {
	out := make([]Code, 0, len(r.names))
	for c := range r.names {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Map returns a copy of the code -> names mapping.
func (r *NameRegistry) Map() map[Code][]string {
	m := make(map[Code][]string, len(r.names))
	for c, names := range r.names {
		m[c] = append([]string(nil), names...)
	}
	return m
}

// Len returns the number of named codes.
func (r *NameRegistry) Len() int {
	return len(r.names)
}
