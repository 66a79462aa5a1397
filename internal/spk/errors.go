package spk

import (
	"errors"
	"fmt"
)

// ErrorCode classifies resolution and evaluation failures.
type ErrorCode string

const (
	ErrRange         ErrorCode = "RANGE"          // time outside segment coverage
	ErrConflict      ErrorCode = "CONFLICT"       // overlapping same-pair segments
	ErrAmbiguousPath ErrorCode = "AMBIGUOUS_PATH" // one target, several centers
	ErrLookup        ErrorCode = "LOOKUP"         // body absent or chain missing a link
	ErrBrokenChain   ErrorCode = "BROKEN_CHAIN"   // vector sum legs do not connect
)

// Error is a structured ephemeris error with code and details.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewRangeError reports a query time outside the interval [start, end]
// covered for the pair center -> target.
func NewRangeError(tdb float64, center, target Code, start, end float64) *Error {
	return &Error{
		Code: ErrRange,
		Message: fmt.Sprintf("time JD %.6f is outside the coverage of %d -> %d (JD %.6f - JD %.6f)",
			tdb, center, target, start, end),
		Details: map[string]any{"tdb": tdb, "center": center, "target": target, "start": start, "end": end},
	}
}

// NewStackRangeError reports a query time that falls in no member of a stack,
// either outside its span or, when gaps is set, between two of its members.
func NewStackRangeError(tdb float64, center, target Code, start, end float64, gaps bool) *Error {
	span := fmt.Sprintf("stack spans JD %.6f - JD %.6f", start, end)
	if gaps {
		span += " with gaps"
	}
	return &Error{
		Code:    ErrRange,
		Message: fmt.Sprintf("no segment for %d -> %d covers time JD %.6f (%s)", center, target, tdb, span),
		Details: map[string]any{"tdb": tdb, "center": center, "target": target, "start": start, "end": end},
	}
}

// NewConflict reports two same-pair segments whose intervals overlap.
func NewConflict(a, b *Segment) *Error {
	return &Error{
		Code: ErrConflict,
		Message: fmt.Sprintf("segments for %d -> %d overlap: JD %.6f - JD %.6f (%s) and JD %.6f - JD %.6f (%s)",
			a.center, a.target, a.start, a.end, a.source, b.start, b.end, b.source),
		Details: map[string]any{"center": a.center, "target": a.target},
	}
}

// NewMixedPairs reports an attempt to stack segments of different pairs.
func NewMixedPairs(a, b *Segment) *Error {
	return &Error{
		Code: ErrConflict,
		Message: fmt.Sprintf("cannot stack %d -> %d with %d -> %d",
			a.center, a.target, b.center, b.target),
	}
}

// NewAmbiguousPath reports a target claimed by more than one center.
func NewAmbiguousPath(target Code, centers []Code) *Error {
	return &Error{
		Code:    ErrAmbiguousPath,
		Message: fmt.Sprintf("target %s has segments from several centers %v", describe(target), centers),
		Details: map[string]any{"target": target, "centers": centers},
	}
}

// NewMissing reports a body code or name absent from the kernel.
func NewMissing(what string) *Error {
	return &Error{
		Code:    ErrLookup,
		Message: fmt.Sprintf("kernel is missing %s", what),
		Details: map[string]any{"body": what},
	}
}

// NewMissingLink reports a chain that cannot reach from center to target
// because the hierarchy stops at root before the two sides meet.
func NewMissingLink(center, target string, root Code) *Error {
	return &Error{
		Code: ErrLookup,
		Message: fmt.Sprintf("no segment connects %s to the target %s (no segment gives a center for %s)",
			center, target, describe(root)),
		Details: map[string]any{"center": center, "target": target, "root": root},
	}
}

// NewLookup creates a generic lookup error.
func NewLookup(msg string) *Error {
	return &Error{
		Code:    ErrLookup,
		Message: msg,
	}
}

// NewBrokenChain reports vector sum legs that do not form one path.
func NewBrokenChain(msg string) *Error {
	return &Error{
		Code:    ErrBrokenChain,
		Message: msg,
	}
}

// Is reports whether err, or any error it wraps, is an *Error with code.
func Is(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
