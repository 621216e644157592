package mdc

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying the failure kinds Tessellate can report.
// Use errors.Is to test for them; Tessellate always wraps one of these
// in a *Error that carries additional context.
var (
	// ErrInvalidParameter is returned when fn is nil, cellSize <= 0,
	// relativeError < 0, or fn.Bounds() is not a valid box. Options
	// fields are not validated.
	ErrInvalidParameter = errors.New("mdc: invalid parameter")

	// ErrBoundingBoxTooSmall is returned when the sampled grid's outer
	// shell of lattice points contains a sign change, meaning the
	// surface reaches the edge of the sampled volume and
	// fn.Bounds() was not conservative even after the mandatory
	// one-cell dilation (spec §4.1, §7).
	ErrBoundingBoxTooSmall = errors.New("mdc: bounding box too small for cell size")

	// ErrNumericalFailure is returned when a QEF solve fails to converge.
	ErrNumericalFailure = errors.New("mdc: numerical failure during QEF solve")

	// ErrCancelled is returned when the caller's cancellation channel
	// closes before tessellation completes.
	ErrCancelled = errors.New("mdc: cancelled")
)

// Error wraps one of the sentinel errors above with positional context.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Msg) }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
