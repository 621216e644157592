package qef

import "errors"

// errNumericalFailure is returned by Solve when the eigendecomposition does
// not converge, corresponding to the spec's NumericalFailure error kind.
var errNumericalFailure = errors.New("qef: eigendecomposition failed to converge")

// ErrNumericalFailure reports whether err originated from a failed QEF
// solve, so callers can map it to mdc.ErrNumericalFailure.
func ErrNumericalFailure(err error) bool {
	return errors.Is(err, errNumericalFailure)
}
