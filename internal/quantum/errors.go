package quantum

import "errors"

// Domain errors shared across model construction and solving.
var (
	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("quantum: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates mismatched operator/state dimensions.
	ErrDimensionMismatch = errors.New("quantum: dimension mismatch")

	// ErrNotHermitian indicates an operator expected to be Hermitian is not.
	ErrNotHermitian = errors.New("quantum: operator is not Hermitian")

	// ErrUnknownLabel indicates an unrecognized operator label.
	ErrUnknownLabel = errors.New("quantum: unknown operator label")
)
