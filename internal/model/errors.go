package model

import "errors"

var (
	// ErrNoOperators indicates a build with no static term and no drive terms.
	ErrNoOperators = errors.New("model: no operators")

	// ErrSignalCount indicates a drive term without a matching signal.
	ErrSignalCount = errors.New("model: signal count does not match operator count")

	// ErrFrameDiagonalization indicates a frame operator this package cannot
	// diagonalize (non-diagonal with dimension above 2).
	ErrFrameDiagonalization = errors.New("model: frame operator cannot be diagonalized")
)
