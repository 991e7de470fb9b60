package solver

import "errors"

var (
	// ErrUnknownMethod indicates a method name with no registered stepper.
	ErrUnknownMethod = errors.New("solver: not a supported ODE method")

	// ErrStepTooSmall indicates the adaptive step fell below the minimum.
	ErrStepTooSmall = errors.New("solver: adaptive step below minimum")

	// ErrBadTimeSpan indicates a non-increasing integration interval.
	ErrBadTimeSpan = errors.New("solver: time span must be increasing")

	// ErrBadEvalGrid indicates evaluation times that are not ascending or
	// fall outside the integration interval.
	ErrBadEvalGrid = errors.New("solver: invalid evaluation grid")
)
