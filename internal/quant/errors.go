package quant

import "errors"

// Sentinel errors returned by estimation and forecasting routines.
// Callers classify failures with errors.Is; every routine either returns a
// complete result or one of these, never a partial answer.
var (
	// ErrInvalidInput reports shape problems: unequal-length series, a
	// series shorter than the model order, or non-positive steps.
	ErrInvalidInput = errors.New("quant: invalid input")

	// ErrNumerical reports division-by-zero conditions such as a zero
	// benchmark variance or a degenerate rank denominator.
	ErrNumerical = errors.New("quant: numerical error")

	// ErrMissingParameter reports a required model parameter that was
	// neither supplied nor derivable.
	ErrMissingParameter = errors.New("quant: missing parameter")

	// ErrEstimation reports optimizer non-convergence during model fitting.
	ErrEstimation = errors.New("quant: estimation failed")

	// ErrHierarchicalIndex reports a frame with a multi-level index, which
	// column-wise routines refuse before any computation.
	ErrHierarchicalIndex = errors.New("quant: hierarchical index not supported")
)
