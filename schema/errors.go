package schema

import (
	"errors"
	"fmt"
)

// Error kinds shared by the engines. Callers match them with errors.Is.
var (
	// ErrDegenerateInput means x or y has zero variance.
	ErrDegenerateInput = errors.New("degenerate input: zero variance")

	// ErrInsufficientSample means fewer than MinRegressionSamples paired observations.
	ErrInsufficientSample = errors.New("insufficient sample")

	// ErrInconsistentOracle means the manual and library regression paths disagree on validity.
	ErrInconsistentOracle = errors.New("inconsistent oracle")

	// ErrEmptyWindow is informational: no dense sample inside a match window.
	// The join reports it as an absent record rather than failing.
	ErrEmptyWindow = errors.New("empty match window")

	ErrLengthMismatch    = errors.New("x and y differ in length")
	ErrNonFinite         = errors.New("non-finite value")
	ErrInvalidWindow     = errors.New("half width must be positive")
	ErrUnknownAggregator = errors.New("unknown aggregator")
	ErrUnorderedSeries   = errors.New("dense series is not time-ordered")
	ErrNaNSample         = errors.New("dense sample is NaN")
)

// InconsistentOracleError carries the outcome of both regression paths when
// exactly one of them failed, or when both failed with different kinds.
// It matches ErrInconsistentOracle and does not unwrap to the inner errors.
type InconsistentOracleError struct {
	ManualErr error
	OracleErr error
}

func (e *InconsistentOracleError) Error() string {
	return fmt.Sprintf("%v: manual=%s oracle=%s", ErrInconsistentOracle, outcome(e.ManualErr), outcome(e.OracleErr))
}

// Is reports whether target is ErrInconsistentOracle.
func (e *InconsistentOracleError) Is(target error) bool {
	return target == ErrInconsistentOracle
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return err.Error()
}
