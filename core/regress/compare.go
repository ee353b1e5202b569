package regress

import (
	"errors"
	"math"

	"github.com/huangsam/solarcorr/schema"
)

// kinds are the error kinds a regression path may fail with, most specific first.
var kinds = []error{
	schema.ErrLengthMismatch,
	schema.ErrInsufficientSample,
	schema.ErrNonFinite,
	schema.ErrDegenerateInput,
}

func kindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Snap returns d, or exactly 0 when |d| is below schema.SnapTolerance.
func Snap(d float64) float64 {
	if math.Abs(d) < schema.SnapTolerance {
		return 0
	}
	return d
}

// Delta subtracts oracle from manual per quantity and snaps each difference.
func Delta(manual, oracle schema.RegressionResult) schema.RegressionDelta {
	return schema.RegressionDelta{
		Slope:     Snap(manual.Slope - oracle.Slope),
		Intercept: Snap(manual.Intercept - oracle.Intercept),
		R:         Snap(manual.R - oracle.R),
		RSquared:  Snap(manual.RSquared - oracle.RSquared),
		PValue:    Snap(manual.PValue - oracle.PValue),
		StdErr:    Snap(manual.StdErr - oracle.StdErr),
	}
}

// path is one way of fitting y on x.
type path func(x, y []float64) (schema.RegressionResult, error)

// Compare runs both paths on the same sample and reports their snapped deltas.
//
// When both paths fail with the same kind the manual error is returned. When
// only one fails, or the kinds differ, the result is an
// *schema.InconsistentOracleError. No partial comparison is returned on failure.
func Compare(x, y []float64) (schema.RegressionComparison, error) {
	return compareWith(x, y, Manual, Oracle)
}

func compareWith(x, y []float64, manualPath, oraclePath path) (schema.RegressionComparison, error) {
	manual, manualErr := manualPath(x, y)
	oracle, oracleErr := oraclePath(x, y)

	switch {
	case manualErr == nil && oracleErr == nil:
		delta := Delta(manual, oracle)
		return schema.RegressionComparison{
			Manual: manual,
			Oracle: oracle,
			Delta:  delta,
			Agree:  delta.IsZero(),
		}, nil
	case manualErr != nil && oracleErr != nil && kindOf(manualErr) == kindOf(oracleErr):
		return schema.RegressionComparison{}, manualErr
	default:
		return schema.RegressionComparison{}, &schema.InconsistentOracleError{ManualErr: manualErr, OracleErr: oracleErr}
	}
}
