package regress

import (
	"fmt"
	"math"

	"github.com/huangsam/solarcorr/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"
)

// Oracle computes the same quantities through gonum's estimators: the fit from
// stat.LinearRegression, r from stat.Correlation, and the p-value from the
// regularized incomplete beta function of 1-r².
func Oracle(x, y []float64) (schema.RegressionResult, error) {
	if len(x) != len(y) {
		return schema.RegressionResult{}, fmt.Errorf("oracle: %w", schema.ErrLengthMismatch)
	}
	if len(x) < schema.MinRegressionSamples {
		return schema.RegressionResult{}, fmt.Errorf("oracle: n=%d: %w", len(x), schema.ErrInsufficientSample)
	}
	if !allFinite(x) || !allFinite(y) {
		return schema.RegressionResult{}, fmt.Errorf("oracle: %w", schema.ErrNonFinite)
	}

	varX, varY := stat.Variance(x, nil), stat.Variance(y, nil)
	if floats.Min(x) == floats.Max(x) || varX == 0 {
		return schema.RegressionResult{}, fmt.Errorf("oracle: x: %w", schema.ErrDegenerateInput)
	}
	if floats.Min(y) == floats.Max(y) || varY == 0 {
		return schema.RegressionResult{}, fmt.Errorf("oracle: y: %w", schema.ErrDegenerateInput)
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	r := math.Max(-1, math.Min(1, stat.Correlation(x, y, nil)))
	rSquared := r * r

	df := float64(len(x) - 2)
	unexplained := math.Max(0, 1-rSquared)
	p := mathext.RegIncBeta(df/2, 0.5, unexplained)
	se := math.Sqrt(unexplained * varY / varX / df)

	return schema.RegressionResult{
		Method:    schema.OracleMethod,
		N:         len(x),
		Slope:     slope,
		Intercept: intercept,
		R:         r,
		RSquared:  rSquared,
		PValue:    p,
		StdErr:    se,
	}, nil
}

func allFinite(xs []float64) bool {
	if floats.HasNaN(xs) {
		return false
	}
	return !math.IsInf(floats.Max(xs), 1) && !math.IsInf(floats.Min(xs), -1)
}
