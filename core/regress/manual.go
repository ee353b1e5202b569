// Package regress fits y on x twice, once from the closed-form sums and once
// through gonum, and reports how far the two results drift apart.
package regress

import (
	"fmt"
	"math"

	"github.com/huangsam/solarcorr/schema"
	"gonum.org/v1/gonum/stat/distuv"
)

// checkSample enforces the preconditions shared by both paths.
func checkSample(x, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("len(x)=%d len(y)=%d: %w", len(x), len(y), schema.ErrLengthMismatch)
	}
	if len(x) < schema.MinRegressionSamples {
		return fmt.Errorf("n=%d, need at least %d: %w", len(x), schema.MinRegressionSamples, schema.ErrInsufficientSample)
	}
	for i := range x {
		if !finite(x[i]) || !finite(y[i]) {
			return fmt.Errorf("pair %d (%v, %v): %w", i, x[i], y[i], schema.ErrNonFinite)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func constant(xs []float64) bool {
	for _, v := range xs[1:] {
		if v != xs[0] {
			return false
		}
	}
	return true
}

// Manual computes the regression from means, deviations and their sums of squares.
func Manual(x, y []float64) (schema.RegressionResult, error) {
	if err := checkSample(x, y); err != nil {
		return schema.RegressionResult{}, err
	}
	n := float64(len(x))

	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var sxx, syy, sxy float64
	for i := range x {
		dx, dy := x[i]-meanX, y[i]-meanY
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}

	if sxx == 0 || constant(x) {
		return schema.RegressionResult{}, fmt.Errorf("manual: x: %w", schema.ErrDegenerateInput)
	}
	slope := sxy / sxx
	intercept := meanY - slope*meanX

	if syy == 0 || constant(y) {
		return schema.RegressionResult{}, fmt.Errorf("manual: y: %w", schema.ErrDegenerateInput)
	}
	r := sxy / math.Sqrt(sxx*syy)

	var sse float64
	for i := range x {
		e := y[i] - (slope*x[i] + intercept)
		sse += e * e
	}
	df := n - 2
	residualVariance := sse / df
	se := math.Sqrt(residualVariance / sxx)

	t := slope / se
	students := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * students.Survival(math.Abs(t))

	return schema.RegressionResult{
		Method:    schema.ManualMethod,
		N:         len(x),
		Slope:     slope,
		Intercept: intercept,
		R:         r,
		RSquared:  r * r,
		PValue:    p,
		StdErr:    se,
	}, nil
}
