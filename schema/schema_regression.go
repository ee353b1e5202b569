package schema

// RegressionMethod names the path that produced a RegressionResult.
type RegressionMethod string

// Both regression paths.
const (
	ManualMethod RegressionMethod = "manual"
	OracleMethod RegressionMethod = "oracle"
)

// RegressionResult is an ordinary least squares fit of y on x.
// Results are never mutated; two of them are compared only by subtraction.
type RegressionResult struct {
	Method    RegressionMethod `json:"method"`
	N         int              `json:"n"`
	Slope     float64          `json:"slope"`
	Intercept float64          `json:"intercept"`
	R         float64          `json:"r"`
	RSquared  float64          `json:"r_squared"`
	PValue    float64          `json:"p_value"` // Two-tailed, slope = 0 null hypothesis
	StdErr    float64          `json:"std_err"` // Standard error of the slope
}

// RegressionDelta holds manual minus oracle, snapped to exactly 0 below SnapTolerance.
type RegressionDelta struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R         float64 `json:"r"`
	RSquared  float64 `json:"r_squared"`
	PValue    float64 `json:"p_value"`
	StdErr    float64 `json:"std_err"`
}

// IsZero reports whether every snapped delta is exactly zero.
func (d RegressionDelta) IsZero() bool {
	return d == RegressionDelta{}
}

// RegressionComparison is the output of a dual-path regression.
type RegressionComparison struct {
	Manual RegressionResult `json:"manual"`
	Oracle RegressionResult `json:"oracle"`
	Delta  RegressionDelta  `json:"delta"`
	Agree  bool             `json:"agree"`
}

// RegressionReport labels a comparison with the fields that fed it.
type RegressionReport struct {
	X          string               `json:"x"`
	Y          string               `json:"y"`
	LogX       bool                 `json:"log_x"`
	Join       *JoinSummary         `json:"join,omitempty"`
	Dropped    int                  `json:"dropped"` // Pairs removed by the log10 positivity filter
	Comparison RegressionComparison `json:"comparison"`
}
