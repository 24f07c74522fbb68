package correlation

import (
	"fmt"
	"math"

	"github.com/forest-guardian/urban-heat-island/internal/sample"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// InsufficientDataError is returned when a correlation is undefined: fewer
// than two pairs, or a column without variance.
type InsufficientDataError struct {
	N      int
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for correlation (n=%d): %s", e.N, e.Reason)
}

// Result is the Pearson correlation between two sample columns.
type Result struct {
	X  string  `json:"x" csv:"x"`
	Y  string  `json:"y" csv:"y"`
	N  int     `json:"n" csv:"n"`
	R  float64 `json:"r" csv:"r"`
	R2 float64 `json:"r2" csv:"r2"`
}

func (r Result) String() string {
	return fmt.Sprintf("%s vs %s: r=%.4f r²=%.4f n=%d", r.X, r.Y, r.R, r.R2, r.N)
}

// Pearson computes r and r² over paired values.
func Pearson(xs, ys []float64) (r, r2 float64, err error) {
	if len(xs) != len(ys) {
		return 0, 0, fmt.Errorf("columns differ in length: %d and %d", len(xs), len(ys))
	}
	n := len(xs)
	if n < 2 {
		return 0, 0, &InsufficientDataError{N: n, Reason: "at least two pairs are required"}
	}
	if constant(xs) || constant(ys) {
		return 0, 0, &InsufficientDataError{N: n, Reason: "a column has zero variance"}
	}

	r = stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0, 0, &InsufficientDataError{N: n, Reason: "correlation is undefined"}
	}
	r = math.Max(-1, math.Min(1, r))
	return r, r * r, nil
}

func constant(values []float64) bool {
	return floats.Min(values) == floats.Max(values)
}

// Correlate computes the correlation between columns x and y of s.
func Correlate(s *sample.Sample, x, y string) (Result, error) {
	xs, ys, err := s.Pairs(x, y)
	if err != nil {
		return Result{}, err
	}
	r, r2, err := Pearson(xs, ys)
	if err != nil {
		return Result{}, err
	}
	return Result{X: x, Y: y, N: len(xs), R: r, R2: r2}, nil
}

// Trend is the least-squares line y = Intercept + Slope*x.
type Trend struct {
	Intercept float64
	Slope     float64
}

func (t Trend) At(x float64) float64 {
	return t.Intercept + t.Slope*x
}

// FitTrend fits the trend line of y on x used by the scatter chart.
func FitTrend(s *sample.Sample, x, y string) (Trend, error) {
	xs, ys, err := s.Pairs(x, y)
	if err != nil {
		return Trend{}, err
	}
	if len(xs) < 2 || constant(xs) {
		return Trend{}, &InsufficientDataError{N: len(xs), Reason: "trend needs two distinct x values"}
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Trend{Intercept: alpha, Slope: beta}, nil
}
