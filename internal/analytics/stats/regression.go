package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Regression is an ordinary least-squares fit y = Intercept + Slope*x
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	StdError  float64 `json:"std_error"` // residual standard error, sqrt(SSE/(n-2)); 0 when n <= 2
	N         int     `json:"n"`

	MeanX float64 `json:"-"`
	SSX   float64 `json:"-"` // Σ(x - mean_x)²
}

// Predict evaluates the fitted line at x
func (r Regression) Predict(x float64) float64 {
	return r.Intercept + r.Slope*x
}

// LinearRegression fits y against its index x = 0..n-1
func LinearRegression(y []float64) (Regression, bool) {
	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i)
	}
	return LinearRegressionXY(x, y)
}

// LinearRegressionXY fits y against x.
// It returns ok=false when fewer than two points are given, the lengths
// differ, or x has no variance. R² is 0 when y has no variance.
func LinearRegressionXY(x, y []float64) (Regression, bool) {
	n := len(x)
	if n < 2 || n != len(y) {
		return Regression{}, false
	}

	meanX := stat.Mean(x, nil)
	ssx := 0.0
	for _, xi := range x {
		d := xi - meanX
		ssx += d * d
	}
	if ssx == 0 {
		return Regression{}, false
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)

	sse := 0.0
	for i := range x {
		res := y[i] - (intercept + slope*x[i])
		sse += res * res
	}

	rsq := 0.0
	if _, sdY := stat.PopMeanStdDev(y, nil); sdY > 0 {
		rsq = stat.RSquared(x, y, nil, intercept, slope)
	}

	stdErr := 0.0
	if n > 2 {
		stdErr = math.Sqrt(sse / float64(n-2))
	}

	return Regression{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  rsq,
		StdError:  stdErr,
		N:         n,
		MeanX:     meanX,
		SSX:       ssx,
	}, true
}

// PredictionMargin is the half-width of the prediction interval at x for
// the given critical value (1.96 for 95%).
func (r Regression) PredictionMargin(x, z float64) float64 {
	if r.N == 0 || r.SSX == 0 {
		return 0
	}
	dx := x - r.MeanX
	return z * r.StdError * math.Sqrt(1+1/float64(r.N)+dx*dx/r.SSX)
}
