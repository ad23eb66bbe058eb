// Package stats implements the closed-form statistics used by the analytics
// core: least-squares regression, population moments, coefficient of
// variation, z-scores, Pearson correlation and min-max normalisation.
//
// None of the functions panic or return NaN for degenerate input. Undefined
// results are reported through an ok flag; degenerate denominators in
// normalisation and z-scores fall back to a divisor of 1.
package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MeanStdDev returns the mean and population standard deviation.
// An empty input yields (0, 0).
func MeanStdDev(values []float64) (mean, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(values, nil)
}

// Mean returns the arithmetic mean, 0 for an empty input
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// CV returns the coefficient of variation stddev/mean*100.
// It is not computable when the input is empty or the mean is zero, in
// which case (0, false) is returned.
func CV(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	mean, sd := MeanStdDev(values)
	if mean == 0 {
		return 0, false
	}
	return sd / mean * 100, true
}

// ZScore standardises v. A zero standard deviation falls back to divisor 1.
func ZScore(v, mean, stdDev float64) float64 {
	if stdDev == 0 {
		stdDev = 1
	}
	return (v - mean) / stdDev
}

// ZScores standardises every value against the population moments of the set
func ZScores(values []float64) []float64 {
	mean, sd := MeanStdDev(values)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = ZScore(v, mean, sd)
	}
	return out
}

// Normalize min-max scales values to 0..100. When every value is equal the
// range falls back to 1 and every output is 0.
func Normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := floats.Min(values), floats.Max(values)
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}
	for i, v := range values {
		out[i] = (v - lo) / rng * 100
	}
	return out
}

// NormalizeInverse scales values to 0..100 where the lowest input scores 100.
// A degenerate set scores 0 everywhere, same as Normalize.
func NormalizeInverse(values []float64) []float64 {
	out := Normalize(values)
	if len(values) == 0 || floats.Max(values) == floats.Min(values) {
		return out
	}
	for i := range out {
		out[i] = 100 - out[i]
	}
	return out
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Summary describes the distribution of a metric
type Summary struct {
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Median    float64 `json:"median"`
	Q1        float64 `json:"q1"`
	Q3        float64 `json:"q3"`
	CV        float64 `json:"cv"`
	CVDefined bool    `json:"cv_defined"`
}

// Describe computes a descriptive summary. An empty input yields a zero Summary.
func Describe(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean, sd := MeanStdDev(values)
	cv, ok := CV(values)

	return Summary{
		Count:     len(values),
		Mean:      mean,
		StdDev:    sd,
		Min:       sorted[0],
		Max:       sorted[len(sorted)-1],
		Median:    stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q1:        stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Q3:        stat.Quantile(0.75, stat.Empirical, sorted, nil),
		CV:        cv,
		CVDefined: ok,
	}
}
