package anomaly

import (
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/soltixdb/datahub/internal/analytics"
)

// defaultIQRMultiplier is Tukey's fence
const defaultIQRMultiplier = 1.5

// IQRDetector detects anomalies using Interquartile Range (IQR) method
// IQR is robust to outliers compared to Z-Score
// Anomalies are points outside [Q1 - k*IQR, Q3 + k*IQR]
type IQRDetector struct{}

func init() {
	RegisterDetector("iqr", &IQRDetector{})
}

// Name returns the algorithm name
func (iqr *IQRDetector) Name() string {
	return "iqr"
}

// Detect finds anomalies using IQR method. Thresholds of 3 or more are
// treated as z-score style and replaced by the standard 1.5 multiplier.
func (iqr *IQRDetector) Detect(series analytics.Series, config DetectorConfig) []AnomalyResult {
	if len(series) < config.MinDataPoints || len(series) == 0 {
		return nil
	}

	q1, q3, iqrValue := CalculateIQR(series.Values())

	multiplier := config.Threshold
	if multiplier <= 0 || multiplier >= 3 {
		multiplier = defaultIQRMultiplier
	}

	lowerBound := q1 - multiplier*iqrValue
	upperBound := q3 + multiplier*iqrValue
	expectedRange := &Range{Min: lowerBound, Max: upperBound}

	var results []AnomalyResult
	for i, p := range series {
		if p.Value >= lowerBound && p.Value <= upperBound {
			continue
		}

		score := 1.0
		anomalyType := AnomalyTypeSpike
		if p.Value < lowerBound {
			anomalyType = AnomalyTypeDrop
		}
		if iqrValue > 0 {
			if anomalyType == AnomalyTypeDrop {
				score = (lowerBound - p.Value) / iqrValue
			} else {
				score = (p.Value - upperBound) / iqrValue
			}
		}

		results = append(results, AnomalyResult{
			Index:    i,
			Score:    score,
			Type:     anomalyType,
			Expected: expectedRange,
		})
	}
	return results
}

// CalculateIQR returns Q1, Q3, and IQR using linear interpolation between
// order statistics
func CalculateIQR(values []float64) (q1, q3, iqr float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	q1 = stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	q3 = stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	return q1, q3, q3 - q1
}
