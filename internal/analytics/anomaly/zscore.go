package anomaly

import (
	"math"

	"github.com/soltixdb/datahub/internal/analytics"
	"github.com/soltixdb/datahub/internal/analytics/stats"
)

// ZScoreDetector detects anomalies using Z-Score (standard score)
// Z-Score measures how many standard deviations a point is from the mean
// Points with |Z| > threshold are considered anomalies
type ZScoreDetector struct{}

func init() {
	RegisterDetector("zscore", &ZScoreDetector{})
}

// Name returns the algorithm name
func (z *ZScoreDetector) Name() string {
	return "zscore"
}

// Detect finds anomalies using Z-Score method. A flat series has no anomalies.
func (z *ZScoreDetector) Detect(series analytics.Series, config DetectorConfig) []AnomalyResult {
	if len(series) < config.MinDataPoints || len(series) == 0 {
		return nil
	}

	mean, stdDev := stats.MeanStdDev(series.Values())
	if stdDev == 0 {
		return nil
	}

	expectedRange := &Range{
		Min: mean - config.Threshold*stdDev,
		Max: mean + config.Threshold*stdDev,
	}

	var results []AnomalyResult
	for i, p := range series {
		zScore := stats.ZScore(p.Value, mean, stdDev)
		if math.Abs(zScore) <= config.Threshold {
			continue
		}

		anomalyType := AnomalyTypeDrop
		if zScore > 0 {
			anomalyType = AnomalyTypeSpike
		}
		results = append(results, AnomalyResult{
			Index:    i,
			Score:    math.Abs(zScore),
			Type:     anomalyType,
			Expected: expectedRange,
		})
	}
	return results
}

// LatestZScore returns |z| of the most recent point against the whole
// series, 0 for a flat or empty series
func LatestZScore(series analytics.Series) float64 {
	last, ok := series.Last()
	if !ok {
		return 0
	}
	mean, stdDev := stats.MeanStdDev(series.Values())
	if stdDev == 0 {
		return 0
	}
	return math.Abs(stats.ZScore(last.Value, mean, stdDev))
}
