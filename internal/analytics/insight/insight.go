// Package insight turns a single yearly series into short, ranked
// observations: a trend, an anomaly in the latest year, a next-year
// projection and a recommendation driven by the most recent change.
package insight

import (
	"fmt"
	"math"

	"github.com/soltixdb/datahub/internal/analytics"
	"github.com/soltixdb/datahub/internal/analytics/anomaly"
	"github.com/soltixdb/datahub/internal/analytics/forecast"
	"github.com/soltixdb/datahub/internal/analytics/stats"
)

// Kind of insight
type Kind string

const (
	KindTrend          Kind = "trend"
	KindAnomaly        Kind = "anomaly"
	KindForecast       Kind = "forecast"
	KindRecommendation Kind = "recommendation"
)

// Severity of an insight
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

const (
	trendSlope        = 0.5
	steepTrendSlope   = 2.0
	anomalyZ          = 2.0
	extremeZ          = 3.0
	strongChange      = 5.0
	recommendationCnf = 0.75
)

// Insight is one generated observation about a series
type Insight struct {
	Kind        Kind     `json:"kind"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Confidence  float64  `json:"confidence"`
	Severity    Severity `json:"severity"`
	Action      string   `json:"action,omitempty"`
}

// Generate returns the insights for metric over series. Fewer than three
// points yields nil.
func Generate(metric string, series analytics.Series) []Insight {
	if series.Len() < forecast.MinPoints {
		return nil
	}

	var out []Insight
	if in, ok := trendInsight(metric, series); ok {
		out = append(out, in)
	}
	if in, ok := anomalyInsight(series); ok {
		out = append(out, in)
	}
	if in, ok := forecastInsight(metric, series); ok {
		out = append(out, in)
	}
	out = append(out, recommendationInsight(series))
	return out
}

func trendInsight(metric string, series analytics.Series) (Insight, bool) {
	reg, ok := stats.LinearRegression(series.Values())
	if !ok {
		return Insight{}, false
	}
	magnitude := math.Abs(reg.Slope)
	if magnitude <= trendSlope {
		return Insight{}, false
	}

	in := Insight{
		Kind:       KindTrend,
		Confidence: math.Min(0.95, 0.6+magnitude*0.1),
		Severity:   SeverityMedium,
	}
	if magnitude > steepTrendSlope {
		in.Severity = SeverityHigh
	}
	if reg.Slope > 0 {
		in.Title = "Increasing trend detected"
		in.Description = fmt.Sprintf("%s shows a consistent increase of %.2f per year.", metric, magnitude)
		in.Action = "Monitor for sustainability"
	} else {
		in.Title = "Decreasing trend detected"
		in.Description = fmt.Sprintf("%s shows a consistent decrease of %.2f per year.", metric, magnitude)
		in.Action = "Intervention needed to reverse the decline"
	}
	return in, true
}

func anomalyInsight(series analytics.Series) (Insight, bool) {
	z := anomaly.LatestZScore(series)
	if z <= anomalyZ {
		return Insight{}, false
	}
	last, _ := series.Last()

	in := Insight{
		Kind:  KindAnomaly,
		Title: "Anomaly detected",
		Description: fmt.Sprintf("The latest value (%.2f) is %.2f standard deviations from the historical mean.",
			last.Value, z),
		Confidence: math.Min(0.99, 0.7+(z-anomalyZ)*0.1),
		Severity:   SeverityMedium,
		Action:     "Investigate the cause of the sharp change",
	}
	if z > extremeZ {
		in.Severity = SeverityHigh
	}
	return in, true
}

func forecastInsight(metric string, series analytics.Series) (Insight, bool) {
	points := forecast.Forecast(series, 1)
	if len(points) == 0 {
		return Insight{}, false
	}
	next := points[0]
	last, _ := series.Last()

	return Insight{
		Kind:  KindForecast,
		Title: "Projection",
		Description: fmt.Sprintf("Based on the historical pattern %s is projected to reach %.2f in %d (%+.1f%%).",
			metric, next.Value, next.Year, percentChange(last.Value, next.Value)),
		Confidence: next.Confidence,
		Severity:   SeverityLow,
		Action:     fmt.Sprintf("Prediction interval: %.2f - %.2f", next.Lower, next.Upper),
	}, true
}

func recommendationInsight(series analytics.Series) Insight {
	n := series.Len()
	change := percentChange(series[n-2].Value, series[n-1].Value)

	in := Insight{
		Kind:       KindRecommendation,
		Title:      "Recommendation",
		Confidence: recommendationCnf,
		Severity:   SeverityLow,
		Action:     "Review in the next quarterly cycle",
	}
	switch {
	case change > strongChange:
		in.Description = "Strong positive momentum. Keep current policy and scale what works."
	case change > 0:
		in.Description = "Moderate progress. Consider accelerating through targeted interventions."
	case change > -strongChange:
		in.Description = "Stagnant or slightly declining. Evaluate policy and adjust strategy."
		if change < 0 {
			in.Severity = SeverityMedium
		}
	default:
		in.Description = "Significant decline. Immediate corrective action required."
		in.Severity = SeverityHigh
	}
	return in
}

// percentChange is 0 when from is 0
func percentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}
