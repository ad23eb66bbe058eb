package insight

import (
	"fmt"
	"math"
	"strings"

	"github.com/soltixdb/datahub/internal/analytics/stats"
)

// Confidence levels attached to a correlation
const (
	ConfidenceHigh     = "high"
	ConfidenceModerate = "moderate"
	ConfidenceLow      = "low"
	ConfidenceWeak     = "weak"
)

// CorrelationReport explains a Pearson correlation between two named metrics
type CorrelationReport struct {
	X              string            `json:"x"`
	Y              string            `json:"y"`
	Correlation    stats.Correlation `json:"correlation"`
	Significance   float64           `json:"significance"`
	Confidence     string            `json:"confidence"`
	Interpretation string            `json:"interpretation"`
}

// ExplainCorrelation computes Pearson's r for x and y and describes it.
// Mismatched or too-short input yields a report with ok=false.
func ExplainCorrelation(xName, yName string, x, y []float64) (CorrelationReport, bool) {
	report := CorrelationReport{X: xName, Y: yName}
	c, ok := stats.Pearson(x, y)
	if !ok {
		report.Correlation = stats.Correlation{Strength: stats.VeryWeak, Direction: stats.None, PValue: 1}
		report.Confidence = ConfidenceWeak
		report.Interpretation = "Insufficient data for correlation analysis"
		return report, false
	}

	report.Correlation = c
	report.Significance = 1 - c.PValue
	report.Confidence = confidenceFor(c)
	report.Interpretation = interpret(xName, yName, c)
	return report, true
}

func confidenceFor(c stats.Correlation) string {
	abs := math.Abs(c.R)
	switch {
	case c.PValue < 0.05 && abs > 0.7:
		return ConfidenceHigh
	case c.PValue < 0.10 && abs > 0.5:
		return ConfidenceModerate
	case abs < 0.3:
		return ConfidenceWeak
	default:
		return ConfidenceLow
	}
}

func interpret(xName, yName string, c stats.Correlation) string {
	if math.Abs(c.R) < 0.3 {
		return fmt.Sprintf("%s and %s have a very weak correlation (%.3f). There is no clear linear relationship.",
			xName, yName, c.R)
	}
	strength := strings.ReplaceAll(string(c.Strength), "_", " ")
	if c.Direction == stats.Positive {
		return fmt.Sprintf("%s and %s have a %s positive correlation (%.3f). As %s rises, %s tends to rise too.",
			xName, yName, strength, c.R, xName, yName)
	}
	return fmt.Sprintf("%s and %s have a %s negative correlation (%.3f). As %s rises, %s tends to fall.",
		xName, yName, strength, c.R, xName, yName)
}
