package indicator

import (
	"math"

	"github.com/soltixdb/datahub/internal/aggregation"
	"github.com/soltixdb/datahub/internal/analytics"
	"github.com/soltixdb/datahub/internal/analytics/stats"
)

// minTargetSlope is the slowest pace at which a target is considered reachable
const minTargetSlope = 0.05

// Unreachable is reported as YearsToTarget when the trend is too flat
const Unreachable = -1

// Disparity is the dispersion of a metric across groups in one year
type Disparity struct {
	Year   int     `json:"year"`
	Groups int     `json:"groups"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	CV     float64 `json:"cv"`
	Status string  `json:"status"`
}

// RegionalDisparity computes the coefficient of variation across groups for
// every year. Years with fewer than two groups or a zero mean are omitted.
func RegionalDisparity(observations []analytics.Observation, bands Classifier) []Disparity {
	byYear := aggregation.GroupBy(observations, func(o analytics.Observation) int { return o.Year })

	var out []Disparity
	for _, year := range aggregation.Keys(byYear) {
		perGroup := aggregation.AggregateBy(byYear[year],
			func(o analytics.Observation) string { return o.Group },
			func(o analytics.Observation) float64 { return o.Value },
			aggregation.Mean)
		if len(perGroup) < 2 {
			continue
		}

		values := make([]float64, 0, len(perGroup))
		for _, g := range aggregation.Keys(perGroup) {
			values = append(values, perGroup[g])
		}
		cv, ok := stats.CV(values)
		if !ok {
			continue
		}
		mean, sd := stats.MeanStdDev(values)
		out = append(out, Disparity{
			Year:   year,
			Groups: len(values),
			Mean:   mean,
			StdDev: sd,
			CV:     cv,
			Status: bands.Classify(cv),
		})
	}
	return out
}

// TrendConfig parameterises Trends
type TrendConfig struct {
	Bands Classifier
	// Target enables years-to-target estimation when non-zero
	Target float64
}

// Trend is the fitted yearly slope of one group
type Trend struct {
	Group         string  `json:"group"`
	Slope         float64 `json:"slope"`
	Intercept     float64 `json:"intercept"`
	RSquared      float64 `json:"r_squared"`
	Points        int     `json:"points"`
	Latest        float64 `json:"latest"`
	YearsToTarget int     `json:"years_to_target"`
	Status        string  `json:"status"`
}

// Trends regresses each group's metric on year. Groups with fewer than two
// points are omitted. When a target is set, YearsToTarget is the whole
// number of years needed at the fitted pace, 0 when already reached and
// Unreachable when the slope is at or below 0.05 per year.
func Trends(series analytics.GroupedSeries, cfg TrendConfig) []Trend {
	var out []Trend
	for _, group := range series.Groups() {
		s := series[group]
		reg, ok := stats.LinearRegressionXY(s.Years(), s.Values())
		if !ok {
			continue
		}
		last, _ := s.Last()

		t := Trend{
			Group:     group,
			Slope:     reg.Slope,
			Intercept: reg.Intercept,
			RSquared:  reg.RSquared,
			Points:    reg.N,
			Latest:    last.Value,
			Status:    cfg.Bands.Classify(reg.Slope),
		}
		if cfg.Target != 0 {
			t.YearsToTarget = yearsToTarget(last.Value, cfg.Target, reg.Slope)
		}
		out = append(out, t)
	}
	return out
}

func yearsToTarget(current, target, slope float64) int {
	if current >= target {
		return 0
	}
	if slope <= minTargetSlope {
		return Unreachable
	}
	return int(math.Ceil((target - current) / slope))
}

// ConvergencePoint is one group's input to the convergence regression
type ConvergencePoint struct {
	Group   string  `json:"group"`
	Initial float64 `json:"initial"`
	Latest  float64 `json:"latest"`
	Growth  float64 `json:"growth"` // CAGR, %
}

// ConvergenceResult is a beta-convergence regression of growth on initial level
type ConvergenceResult struct {
	Beta       float64            `json:"beta"`
	Alpha      float64            `json:"alpha"`
	RSquared   float64            `json:"r_squared"`
	Converging bool               `json:"converging"`
	Status     string             `json:"status"`
	Points     []ConvergencePoint `json:"points"`
}

// Convergence regresses each group's compound growth over its observed span on
// its initial value. A negative beta means lower starting groups grow faster.
// Groups with fewer than two points or a non-computable CAGR are left out; it
// returns ok=false when fewer than minGroups remain or the regression is
// undefined.
func Convergence(series analytics.GroupedSeries, minGroups int, bands Classifier) (ConvergenceResult, bool) {
	if minGroups < 2 {
		minGroups = 2
	}

	var points []ConvergencePoint
	for _, group := range series.Groups() {
		s := series[group]
		if len(s) < 2 {
			continue
		}
		first, last := s[0], s[len(s)-1]
		growth, ok := CAGR(first.Value, last.Value, float64(last.Year-first.Year))
		if !ok {
			continue
		}
		points = append(points, ConvergencePoint{
			Group:   group,
			Initial: first.Value,
			Latest:  last.Value,
			Growth:  growth,
		})
	}
	if len(points) < minGroups {
		return ConvergenceResult{}, false
	}

	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i], y[i] = p.Initial, p.Growth
	}
	reg, ok := stats.LinearRegressionXY(x, y)
	if !ok {
		return ConvergenceResult{}, false
	}

	return ConvergenceResult{
		Beta:       reg.Slope,
		Alpha:      reg.Intercept,
		RSquared:   reg.RSquared,
		Converging: reg.Slope < 0,
		Status:     bands.Classify(reg.Slope),
		Points:     points,
	}, true
}
