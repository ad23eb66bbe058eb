// Package analytics provides the common value types shared by the statistics,
// indicator, composite, ranking, forecast and insight packages.
package analytics

import (
	"slices"

	"github.com/soltixdb/datahub/internal/aggregation"
)

// Observation is the normalised row the analytics core consumes: one value for
// one group (usually a province) in one year.
type Observation struct {
	Year  int     `json:"year"`
	Group string  `json:"group"`
	Value float64 `json:"value"`
}

// YearValue is a single point of a yearly series
type YearValue struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Series is a yearly sequence sorted ascending by year with unique years
type Series []YearValue

// Values extracts just the values from the series
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Value
	}
	return values
}

// Years extracts the years as float64, ready for regression
func (s Series) Years() []float64 {
	years := make([]float64, len(s))
	for i, p := range s {
		years[i] = float64(p.Year)
	}
	return years
}

// Len returns the number of points
func (s Series) Len() int {
	return len(s)
}

// Last returns the most recent point
func (s Series) Last() (YearValue, bool) {
	if len(s) == 0 {
		return YearValue{}, false
	}
	return s[len(s)-1], true
}

// At returns the value observed in year
func (s Series) At(year int) (float64, bool) {
	i, found := slices.BinarySearchFunc(s, year, func(p YearValue, y int) int {
		return p.Year - y
	})
	if !found {
		return 0, false
	}
	return s[i].Value, true
}

// NewSeries sorts points by year and averages duplicate years
func NewSeries(points []YearValue) Series {
	byYear := aggregation.AggregateBy(points,
		func(p YearValue) int { return p.Year },
		func(p YearValue) float64 { return p.Value },
		aggregation.Mean)

	series := make(Series, 0, len(byYear))
	for _, year := range aggregation.Keys(byYear) {
		series = append(series, YearValue{Year: year, Value: byYear[year]})
	}
	return series
}

// GroupedSeries maps a group key to its yearly series
type GroupedSeries map[string]Series

// BuildGroupedSeries groups observations by Group. Within each group the
// series is sorted by year and duplicate years are averaged.
func BuildGroupedSeries(observations []Observation) GroupedSeries {
	groups := aggregation.GroupBy(observations, func(o Observation) string { return o.Group })

	out := make(GroupedSeries, len(groups))
	for group, rows := range groups {
		points := make([]YearValue, len(rows))
		for i, r := range rows {
			points[i] = YearValue{Year: r.Year, Value: r.Value}
		}
		out[group] = NewSeries(points)
	}
	return out
}

// Groups returns the group keys in ascending order
func (g GroupedSeries) Groups() []string {
	return aggregation.Keys(g)
}

// ValuesAt returns each group's value in year. Groups without an
// observation for that year are left out.
func (g GroupedSeries) ValuesAt(year int) map[string]float64 {
	out := make(map[string]float64, len(g))
	for group, s := range g {
		if v, ok := s.At(year); ok {
			out[group] = v
		}
	}
	return out
}

// Latest returns each group's most recent value
func (g GroupedSeries) Latest() map[string]float64 {
	out := make(map[string]float64, len(g))
	for group, s := range g {
		if p, ok := s.Last(); ok {
			out[group] = p.Value
		}
	}
	return out
}

// ObservationsForYear filters observations to a single year
func ObservationsForYear(observations []Observation, year int) []Observation {
	return aggregation.Filter(observations, func(o Observation) bool { return o.Year == year })
}
