package indicator

import (
	"math"

	"github.com/soltixdb/datahub/internal/analytics"
)

// GrowthRate is the period-over-period change of one group
type GrowthRate struct {
	Group        string  `json:"group"`
	Year         int     `json:"year"`
	Previous     float64 `json:"previous"`
	Current      float64 `json:"current"`
	Rate         float64 `json:"rate"`
	Acceleration float64 `json:"acceleration"`
	Status       string  `json:"status"`
}

// GrowthRates computes (cur-prev)/prev*100 for consecutive observed years
// of every group. Steps with prev = 0 are skipped. Acceleration is the change
// from the previous step's rate and stays 0 when there is no previous step.
func GrowthRates(series analytics.GroupedSeries, bands Classifier) []GrowthRate {
	var out []GrowthRate
	for _, group := range series.Groups() {
		s := series[group]
		prevRate, havePrev := 0.0, false
		for i := 1; i < len(s); i++ {
			prev, cur := s[i-1].Value, s[i].Value
			if prev == 0 {
				havePrev = false
				continue
			}
			rate := (cur - prev) / prev * 100

			g := GrowthRate{
				Group:    group,
				Year:     s[i].Year,
				Previous: prev,
				Current:  cur,
				Rate:     rate,
				Status:   bands.Classify(rate),
			}
			if havePrev {
				g.Acceleration = rate - prevRate
			}
			out = append(out, g)
			prevRate, havePrev = rate, true
		}
	}
	return out
}

// MeanRates averages the growth rates of each group
func MeanRates(rates []GrowthRate) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range rates {
		sums[r.Group] += r.Rate
		counts[r.Group]++
	}
	out := make(map[string]float64, len(sums))
	for g, s := range sums {
		out[g] = s / float64(counts[g])
	}
	return out
}

// CAGR is the compound annual growth rate ((last/first)^(1/years)-1)*100.
// It is not computable when first <= 0, last < 0 or years <= 0.
func CAGR(first, last, years float64) (float64, bool) {
	if first <= 0 || last < 0 || years <= 0 {
		return 0, false
	}
	return (math.Pow(last/first, 1/years) - 1) * 100, true
}

// Reduction is the period-over-period decline of a prevalence-style metric
type Reduction struct {
	Group    string  `json:"group"`
	Year     int     `json:"year"`
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Rate     float64 `json:"rate"`
	Status   string  `json:"status"`
}

// ReductionRates computes (prev-cur)/prev*100 for consecutive observed years.
// Positive rates are improvements. Steps with prev = 0 are skipped.
func ReductionRates(series analytics.GroupedSeries, bands Classifier) []Reduction {
	var out []Reduction
	for _, group := range series.Groups() {
		s := series[group]
		for i := 1; i < len(s); i++ {
			prev, cur := s[i-1].Value, s[i].Value
			if prev == 0 {
				continue
			}
			rate := (prev - cur) / prev * 100
			out = append(out, Reduction{
				Group:    group,
				Year:     s[i].Year,
				Previous: prev,
				Current:  cur,
				Rate:     rate,
				Status:   bands.Classify(rate),
			})
		}
	}
	return out
}

// MeanReductions averages the reduction rates of each group
func MeanReductions(reductions []Reduction) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range reductions {
		sums[r.Group] += r.Rate
		counts[r.Group]++
	}
	out := make(map[string]float64, len(sums))
	for g, s := range sums {
		out[g] = s / float64(counts[g])
	}
	return out
}

// ForYear keeps the results observed in year
func ForYear[T interface{ year() int }](items []T, year int) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.year() == year {
			out = append(out, it)
		}
	}
	return out
}

func (g GrowthRate) year() int { return g.Year }
func (r Reduction) year() int  { return r.Year }
