package indicator

import (
	"github.com/soltixdb/datahub/internal/aggregation"
	"github.com/soltixdb/datahub/internal/analytics/stats"
)

// SeverityInput holds the prevalence components of one group, in the same
// order as the weights passed to Severity
type SeverityInput struct {
	Group  string    `json:"group"`
	Values []float64 `json:"values"`
}

// SeverityScore is a weighted prevalence index
type SeverityScore struct {
	Group  string  `json:"group"`
	Value  float64 `json:"value"`
	Status string  `json:"status"`
}

// Severity computes Σ weight_i*value_i per group. Groups whose component
// count does not match the weights are omitted.
func Severity(inputs []SeverityInput, weights []float64, bands Classifier) []SeverityScore {
	out := make([]SeverityScore, 0, len(inputs))
	for _, in := range inputs {
		if len(in.Values) != len(weights) || len(weights) == 0 {
			continue
		}
		v := 0.0
		for i, w := range weights {
			v += w * in.Values[i]
		}
		out = append(out, SeverityScore{Group: in.Group, Value: v, Status: bands.Classify(v)})
	}
	return out
}

// SectorValue is one sector's output within a group
type SectorValue struct {
	Group  string  `json:"group"`
	Sector string  `json:"sector"`
	Value  float64 `json:"value"`
}

// Concentration is the Herfindahl-Hirschman index of one group
type Concentration struct {
	Group   string  `json:"group"`
	HHI     float64 `json:"hhi"`
	Sectors int     `json:"sectors"`
	Status  string  `json:"status"`
}

// Diversification computes HHI = Σ share² from sector values. Negative
// sector values are ignored; groups with a non-positive total are omitted.
func Diversification(values []SectorValue, bands Classifier) []Concentration {
	groups := aggregation.GroupBy(values, func(v SectorValue) string { return v.Group })

	out := make([]Concentration, 0, len(groups))
	for _, group := range aggregation.Keys(groups) {
		bySector := aggregation.AggregateBy(groups[group],
			func(v SectorValue) string { return v.Sector },
			func(v SectorValue) float64 { return v.Value },
			aggregation.Sum)

		total := 0.0
		for _, v := range bySector {
			if v > 0 {
				total += v
			}
		}
		if total <= 0 {
			continue
		}

		hhi := 0.0
		sectors := 0
		for _, v := range bySector {
			if v <= 0 {
				continue
			}
			share := v / total
			hhi += share * share
			sectors++
		}
		out = append(out, Concentration{Group: group, HHI: hhi, Sectors: sectors, Status: bands.Classify(hhi)})
	}
	return out
}

// MismatchInput holds the unemployment rates of one group split by
// education level
type MismatchInput struct {
	Group string    `json:"group"`
	High  []float64 `json:"high"`
	Low   []float64 `json:"low"`
}

// Mismatch is the ratio of educated to less educated unemployment
type Mismatch struct {
	Group    string  `json:"group"`
	HighMean float64 `json:"high_mean"`
	LowMean  float64 `json:"low_mean"`
	Ratio    float64 `json:"ratio"`
	Status   string  `json:"status"`
}

// EducationMismatch computes mean(High)/mean(Low) per group. Groups with an
// empty side or a non-positive Low mean are omitted.
func EducationMismatch(inputs []MismatchInput, bands Classifier) []Mismatch {
	out := make([]Mismatch, 0, len(inputs))
	for _, in := range inputs {
		if len(in.High) == 0 || len(in.Low) == 0 {
			continue
		}
		high, low := stats.Mean(in.High), stats.Mean(in.Low)
		if low <= 0 {
			continue
		}
		ratio := high / low
		out = append(out, Mismatch{
			Group:    in.Group,
			HighMean: high,
			LowMean:  low,
			Ratio:    ratio,
			Status:   bands.Classify(ratio),
		})
	}
	return out
}
