package composite

import (
	"cmp"
	"slices"
)

// Labels names the three tiers from best to worst
type Labels struct {
	Top    string `json:"top"`
	Middle string `json:"middle"`
	Bottom string `json:"bottom"`
}

// Clusterer assigns one tier label per score. The returned slice is aligned
// with the input.
type Clusterer interface {
	Name() string
	Assign(scores []float64) []string
}

// Percentile cut points into the descending-sorted score list
const (
	upperCut = 0.33
	lowerCut = 0.67
)

// FixedThreshold assigns tiers from absolute score cut-offs:
// score >= High is Top, score >= Medium is Middle, anything else is Bottom.
type FixedThreshold struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
	Labels Labels  `json:"labels"`
}

// Name implements Clusterer
func (f FixedThreshold) Name() string { return "fixed_threshold" }

// Assign implements Clusterer
func (f FixedThreshold) Assign(scores []float64) []string {
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = f.classify(s)
	}
	return out
}

func (f FixedThreshold) classify(score float64) string {
	switch {
	case score >= f.High:
		return f.Labels.Top
	case score >= f.Medium:
		return f.Labels.Middle
	default:
		return f.Labels.Bottom
	}
}

// Percentile derives the tier boundaries from the scores themselves. Scores
// are sorted descending and the values at index floor(n*0.33) and
// floor(n*0.67) become the Top and Middle cut-offs.
type Percentile struct {
	Labels Labels `json:"labels"`
}

// Name implements Clusterer
func (p Percentile) Name() string { return "percentile" }

// Assign implements Clusterer
func (p Percentile) Assign(scores []float64) []string {
	if len(scores) == 0 {
		return []string{}
	}
	high, medium := PercentileCuts(scores)
	return FixedThreshold{High: high, Medium: medium, Labels: p.Labels}.Assign(scores)
}

// PercentileCuts returns the Top and Middle cut-off scores of a set
func PercentileCuts(scores []float64) (high, medium float64) {
	if len(scores) == 0 {
		return 0, 0
	}
	sorted := slices.Clone(scores)
	slices.SortFunc(sorted, func(a, b float64) int { return cmp.Compare(b, a) })
	n := float64(len(sorted))
	return sorted[int(n*upperCut)], sorted[int(n*lowerCut)]
}
