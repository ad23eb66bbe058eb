// Package composite combines normalised indicators into a weighted index and
// clusters the result with an explicitly chosen strategy.
package composite

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/soltixdb/datahub/internal/analytics/stats"
)

// ErrInvalidWeights is returned when a weight vector does not match the
// components or does not sum to 1
var ErrInvalidWeights = errors.New("invalid weights")

const weightTolerance = 1e-6

// Direction tells whether a higher raw value is better
type Direction string

const (
	Direct  Direction = "direct"
	Inverse Direction = "inverse"
	// Scaled components are already on 0-100 and are only clamped
	Scaled Direction = "scaled"
)

// Component is one weighted ingredient of a composite index
type Component struct {
	Name      string    `json:"name"`
	Weight    float64   `json:"weight"`
	Direction Direction `json:"direction"`
}

// Spec describes a composite index
type Spec struct {
	Components []Component
	Clusterer  Clusterer
}

// Weights returns the component weights in order
func (s Spec) Weights() []float64 {
	w := make([]float64, len(s.Components))
	for i, c := range s.Components {
		w[i] = c.Weight
	}
	return w
}

// Input is the raw component values of one group, in Spec order
type Input struct {
	Group  string
	Values []float64
}

// Result is the composite score of one group
type Result struct {
	Group      string    `json:"group"`
	Rank       int       `json:"rank"`
	Raw        []float64 `json:"raw"`
	Normalized []float64 `json:"normalized"`
	Score      float64   `json:"score"`
	Cluster    string    `json:"cluster"`
}

// ValidateWeights checks that there is one weight per component and the
// weights sum to 1
func ValidateWeights(weights []float64, components int) error {
	if len(weights) == 0 || len(weights) != components {
		return fmt.Errorf("%w: got %d weights for %d components", ErrInvalidWeights, len(weights), components)
	}
	sum := 0.0
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("%w: negative or NaN weight %v", ErrInvalidWeights, w)
		}
		sum += w
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %v", ErrInvalidWeights, sum)
	}
	return nil
}

// Score computes Σ weight_i*normalized_i
func Score(normalized, weights []float64) (float64, error) {
	if err := ValidateWeights(weights, len(normalized)); err != nil {
		return 0, err
	}
	score := 0.0
	for i, w := range weights {
		score += w * normalized[i]
	}
	return score, nil
}

// Build normalises each component across the groups (min-max, inverted for
// Inverse components, clamped for Scaled ones), computes the weighted score and assigns clusters.
// Inputs with the wrong number of values are omitted. Results are sorted by
// score descending with ties broken by group name.
func Build(inputs []Input, spec Spec) ([]Result, error) {
	weights := spec.Weights()
	if err := ValidateWeights(weights, len(spec.Components)); err != nil {
		return nil, err
	}

	valid := make([]Input, 0, len(inputs))
	for _, in := range inputs {
		if len(in.Values) == len(spec.Components) {
			valid = append(valid, in)
		}
	}
	if len(valid) == 0 {
		return []Result{}, nil
	}

	results := make([]Result, len(valid))
	for i, in := range valid {
		results[i] = Result{
			Group:      in.Group,
			Raw:        slices.Clone(in.Values),
			Normalized: make([]float64, len(spec.Components)),
		}
	}

	column := make([]float64, len(valid))
	for c, comp := range spec.Components {
		for i, in := range valid {
			column[i] = in.Values[c]
		}
		var norm []float64
		switch comp.Direction {
		case Inverse:
			norm = stats.NormalizeInverse(column)
		case Scaled:
			norm = make([]float64, len(column))
			for i, v := range column {
				norm[i] = stats.Clamp(v, 0, 100)
			}
		default:
			norm = stats.Normalize(column)
		}
		for i := range results {
			results[i].Normalized[c] = norm[i]
		}
	}

	scores := make([]float64, len(results))
	for i := range results {
		// weights were validated above and every row has one value per component
		results[i].Score, _ = Score(results[i].Normalized, weights)
		scores[i] = results[i].Score
	}

	if spec.Clusterer != nil {
		for i, label := range spec.Clusterer.Assign(scores) {
			results[i].Cluster = label
		}
	}

	slices.SortFunc(results, func(a, b Result) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Group, b.Group)
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}

// Distribution counts results per cluster label
func Distribution(results []Result) map[string]int {
	out := make(map[string]int)
	for _, r := range results {
		out[r.Cluster]++
	}
	return out
}
