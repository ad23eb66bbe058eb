// Package ranking orders groups by a weighted score of three metrics and
// places each group in a z-score based performance tier.
package ranking

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/soltixdb/datahub/internal/analytics/stats"
)

// ErrInvalidWeights is returned when the weight triple does not sum to 1
var ErrInvalidWeights = errors.New("invalid ranking weights")

// Cluster is a z-score performance tier
type Cluster string

const (
	HighPerformer   Cluster = "high_performer"
	MediumPerformer Cluster = "medium_performer"
	LowPerformer    Cluster = "low_performer"
	Critical        Cluster = "critical"
)

// Tier boundaries on the z-score of the composite
const (
	highPerformerZ   = 0.75
	mediumPerformerZ = -0.25
	lowPerformerZ    = -1.0
)

var recommendations = map[Cluster]string{
	HighPerformer:   "Excellent: maintain leadership and share best practices",
	MediumPerformer: "Good: focus on targeted improvements for advancement",
	LowPerformer:    "Needs support: a comprehensive development strategy is required",
	Critical:        "Critical: immediate intensive intervention needed",
}

// Weights for the primary, secondary and tertiary metric
type Weights struct {
	Primary   float64 `json:"primary"`
	Secondary float64 `json:"secondary"`
	Tertiary  float64 `json:"tertiary"`
}

// DefaultWeights returns 0.5/0.3/0.2
func DefaultWeights() Weights {
	return Weights{Primary: 0.5, Secondary: 0.3, Tertiary: 0.2}
}

// Validate checks the weights are non-negative and sum to 1
func (w Weights) Validate() error {
	for _, v := range []float64{w.Primary, w.Secondary, w.Tertiary} {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: weight is NaN", ErrInvalidWeights)
		}
		if v < 0 {
			return fmt.Errorf("%w: negative weight", ErrInvalidWeights)
		}
	}
	if sum := w.Primary + w.Secondary + w.Tertiary; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("%w: weights sum to %v", ErrInvalidWeights, sum)
	}
	return nil
}

// Invert marks metrics for which a lower raw value is better
type Invert struct {
	Primary   bool `json:"primary"`
	Secondary bool `json:"secondary"`
	Tertiary  bool `json:"tertiary"`
}

// Input is the raw metrics of one group
type Input struct {
	Group     string  `json:"group"`
	Primary   float64 `json:"primary"`
	Secondary float64 `json:"secondary"`
	Tertiary  float64 `json:"tertiary"`
}

// Ranked is one row of the ranking
type Ranked struct {
	Group          string  `json:"group"`
	Rank           int     `json:"rank"`
	Score          float64 `json:"score"`
	Percentile     float64 `json:"percentile"`
	ZScore         float64 `json:"z_score"`
	Cluster        Cluster `json:"cluster"`
	Recommendation string  `json:"recommendation"`
	Primary        float64 `json:"primary"`
	Secondary      float64 `json:"secondary"`
	Tertiary       float64 `json:"tertiary"`
}

// ClusterFor maps a z-score to its tier
func ClusterFor(z float64) Cluster {
	switch {
	case z > highPerformerZ:
		return HighPerformer
	case z > mediumPerformerZ:
		return MediumPerformer
	case z > lowPerformerZ:
		return LowPerformer
	default:
		return Critical
	}
}

// Recommendation returns the guidance text of a tier
func Recommendation(c Cluster) string {
	return recommendations[c]
}

// Rank normalises each metric to 0..100 across the inputs (inverted where
// requested), combines them with the weights and sorts descending with ties
// broken by group name. Percentile is (n-i)/n*100 for the i-th row and the
// z-score uses the population standard deviation of the scores, falling back
// to 1 when every score is equal.
func Rank(inputs []Input, w Weights, inv Invert) ([]Ranked, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return []Ranked{}, nil
	}

	primary := make([]float64, len(inputs))
	secondary := make([]float64, len(inputs))
	tertiary := make([]float64, len(inputs))
	for i, in := range inputs {
		primary[i], secondary[i], tertiary[i] = in.Primary, in.Secondary, in.Tertiary
	}
	pn := normalize(primary, inv.Primary)
	sn := normalize(secondary, inv.Secondary)
	tn := normalize(tertiary, inv.Tertiary)

	rows := make([]Ranked, len(inputs))
	scores := make([]float64, len(inputs))
	for i, in := range inputs {
		score := pn[i]*w.Primary + sn[i]*w.Secondary + tn[i]*w.Tertiary
		rows[i] = Ranked{
			Group:     in.Group,
			Score:     score,
			Primary:   in.Primary,
			Secondary: in.Secondary,
			Tertiary:  in.Tertiary,
		}
		scores[i] = score
	}

	slices.SortFunc(rows, func(a, b Ranked) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Group, b.Group)
	})

	mean, sd := stats.MeanStdDev(scores)
	n := float64(len(rows))
	for i := range rows {
		z := stats.ZScore(rows[i].Score, mean, sd)
		rows[i].Rank = i + 1
		rows[i].Percentile = (n - float64(i)) / n * 100
		rows[i].ZScore = z
		rows[i].Cluster = ClusterFor(z)
		rows[i].Recommendation = Recommendation(rows[i].Cluster)
	}
	return rows, nil
}

func normalize(values []float64, invert bool) []float64 {
	if invert {
		return stats.NormalizeInverse(values)
	}
	return stats.Normalize(values)
}
