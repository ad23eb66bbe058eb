// Package indicator implements the per-dataset indicator calculators.
//
// Every calculator takes its classification bands as a parameter so that
// thresholds stay data. A calculator never fabricates a result: groups with a
// missing side of a pair, a zero denominator or too few points are omitted.
package indicator

import "math"

// Classifier assigns a status label to a metric value
type Classifier interface {
	Classify(v float64) string
}

// Band is one rung of a Ladder. A value belongs to the band when it is above
// Min, or equal to Min when Inclusive is set.
type Band struct {
	Label     string  `json:"label"`
	Min       float64 `json:"min"`
	Inclusive bool    `json:"inclusive"`
}

func (b Band) contains(v float64) bool {
	return v > b.Min || (b.Inclusive && v == b.Min)
}

// Ladder classifies a value against bands ordered from highest Min to lowest.
// Values below every band get Floor, so the ladder partitions the real line.
type Ladder struct {
	Bands []Band `json:"bands"`
	Floor string `json:"floor"`
}

// Classify implements Classifier
func (l Ladder) Classify(v float64) string {
	for _, b := range l.Bands {
		if b.contains(v) {
			return b.Label
		}
	}
	return l.Floor
}

// RangeBand is a closed interval [Low, High]
type RangeBand struct {
	Label string  `json:"label"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
}

// RangeBands classifies two-sided targets such as a parity index. Bands are
// checked in order, so a narrow target band must come before the wider band
// around it. Values outside every band get Otherwise.
type RangeBands struct {
	Bands     []RangeBand `json:"bands"`
	Otherwise string      `json:"otherwise"`
}

// Classify implements Classifier
func (r RangeBands) Classify(v float64) string {
	for _, b := range r.Bands {
		if v >= b.Low && v <= b.High {
			return b.Label
		}
	}
	return r.Otherwise
}

// Absolute classifies |v| with the wrapped classifier
type Absolute struct {
	Classifier
}

// Classify implements Classifier
func (a Absolute) Classify(v float64) string {
	return a.Classifier.Classify(math.Abs(v))
}
