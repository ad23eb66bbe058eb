// Package aggregation provides group-by reducers over typed record collections.
//
// Reducers never divide by zero. An empty input reduces to (0, false) so that
// callers can tell "no data" apart from a true zero and omit the group.
package aggregation

import "math"

// Accumulator keeps running statistics for a stream of values
type Accumulator struct {
	Count      int64   // Number of values added
	Sum        float64 // Sum of values
	Min        float64 // Minimum
	Max        float64 // Maximum
	SumSquares float64 // For variance calculation
}

// NewAccumulator creates an accumulator seeded with a single value
func NewAccumulator(value float64) *Accumulator {
	return &Accumulator{
		Count:      1,
		Sum:        value,
		Min:        value,
		Max:        value,
		SumSquares: value * value,
	}
}

// Add adds a single value
func (a *Accumulator) Add(value float64) {
	if a.Count == 0 {
		*a = *NewAccumulator(value)
		return
	}
	a.Count++
	a.Sum += value
	a.SumSquares += value * value
	if value < a.Min {
		a.Min = value
	}
	if value > a.Max {
		a.Max = value
	}
}

// Merge combines another accumulator into this one
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil || other.Count == 0 {
		return
	}
	if a.Count == 0 {
		*a = *other
		return
	}
	a.Count += other.Count
	a.Sum += other.Sum
	a.SumSquares += other.SumSquares
	if other.Min < a.Min {
		a.Min = other.Min
	}
	if other.Max > a.Max {
		a.Max = other.Max
	}
}

// Mean returns the arithmetic mean, or 0 when empty
func (a *Accumulator) Mean() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.Sum / float64(a.Count)
}

// Variance returns the population variance
func (a *Accumulator) Variance() float64 {
	if a.Count == 0 {
		return 0
	}
	mean := a.Mean()
	v := a.SumSquares/float64(a.Count) - mean*mean
	// Rounding can push a zero variance slightly negative.
	if v < 0 {
		return 0
	}
	return v
}

// StdDev returns the population standard deviation
func (a *Accumulator) StdDev() float64 {
	return math.Sqrt(a.Variance())
}

// Value returns the statistic selected by the reducer.
// The boolean is false when the accumulator holds no values.
func (a *Accumulator) Value(r Reducer) (float64, bool) {
	if a.Count == 0 {
		if r == Count {
			return 0, true
		}
		return 0, false
	}

	switch r {
	case Sum:
		return a.Sum, true
	case Mean:
		return a.Mean(), true
	case Count:
		return float64(a.Count), true
	case Min:
		return a.Min, true
	case Max:
		return a.Max, true
	default:
		return 0, false
	}
}
