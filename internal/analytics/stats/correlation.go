package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Strength classifies |r|
type Strength string

const (
	VeryStrong Strength = "very_strong"
	Strong     Strength = "strong"
	Moderate   Strength = "moderate"
	Weak       Strength = "weak"
	VeryWeak   Strength = "very_weak"
)

// Direction of a correlation
type Direction string

const (
	Positive Direction = "positive"
	Negative Direction = "negative"
	None     Direction = "none"
)

// directionDeadZone is the |r| below which no direction is reported
const directionDeadZone = 0.1

const maxTestableR = 1 - 1e-12

// Correlation is a Pearson product-moment correlation
type Correlation struct {
	R          float64   `json:"r"`
	Strength   Strength  `json:"strength"`
	Direction  Direction `json:"direction"`
	N          int       `json:"n"`
	TStatistic float64   `json:"t_statistic"`
	PValue     float64   `json:"p_value"` // two-sided, Student's t with n-2 dof
}

// ClassifyStrength maps |r| onto the five strength bands
func ClassifyStrength(r float64) Strength {
	a := math.Abs(r)
	switch {
	case a >= 0.9:
		return VeryStrong
	case a >= 0.7:
		return Strong
	case a >= 0.5:
		return Moderate
	case a >= 0.3:
		return Weak
	default:
		return VeryWeak
	}
}

// ClassifyDirection returns none inside the |r| < 0.1 dead zone
func ClassifyDirection(r float64) Direction {
	switch {
	case r >= directionDeadZone:
		return Positive
	case r <= -directionDeadZone:
		return Negative
	default:
		return None
	}
}

// Pearson correlates x and y.
// It returns ok=false for fewer than three points or mismatched lengths.
// If either side has zero variance r is reported as 0.
func Pearson(x, y []float64) (Correlation, bool) {
	n := len(x)
	if n < 3 || n != len(y) {
		return Correlation{}, false
	}

	r := 0.0
	_, sdX := stat.PopMeanStdDev(x, nil)
	_, sdY := stat.PopMeanStdDev(y, nil)
	if sdX > 0 && sdY > 0 {
		r = Clamp(stat.Correlation(x, y, nil), -1, 1)
	}

	c := Correlation{
		R:         r,
		Strength:  ClassifyStrength(r),
		Direction: ClassifyDirection(r),
		N:         n,
	}

	// A perfect fit has an infinite t; keep it finite so results stay JSON encodable.
	rt := Clamp(r, -maxTestableR, maxTestableR)
	df := float64(n - 2)
	c.TStatistic = rt * math.Sqrt(df/(1-rt*rt))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	c.PValue = Clamp(2*dist.Survival(math.Abs(c.TStatistic)), 0, 1)

	return c, true
}
