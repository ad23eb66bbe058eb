package indicator

import (
	"math"

	"github.com/soltixdb/datahub/internal/analytics"
)

// Parity favour labels
const (
	FavorsFemale = "female"
	FavorsMale   = "male"
	FavorsEqual  = "equal"
)

// Parity is the gender parity index of one group in one year
type Parity struct {
	Group      string  `json:"group"`
	Year       int     `json:"year"`
	Male       float64 `json:"male"`
	Female     float64 `json:"female"`
	GPI        float64 `json:"gpi"`
	Status     string  `json:"status"`
	Favors     string  `json:"favors"`
	Confidence float64 `json:"confidence"`
}

// GenderParity computes female/male for every (group, year) with both sides
// present and male > 0. Incomplete pairs are omitted, never defaulted.
func GenderParity(male, female []analytics.Observation, bands Classifier) []Parity {
	pairs := pairUp(male, female)
	out := make([]Parity, 0, len(pairs))
	for _, p := range pairs {
		if p.A <= 0 {
			continue
		}
		gpi := p.B / p.A

		favors := FavorsEqual
		switch {
		case gpi > 1.03:
			favors = FavorsFemale
		case gpi < 0.97:
			favors = FavorsMale
		}

		out = append(out, Parity{
			Group:      p.Group,
			Year:       p.Year,
			Male:       p.A,
			Female:     p.B,
			GPI:        gpi,
			Status:     bands.Classify(gpi),
			Favors:     favors,
			Confidence: math.Max(0.75, 1-math.Abs(gpi-1)),
		})
	}
	return out
}

// Gap is the difference a-b of one group in one year
type Gap struct {
	Group  string  `json:"group"`
	Year   int     `json:"year"`
	A      float64 `json:"a"`
	B      float64 `json:"b"`
	Gap    float64 `json:"gap"`
	Status string  `json:"status"`
}

// Gaps computes a-b for every (group, year) where both sides are present.
// Wrap bands in Absolute to classify |a-b|.
func Gaps(a, b []analytics.Observation, bands Classifier) []Gap {
	pairs := pairUp(a, b)
	out := make([]Gap, 0, len(pairs))
	for _, p := range pairs {
		gap := p.A - p.B
		out = append(out, Gap{
			Group:  p.Group,
			Year:   p.Year,
			A:      p.A,
			B:      p.B,
			Gap:    gap,
			Status: bands.Classify(gap),
		})
	}
	return out
}

// EducationGap compares expected (HLS) and mean (RLS) years of schooling
type EducationGap struct {
	Group              string  `json:"group"`
	Year               int     `json:"year"`
	RLS                float64 `json:"rls"`
	HLS                float64 `json:"hls"`
	Gap                float64 `json:"gap"`
	ExpansionPotential float64 `json:"expansion_potential"`
	Status             string  `json:"status"`
	Confidence         float64 `json:"confidence"`
}

// EducationGaps computes HLS-RLS with expansion potential min(100, gap*10)
func EducationGaps(rls, hls []analytics.Observation, bands Classifier) []EducationGap {
	pairs := pairUp(hls, rls)
	out := make([]EducationGap, 0, len(pairs))
	for _, p := range pairs {
		gap := p.A - p.B
		confidence := 0.70
		if gap > 1 {
			confidence = 0.90
		}
		out = append(out, EducationGap{
			Group:              p.Group,
			Year:               p.Year,
			RLS:                p.B,
			HLS:                p.A,
			Gap:                gap,
			ExpansionPotential: math.Min(100, gap*10),
			Status:             bands.Classify(gap),
			Confidence:         confidence,
		})
	}
	return out
}

// PovertyGap compares rural and urban poverty of one group
type PovertyGap struct {
	Group       string  `json:"group"`
	Year        int     `json:"year"`
	Urban       float64 `json:"urban"`
	Rural       float64 `json:"rural"`
	Gap         float64 `json:"gap"`
	EquityScore float64 `json:"equity_score"`
	Status      string  `json:"status"`
}

// PovertyGaps computes rural-urban with equity score max(0, 100-gap*5)
func PovertyGaps(urban, rural []analytics.Observation, bands Classifier) []PovertyGap {
	pairs := pairUp(rural, urban)
	out := make([]PovertyGap, 0, len(pairs))
	for _, p := range pairs {
		gap := p.A - p.B
		out = append(out, PovertyGap{
			Group:       p.Group,
			Year:        p.Year,
			Urban:       p.B,
			Rural:       p.A,
			Gap:         gap,
			EquityScore: math.Max(0, 100-gap*5),
			Status:      bands.Classify(gap),
		})
	}
	return out
}

// YouthRatio compares youth unemployment with total unemployment
type YouthRatio struct {
	Group     string  `json:"group"`
	Year      int     `json:"year"`
	Total     float64 `json:"total"`
	Youth     float64 `json:"youth"`
	Ratio     float64 `json:"ratio"`
	SkillsGap float64 `json:"skills_gap"`
	Status    string  `json:"status"`
}

// YouthUnemployment computes youth/total with skills gap min(100, ratio*25).
// Cells with total <= 0 or without a youth value are omitted.
func YouthUnemployment(total, youth []analytics.Observation, bands Classifier) []YouthRatio {
	pairs := pairUp(total, youth)
	out := make([]YouthRatio, 0, len(pairs))
	for _, p := range pairs {
		if p.A <= 0 {
			continue
		}
		ratio := p.B / p.A
		out = append(out, YouthRatio{
			Group:     p.Group,
			Year:      p.Year,
			Total:     p.A,
			Youth:     p.B,
			Ratio:     ratio,
			SkillsGap: math.Min(100, ratio*25),
			Status:    bands.Classify(ratio),
		})
	}
	return out
}
