package indicator

import (
	"cmp"
	"slices"

	"github.com/soltixdb/datahub/internal/analytics"
)

type pairKey struct {
	group string
	year  int
}

// pair is one (group, year) cell where both sides were observed
type pair struct {
	Group string
	Year  int
	A     float64
	B     float64
}

// pairUp joins two observation sets on (group, year). Cells missing either
// side are dropped. When a side repeats a cell the last value wins.
// The result is ordered by group, then year.
func pairUp(a, b []analytics.Observation) []pair {
	left := make(map[pairKey]float64, len(a))
	for _, o := range a {
		left[pairKey{o.Group, o.Year}] = o.Value
	}
	right := make(map[pairKey]float64, len(b))
	for _, o := range b {
		right[pairKey{o.Group, o.Year}] = o.Value
	}

	out := make([]pair, 0, len(left))
	for k, av := range left {
		bv, ok := right[k]
		if !ok {
			continue
		}
		out = append(out, pair{Group: k.group, Year: k.year, A: av, B: bv})
	}

	slices.SortFunc(out, func(x, y pair) int {
		if c := cmp.Compare(x.Group, y.Group); c != 0 {
			return c
		}
		return cmp.Compare(x.Year, y.Year)
	})
	return out
}
