package aggregation

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Reducer selects how a group of values collapses into one number
type Reducer string

const (
	Sum   Reducer = "sum"
	Mean  Reducer = "mean"
	Count Reducer = "count"
	Min   Reducer = "min"
	Max   Reducer = "max"
)

// ParseReducer parses a reducer name. "avg" is accepted as an alias for mean.
func ParseReducer(s string) (Reducer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sum":
		return Sum, nil
	case "mean", "avg":
		return Mean, nil
	case "count":
		return Count, nil
	case "min":
		return Min, nil
	case "max":
		return Max, nil
	default:
		return "", fmt.Errorf("unsupported reducer: %q (supported: sum, mean, count, min, max)", s)
	}
}

// GroupBy partitions records by key. Input order is preserved inside each group.
func GroupBy[T any, K comparable](records []T, key func(T) K) map[K][]T {
	groups := make(map[K][]T)
	for _, r := range records {
		k := key(r)
		groups[k] = append(groups[k], r)
	}
	return groups
}

// Keys returns the keys of a grouping in ascending order
func Keys[K cmp.Ordered, V any](groups map[K]V) []K {
	keys := make([]K, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Aggregate reduces the values extracted from records.
// It returns (0, false) for an empty input, except for Count which is (0, true).
func Aggregate[T any](records []T, value func(T) float64, r Reducer) (float64, bool) {
	var acc Accumulator
	for _, rec := range records {
		acc.Add(value(rec))
	}
	return acc.Value(r)
}

// AggregateBy groups records and reduces each group. Groups that reduce to
// "no data" are left out of the result.
func AggregateBy[T any, K comparable](records []T, key func(T) K, value func(T) float64, r Reducer) map[K]float64 {
	accs := make(map[K]*Accumulator)
	for _, rec := range records {
		k := key(rec)
		acc, ok := accs[k]
		if !ok {
			acc = &Accumulator{}
			accs[k] = acc
		}
		acc.Add(value(rec))
	}

	out := make(map[K]float64, len(accs))
	for k, acc := range accs {
		if v, ok := acc.Value(r); ok {
			out[k] = v
		}
	}
	return out
}

// Filter returns the records accepted by keep
func Filter[T any](records []T, keep func(T) bool) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
