package aggregation

import (
	"math"
	"testing"
)

type row struct {
	province string
	year     int
	value    float64
}

var testRows = []row{
	{"Aceh", 2023, 10},
	{"Aceh", 2024, 20},
	{"Bali", 2023, 5},
	{"Bali", 2024, 7},
	{"Bali", 2024, 9},
}

func TestGroupBy_PreservesOrder(t *testing.T) {
	groups := GroupBy(testRows, func(r row) string { return r.province })

	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}

	bali := groups["Bali"]
	if len(bali) != 3 {
		t.Fatalf("Expected 3 Bali rows, got %d", len(bali))
	}
	if bali[0].value != 5 || bali[2].value != 9 {
		t.Errorf("Expected input order to be preserved, got %+v", bali)
	}
}

func TestKeys_Sorted(t *testing.T) {
	groups := GroupBy(testRows, func(r row) string { return r.province })
	keys := Keys(groups)
	if len(keys) != 2 || keys[0] != "Aceh" || keys[1] != "Bali" {
		t.Errorf("Expected [Aceh Bali], got %v", keys)
	}
}

func TestAggregate_Reducers(t *testing.T) {
	value := func(r row) float64 { return r.value }

	tests := []struct {
		reducer Reducer
		want    float64
	}{
		{Sum, 51},
		{Mean, 10.2},
		{Count, 5},
		{Min, 5},
		{Max, 20},
	}

	for _, tt := range tests {
		t.Run(string(tt.reducer), func(t *testing.T) {
			got, ok := Aggregate(testRows, value, tt.reducer)
			if !ok {
				t.Fatal("Expected ok for non-empty input")
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Aggregate(%s) = %v, want %v", tt.reducer, got, tt.want)
			}
		})
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	value := func(r row) float64 { return r.value }

	for _, r := range []Reducer{Sum, Mean, Min, Max} {
		got, ok := Aggregate(nil, value, r)
		if ok || got != 0 {
			t.Errorf("Aggregate(empty, %s) = (%v, %v), want (0, false)", r, got, ok)
		}
	}

	got, ok := Aggregate(nil, value, Count)
	if !ok || got != 0 {
		t.Errorf("Aggregate(empty, count) = (%v, %v), want (0, true)", got, ok)
	}
}

func TestAggregateBy_MeanPerYear(t *testing.T) {
	bali := Filter(testRows, func(r row) bool { return r.province == "Bali" })
	byYear := AggregateBy(bali,
		func(r row) int { return r.year },
		func(r row) float64 { return r.value },
		Mean)

	if byYear[2023] != 5 {
		t.Errorf("Expected 2023 mean 5, got %v", byYear[2023])
	}
	if byYear[2024] != 8 {
		t.Errorf("Expected 2024 mean 8, got %v", byYear[2024])
	}
}

func TestParseReducer(t *testing.T) {
	tests := []struct {
		in      string
		want    Reducer
		wantErr bool
	}{
		{"sum", Sum, false},
		{"AVG", Mean, false},
		{" mean ", Mean, false},
		{"count", Count, false},
		{"median", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReducer(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseReducer(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseReducer(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAccumulator_MergeAndVariance(t *testing.T) {
	a := NewAccumulator(2)
	a.Add(4)

	b := &Accumulator{}
	b.Add(4)
	b.Add(4)
	b.Add(5)
	b.Add(5)
	b.Add(7)
	b.Add(9)

	a.Merge(b)

	if a.Count != 8 {
		t.Fatalf("Expected count 8, got %d", a.Count)
	}
	if a.Mean() != 5 {
		t.Errorf("Expected mean 5, got %v", a.Mean())
	}
	if math.Abs(a.StdDev()-2) > 1e-9 {
		t.Errorf("Expected population stddev 2, got %v", a.StdDev())
	}
	if a.Min != 2 || a.Max != 9 {
		t.Errorf("Expected min 2 max 9, got %v %v", a.Min, a.Max)
	}
}
