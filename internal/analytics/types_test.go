package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGroupedSeries_SortsAndAveragesDuplicates(t *testing.T) {
	obs := []Observation{
		{Year: 2024, Group: "Aceh", Value: 55},
		{Year: 2023, Group: "Aceh", Value: 50},
		{Year: 2024, Group: "Aceh", Value: 57},
		{Year: 2023, Group: "Bali", Value: 70},
	}

	grouped := BuildGroupedSeries(obs)
	require.Len(t, grouped, 2)

	aceh := grouped["Aceh"]
	require.Len(t, aceh, 2)
	assert.Equal(t, 2023, aceh[0].Year)
	assert.Equal(t, 2024, aceh[1].Year)
	assert.InDelta(t, 56.0, aceh[1].Value, 1e-9)

	assert.Equal(t, []string{"Aceh", "Bali"}, grouped.Groups())
}

func TestSeries_At(t *testing.T) {
	s := NewSeries([]YearValue{{2020, 1}, {2022, 3}, {2021, 2}})

	v, ok := s.At(2021)
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	_, ok = s.At(2019)
	assert.False(t, ok)
}

func TestGroupedSeries_ValuesAtOmitsMissingYears(t *testing.T) {
	grouped := BuildGroupedSeries([]Observation{
		{Year: 2023, Group: "A", Value: 1},
		{Year: 2024, Group: "A", Value: 2},
		{Year: 2023, Group: "B", Value: 3},
	})

	at := grouped.ValuesAt(2024)
	assert.Equal(t, map[string]float64{"A": 2}, at)

	latest := grouped.Latest()
	assert.Equal(t, map[string]float64{"A": 2, "B": 3}, latest)
}

func TestSeries_LastEmpty(t *testing.T) {
	var s Series
	_, ok := s.Last()
	assert.False(t, ok)
}
