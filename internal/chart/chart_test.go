package chart

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/datahub/internal/analytics"
	"github.com/soltixdb/datahub/internal/analytics/forecast"
	"github.com/soltixdb/datahub/internal/analytics/ranking"
)

func decodePNG(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	img, err := png.Decode(buf)
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
	assert.Positive(t, img.Bounds().Dy())
}

func TestSeriesPNG(t *testing.T) {
	series := analytics.Series{
		{Year: 2018, Value: 70.1}, {Year: 2019, Value: 70.6}, {Year: 2020, Value: 70.9},
		{Year: 2021, Value: 71.3}, {Year: 2022, Value: 71.8},
	}

	t.Run("history only", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SeriesPNG(&buf, "UHH Aceh", "Tahun", series, nil))
		decodePNG(t, &buf)
	})

	t.Run("with forecast", func(t *testing.T) {
		points := forecast.Forecast(series, 3)
		require.Len(t, points, 3)

		var buf bytes.Buffer
		require.NoError(t, SeriesPNG(&buf, "UHH Aceh", "Tahun", series, points))
		decodePNG(t, &buf)
	})

	t.Run("empty", func(t *testing.T) {
		assert.ErrorIs(t, SeriesPNG(&bytes.Buffer{}, "x", "", nil, nil), ErrEmpty)
	})
}

func TestRankingPNG(t *testing.T) {
	ranked, err := ranking.Rank([]ranking.Input{
		{Group: "Aceh", Primary: 10, Secondary: 5, Tertiary: 3},
		{Group: "Bali", Primary: 4, Secondary: 9, Tertiary: 1},
		{Group: "Jambi", Primary: 7, Secondary: 2, Tertiary: 8},
		{Group: "Papua", Primary: 1, Secondary: 1, Tertiary: 1},
	}, ranking.DefaultWeights(), ranking.Invert{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RankingPNG(&buf, "Peringkat", ranked))
	decodePNG(t, &buf)

	assert.ErrorIs(t, RankingPNG(&bytes.Buffer{}, "x", nil), ErrEmpty)
}

func TestScatterPNG(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2.1, 3.9, 6.2, 8.1, 9.8}

	var buf bytes.Buffer
	require.NoError(t, ScatterPNG(&buf, "Korelasi", "x", "y", x, y))
	decodePNG(t, &buf)

	// constant x has no regression line but still plots
	buf.Reset()
	require.NoError(t, ScatterPNG(&buf, "Konstan", "x", "y", []float64{1, 1}, []float64{2, 3}))
	decodePNG(t, &buf)

	assert.ErrorIs(t, ScatterPNG(&bytes.Buffer{}, "x", "a", "b", []float64{1}, nil), ErrEmpty)
}

func TestYearTicks(t *testing.T) {
	ticks := yearTicks{}.Ticks(2014.5, 2018)
	require.Len(t, ticks, 4)
	assert.Equal(t, "2015", ticks[0].Label)
	assert.Equal(t, float64(2018), ticks[3].Value)

	wide := yearTicks{}.Ticks(1990, 2020)
	assert.Equal(t, "1990", wide[0].Label)
	assert.Empty(t, wide[1].Label)
}
