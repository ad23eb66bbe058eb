package datagen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/datahub/internal/records"
)

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(DefaultConfig())
	require.NoError(t, err)
	b, err := Generate(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	cfg := DefaultConfig()
	cfg.Seed = 7
	c, err := Generate(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a.Nutrition, c.Nutrition)
}

func TestGenerate_RowCounts(t *testing.T) {
	b, err := Generate(DefaultConfig())
	require.NoError(t, err)

	provYears := 11 * len(records.Provinces)
	assert.Len(t, b.SchoolParticipation, provYears*4*3)
	assert.Len(t, b.Schooling, provYears*3)
	assert.Len(t, b.LifeExpectancy, provYears)
	assert.Len(t, b.Nutrition, provYears)
	assert.Len(t, b.GRDP, provYears)
	assert.Len(t, b.GRDPSectors, provYears*len(Sectors))
	assert.Len(t, b.Unemployment, provYears*(3+1+len(Education)))
	assert.Len(t, b.Poverty, provYears*3)
	assert.Len(t, b.PriceIndex, 11*12*len(records.PriceCities)*len(ExpenditureGroups))
}

func TestGenerate_InvalidRange(t *testing.T) {
	_, err := Generate(Config{FromYear: 2020, ToYear: 2019})
	assert.Error(t, err)
}

func TestGenerate_ValueInvariants(t *testing.T) {
	b, err := Generate(DefaultConfig())
	require.NoError(t, err)

	for _, r := range b.SchoolParticipation {
		assert.LessOrEqual(t, r.APS, 100.0)
	}
	for _, r := range b.Schooling {
		assert.GreaterOrEqual(t, r.HLS, r.RLS)
	}
	for _, r := range b.LifeExpectancy {
		assert.Less(t, r.Male, r.Total)
		assert.Greater(t, r.Female, r.Total)
		if r.Year >= DirectMethodFrom {
			assert.Equal(t, "Direct", r.Method)
		} else {
			assert.Equal(t, "Indirect", r.Method)
		}
	}
	for _, r := range b.Nutrition {
		assert.GreaterOrEqual(t, r.Stunting, 5.0)
		assert.GreaterOrEqual(t, r.Wasting, 3.0)
		assert.GreaterOrEqual(t, r.Underweight, 5.0)
	}
	for _, r := range b.Poverty {
		assert.GreaterOrEqual(t, r.Percent, 3.0)
	}
}

func TestGenerate_SectorsAddUpToConstantGRDP(t *testing.T) {
	b, err := Generate(DefaultConfig())
	require.NoError(t, err)

	type key struct {
		year int
		code string
	}
	sums := make(map[key]float64)
	for _, s := range b.GRDPSectors {
		sums[key{s.Year, s.ProvinceCode}] += s.Value
	}
	for _, g := range b.GRDP {
		assert.InDelta(t, g.Constant, sums[key{g.Year, g.ProvinceCode}], float64(len(Sectors)))
	}
}

func TestGenerate_PriceIndexReferenceYear(t *testing.T) {
	b, err := Generate(DefaultConfig())
	require.NoError(t, err)

	sum, n := 0.0, 0
	for _, r := range b.PriceIndex {
		if r.CityCode == "000" && r.Group == records.General && r.Year == CPIReferenceYear {
			sum += r.CPI
			n++
		}
		if r.Month == 1 {
			assert.Equal(t, r.MoM, r.YtD, "january year-to-date equals month-on-month")
		}
	}
	require.Equal(t, 12, n)
	assert.InDelta(t, 100, sum/12, 0.01)
}

func TestGenerate_UnemploymentBreakdown(t *testing.T) {
	b, err := Generate(DefaultConfig())
	require.NoError(t, err)

	var youth, education int
	for _, r := range b.Unemployment {
		if r.Year != 2025 || r.ProvinceCode != "11" {
			continue
		}
		if r.AgeGroup == records.Youth {
			youth++
		}
		if r.Education != records.Total {
			education++
			assert.Equal(t, records.Total, r.Gender)
		}
	}
	assert.Equal(t, 1, youth)
	assert.Equal(t, len(Education), education)
}
