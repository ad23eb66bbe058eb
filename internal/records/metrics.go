package records

import (
	"maps"

	"github.com/soltixdb/datahub/internal/analytics"
	"github.com/soltixdb/datahub/internal/catalog"
)

// Metric is a numeric column that can be turned into observations
type Metric struct {
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
	// Defaults pin the stratifying dimensions so one row per place and
	// period is selected unless the caller overrides them
	Defaults map[string]string `json:"defaults,omitempty"`
	value    func(Record) (float64, bool)
}

// Value extracts the metric from a row of its dataset
func (m Metric) Value(r Record) (float64, bool) {
	if m.value == nil {
		return 0, false
	}
	return m.value(r)
}

func field[T Record](f func(T) float64) func(Record) (float64, bool) {
	return func(r Record) (float64, bool) {
		t, ok := r.(T)
		if !ok {
			return 0, false
		}
		return f(t), true
	}
}

var (
	totalGender = map[string]string{DimGender: Total}
	totalArea   = map[string]string{DimArea: Total}
	totalLabor  = map[string]string{DimGender: Total, DimAgeGroup: Total, DimEducation: Total}
	allItems    = map[string]string{DimExpenditure: General}
)

var metrics = map[string][]Metric{
	catalog.SchoolParticipationID: {
		{Name: "aps", Unit: "%", Description: "School participation rate",
			Defaults: map[string]string{DimGender: Total, DimAgeGroup: "7-12"},
			value:    field(func(r APSRecord) float64 { return r.APS })},
		{Name: "jumlah_siswa", Unit: "jiwa", Description: "Enrolled students",
			Defaults: map[string]string{DimGender: Total, DimAgeGroup: "7-12"},
			value:    field(func(r APSRecord) float64 { return float64(r.Students) })},
	},
	catalog.SchoolingID: {
		{Name: "rls", Unit: "tahun", Description: "Mean years of schooling", Defaults: totalGender,
			value: field(func(r SchoolingRecord) float64 { return r.RLS })},
		{Name: "hls", Unit: "tahun", Description: "Expected years of schooling", Defaults: totalGender,
			value: field(func(r SchoolingRecord) float64 { return r.HLS })},
	},
	catalog.LifeExpectancyID: {
		{Name: "ahh_total", Unit: "tahun", Description: "Life expectancy at birth",
			value: field(func(r LifeExpectancyRecord) float64 { return r.Total })},
		{Name: "ahh_lakilaki", Unit: "tahun", Description: "Male life expectancy",
			value: field(func(r LifeExpectancyRecord) float64 { return r.Male })},
		{Name: "ahh_perempuan", Unit: "tahun", Description: "Female life expectancy",
			value: field(func(r LifeExpectancyRecord) float64 { return r.Female })},
	},
	catalog.NutritionID: {
		{Name: "stunting", Unit: "%", Description: "Stunting prevalence",
			value: field(func(r NutritionRecord) float64 { return r.Stunting })},
		{Name: "wasting", Unit: "%", Description: "Wasting prevalence",
			value: field(func(r NutritionRecord) float64 { return r.Wasting })},
		{Name: "underweight", Unit: "%", Description: "Underweight prevalence",
			value: field(func(r NutritionRecord) float64 { return r.Underweight })},
	},
	catalog.GRDPID: {
		{Name: "pdrb_adhb", Unit: "juta rupiah", Description: "GRDP at current prices",
			value: field(func(r GRDPRecord) float64 { return r.Current })},
		{Name: "pdrb_adhk", Unit: "juta rupiah", Description: "GRDP at constant prices",
			value: field(func(r GRDPRecord) float64 { return r.Constant })},
		{Name: "pertumbuhan_ekonomi", Unit: "%", Description: "Real economic growth",
			value: field(func(r GRDPRecord) float64 { return r.Growth })},
		{Name: "per_kapita_adhb", Unit: "juta rupiah", Description: "GRDP per capita",
			value: field(func(r GRDPRecord) float64 { return r.PerCapita })},
	},
	catalog.UnemploymentID: {
		{Name: "tpt", Unit: "%", Description: "Open unemployment rate", Defaults: totalLabor,
			value: field(func(r UnemploymentRecord) float64 { return r.Rate })},
		{Name: "jumlah_pengangguran", Unit: "jiwa", Description: "Unemployed persons", Defaults: totalLabor,
			value: field(func(r UnemploymentRecord) float64 { return float64(r.Unemployed) })},
		{Name: "angkatan_kerja", Unit: "jiwa", Description: "Labour force", Defaults: totalLabor,
			value: field(func(r UnemploymentRecord) float64 { return float64(r.LaborForce) })},
	},
	catalog.PriceIndexID: {
		{Name: "ihk", Unit: "indeks", Description: "Consumer price index (2018=100)", Defaults: allItems,
			value: field(func(r PriceIndexRecord) float64 { return r.CPI })},
		{Name: "inflasi_mtm", Unit: "%", Description: "Month-to-month inflation", Defaults: allItems,
			value: field(func(r PriceIndexRecord) float64 { return r.MoM })},
		{Name: "inflasi_yoy", Unit: "%", Description: "Year-on-year inflation", Defaults: allItems,
			value: field(func(r PriceIndexRecord) float64 { return r.YoY })},
		{Name: "inflasi_ytd", Unit: "%", Description: "Year-to-date inflation", Defaults: allItems,
			value: field(func(r PriceIndexRecord) float64 { return r.YtD })},
	},
	catalog.PovertyID: {
		{Name: "persentase_miskin", Unit: "%", Description: "Poverty headcount ratio", Defaults: totalArea,
			value: field(func(r PovertyRecord) float64 { return r.Percent })},
		{Name: "jumlah_penduduk_miskin", Unit: "ribu jiwa", Description: "Poor population", Defaults: totalArea,
			value: field(func(r PovertyRecord) float64 { return float64(r.Poor) })},
		{Name: "garis_kemiskinan_perkapita", Unit: "rupiah/kapita/bulan", Description: "Poverty line", Defaults: totalArea,
			value: field(func(r PovertyRecord) float64 { return float64(r.PovertyLine) })},
	},
}

// Metrics returns the metrics of a dataset
func Metrics(datasetID string) []Metric {
	return metrics[datasetID]
}

// LookupMetric finds a metric by name. An empty name selects the dataset's
// primary metric.
func LookupMetric(datasetID, name string) (Metric, bool) {
	list := metrics[datasetID]
	if len(list) == 0 {
		return Metric{}, false
	}
	if name == "" {
		return list[0], true
	}
	for _, m := range list {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Observations converts rows into one observation per place and row, keyed by
// place name. Overrides replace the metric's default dimensions; rows of
// several periods in one year (monthly CPI) average out when the result is
// grouped into series.
func Observations(rows []Record, m Metric, overrides map[string]string) []analytics.Observation {
	dims := maps.Clone(m.Defaults)
	if dims == nil {
		dims = make(map[string]string)
	}
	maps.Copy(dims, overrides)
	filter := Filter{Dimensions: dims}

	out := make([]analytics.Observation, 0, len(rows))
	for _, r := range rows {
		if !filter.Match(r) {
			continue
		}
		v, ok := m.Value(r)
		if !ok {
			continue
		}
		out = append(out, analytics.Observation{Year: r.Period(), Group: r.Place().Name, Value: v})
	}
	return out
}
