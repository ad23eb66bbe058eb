// Package records defines one typed row per dataset and the generic table
// operations (filtering, paging, metric extraction) the services run on them.
package records

import "strconv"

// Dimension keys used to stratify rows
const (
	DimGender      = "gender"
	DimAgeGroup    = "age_group"
	DimArea        = "area"
	DimEducation   = "education"
	DimSector      = "sector"
	DimMonth       = "month"
	DimExpenditure = "expenditure_group"
)

// Dimension values
const (
	Total  = "Total"
	Male   = "Laki-laki"
	Female = "Perempuan"
	Urban  = "Perkotaan"
	Rural  = "Perdesaan"
	Youth  = "15-24"
	// General is the all-items CPI group
	General = "Umum"
)

// Record is implemented by every typed row
type Record interface {
	Period() int
	Place() Region
	// Dimension returns the row's value for a stratifying dimension, or ""
	// when the row is not stratified by it
	Dimension(key string) string
	// Row returns the values in schema column order
	Row() []any
}

// APSRecord is a school participation row (bps-edu-001)
type APSRecord struct {
	Year         int     `json:"tahun"`
	ProvinceCode string  `json:"kode_provinsi"`
	ProvinceName string  `json:"nama_provinsi"`
	AgeGroup     string  `json:"kelompok_umur"`
	Gender       string  `json:"jenis_kelamin"`
	APS          float64 `json:"aps"`
	Students     int     `json:"jumlah_siswa"`
}

func (r APSRecord) Period() int   { return r.Year }
func (r APSRecord) Place() Region { return Region{r.ProvinceCode, r.ProvinceName} }
func (r APSRecord) Dimension(key string) string {
	switch key {
	case DimGender:
		return r.Gender
	case DimAgeGroup:
		return r.AgeGroup
	}
	return ""
}
func (r APSRecord) Row() []any {
	return []any{r.Year, r.ProvinceCode, r.ProvinceName, r.AgeGroup, r.Gender, r.APS, r.Students}
}

// SchoolingRecord is a mean/expected years of schooling row (bps-edu-002)
type SchoolingRecord struct {
	Year       int     `json:"tahun"`
	RegionCode string  `json:"kode_wilayah"`
	RegionName string  `json:"nama_wilayah"`
	Gender     string  `json:"jenis_kelamin"`
	RLS        float64 `json:"rls"`
	HLS        float64 `json:"hls"`
}

func (r SchoolingRecord) Period() int   { return r.Year }
func (r SchoolingRecord) Place() Region { return Region{r.RegionCode, r.RegionName} }
func (r SchoolingRecord) Dimension(key string) string {
	if key == DimGender {
		return r.Gender
	}
	return ""
}
func (r SchoolingRecord) Row() []any {
	return []any{r.Year, r.RegionCode, r.RegionName, r.Gender, r.RLS, r.HLS}
}

// LifeExpectancyRecord is a life expectancy row (bps-health-001)
type LifeExpectancyRecord struct {
	Year         int     `json:"tahun"`
	ProvinceCode string  `json:"kode_provinsi"`
	ProvinceName string  `json:"nama_provinsi"`
	Total        float64 `json:"ahh_total"`
	Male         float64 `json:"ahh_lakilaki"`
	Female       float64 `json:"ahh_perempuan"`
	Method       string  `json:"metode"`
}

func (r LifeExpectancyRecord) Period() int                 { return r.Year }
func (r LifeExpectancyRecord) Place() Region               { return Region{r.ProvinceCode, r.ProvinceName} }
func (r LifeExpectancyRecord) Dimension(key string) string { return "" }
func (r LifeExpectancyRecord) Row() []any {
	return []any{r.Year, r.ProvinceCode, r.ProvinceName, r.Total, r.Male, r.Female, r.Method}
}

// NutritionRecord is a child malnutrition row (bps-health-002)
type NutritionRecord struct {
	Year         int     `json:"tahun"`
	ProvinceCode string  `json:"kode_provinsi"`
	ProvinceName string  `json:"nama_provinsi"`
	Stunting     float64 `json:"stunting"`
	Wasting      float64 `json:"wasting"`
	Underweight  float64 `json:"underweight"`
	Sample       int     `json:"jumlah_sampel"`
}

func (r NutritionRecord) Period() int                 { return r.Year }
func (r NutritionRecord) Place() Region               { return Region{r.ProvinceCode, r.ProvinceName} }
func (r NutritionRecord) Dimension(key string) string { return "" }
func (r NutritionRecord) Row() []any {
	return []any{r.Year, r.ProvinceCode, r.ProvinceName, r.Stunting, r.Wasting, r.Underweight, r.Sample}
}

// GRDPRecord is a regional gross domestic product row (bps-econ-001)
type GRDPRecord struct {
	Year         int     `json:"tahun"`
	ProvinceCode string  `json:"kode_provinsi"`
	ProvinceName string  `json:"nama_provinsi"`
	Current      float64 `json:"pdrb_adhb"`
	Constant     float64 `json:"pdrb_adhk"`
	Growth       float64 `json:"pertumbuhan_ekonomi"`
	PerCapita    float64 `json:"per_kapita_adhb"`
}

func (r GRDPRecord) Period() int                 { return r.Year }
func (r GRDPRecord) Place() Region               { return Region{r.ProvinceCode, r.ProvinceName} }
func (r GRDPRecord) Dimension(key string) string { return "" }
func (r GRDPRecord) Row() []any {
	return []any{r.Year, r.ProvinceCode, r.ProvinceName, r.Current, r.Constant, r.Growth, r.PerCapita}
}

// SectorRecord is the value added of one sector of a province's GRDP
type SectorRecord struct {
	Year         int     `json:"tahun"`
	ProvinceCode string  `json:"kode_provinsi"`
	ProvinceName string  `json:"nama_provinsi"`
	Sector       string  `json:"lapangan_usaha"`
	Value        float64 `json:"nilai"`
}

func (r SectorRecord) Period() int   { return r.Year }
func (r SectorRecord) Place() Region { return Region{r.ProvinceCode, r.ProvinceName} }
func (r SectorRecord) Dimension(key string) string {
	if key == DimSector {
		return r.Sector
	}
	return ""
}
func (r SectorRecord) Row() []any {
	return []any{r.Year, r.ProvinceCode, r.ProvinceName, r.Sector, r.Value}
}

// UnemploymentRecord is an open unemployment row (bps-econ-002)
type UnemploymentRecord struct {
	Year         int     `json:"tahun"`
	ProvinceCode string  `json:"kode_provinsi"`
	ProvinceName string  `json:"nama_provinsi"`
	Gender       string  `json:"jenis_kelamin"`
	AgeGroup     string  `json:"kelompok_umur"`
	Education    string  `json:"pendidikan"`
	Rate         float64 `json:"tpt"`
	Unemployed   int     `json:"jumlah_pengangguran"`
	LaborForce   int     `json:"angkatan_kerja"`
}

func (r UnemploymentRecord) Period() int   { return r.Year }
func (r UnemploymentRecord) Place() Region { return Region{r.ProvinceCode, r.ProvinceName} }
func (r UnemploymentRecord) Dimension(key string) string {
	switch key {
	case DimGender:
		return r.Gender
	case DimAgeGroup:
		return r.AgeGroup
	case DimEducation:
		return r.Education
	}
	return ""
}
func (r UnemploymentRecord) Row() []any {
	return []any{r.Year, r.ProvinceCode, r.ProvinceName, r.Gender, r.AgeGroup, r.Education,
		r.Rate, r.Unemployed, r.LaborForce}
}

// PriceIndexRecord is a monthly consumer price index row (bps-econ-003)
type PriceIndexRecord struct {
	Year     int     `json:"tahun"`
	Month    int     `json:"bulan"`
	CityCode string  `json:"kode_kota"`
	CityName string  `json:"nama_kota"`
	Group    string  `json:"kelompok_pengeluaran"`
	CPI      float64 `json:"ihk"`
	MoM      float64 `json:"inflasi_mtm"`
	YoY      float64 `json:"inflasi_yoy"`
	YtD      float64 `json:"inflasi_ytd"`
}

func (r PriceIndexRecord) Period() int   { return r.Year }
func (r PriceIndexRecord) Place() Region { return Region{r.CityCode, r.CityName} }
func (r PriceIndexRecord) Dimension(key string) string {
	switch key {
	case DimExpenditure:
		return r.Group
	case DimMonth:
		return strconv.Itoa(r.Month)
	}
	return ""
}
func (r PriceIndexRecord) Row() []any {
	return []any{r.Year, r.Month, r.CityCode, r.CityName, r.Group, r.CPI, r.MoM, r.YoY, r.YtD}
}

// PovertyRecord is a poverty headcount row (bps-econ-004)
type PovertyRecord struct {
	Year         int     `json:"tahun"`
	ProvinceCode string  `json:"kode_provinsi"`
	ProvinceName string  `json:"nama_provinsi"`
	Area         string  `json:"wilayah"`
	Percent      float64 `json:"persentase_miskin"`
	Poor         int     `json:"jumlah_penduduk_miskin"`
	PovertyLine  int     `json:"garis_kemiskinan_perkapita"`
}

func (r PovertyRecord) Period() int   { return r.Year }
func (r PovertyRecord) Place() Region { return Region{r.ProvinceCode, r.ProvinceName} }
func (r PovertyRecord) Dimension(key string) string {
	if key == DimArea {
		return r.Area
	}
	return ""
}
func (r PovertyRecord) Row() []any {
	return []any{r.Year, r.ProvinceCode, r.ProvinceName, r.Area, r.Percent, r.Poor, r.PovertyLine}
}
