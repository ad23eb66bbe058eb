// Package datagen produces the synthetic statistics served by the hub. Every
// value is a yearly trend plus a province offset plus bounded noise, drawn
// from a seeded generator so the same config always yields the same bundle.
package datagen

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/soltixdb/datahub/internal/records"
)

// BaseYear anchors every trend
const BaseYear = 2015

// Config controls generation
type Config struct {
	Seed     uint64
	FromYear int
	ToYear   int
}

// DefaultConfig covers 2015-2025
func DefaultConfig() Config {
	return Config{Seed: 42, FromYear: 2015, ToYear: 2025}
}

// Validate checks the year range
func (c Config) Validate() error {
	if c.FromYear <= 0 || c.ToYear < c.FromYear {
		return fmt.Errorf("invalid year range %d-%d", c.FromYear, c.ToYear)
	}
	return nil
}

func (c Config) years() []int {
	out := make([]int, 0, c.ToYear-c.FromYear+1)
	for y := c.FromYear; y <= c.ToYear; y++ {
		out = append(out, y)
	}
	return out
}

// trend parameterises one generated quantity
type trend struct {
	base      float64
	growth    float64 // per year since BaseYear
	variation float64 // spread across provinces
	noise     float64 // width of the uniform noise
}

// middleProvince is the index around which province offsets are centred
const middleProvince = 17

func (t trend) at(rng *rand.Rand, year, province int) float64 {
	v := t.base + float64(year-BaseYear)*t.growth
	v += float64(province-middleProvince) * (t.variation / middleProvince)
	v += (rng.Float64() - 0.5) * t.noise
	return v
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// generator holds one stream per dataset so adding rows to one dataset never
// shifts the values of another
type generator struct {
	cfg   Config
	years []int
}

func (g generator) rng(stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(g.cfg.Seed, stream))
}

// Generate builds the full bundle
func Generate(cfg Config) (*records.Bundle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := generator{cfg: cfg, years: cfg.years()}
	grdp, sectors := g.grdp()
	return &records.Bundle{
		SchoolParticipation: g.schoolParticipation(),
		Schooling:           g.schooling(),
		LifeExpectancy:      g.lifeExpectancy(),
		Nutrition:           g.nutrition(),
		GRDP:                grdp,
		GRDPSectors:         sectors,
		Unemployment:        g.unemployment(),
		PriceIndex:          g.priceIndex(),
		Poverty:             g.poverty(),
	}, nil
}

var genders = []string{records.Male, records.Female, records.Total}

var ageGroups = []struct {
	label    string
	aps      float64
	students float64
	perProv  float64
}{
	{"7-12", 98.5, 500000, 50000},
	{"13-15", 96.0, 250000, 25000},
	{"16-18", 85.0, 200000, 20000},
	{"19-24", 35.0, 150000, 15000},
}

func (g generator) schoolParticipation() []records.APSRecord {
	rng := g.rng(1)
	out := make([]records.APSRecord, 0, len(g.years)*len(records.Provinces)*len(ageGroups)*len(genders))
	for _, year := range g.years {
		for i, prov := range records.Provinces {
			for _, age := range ageGroups {
				for _, gender := range genders {
					aps := math.Min(100, trend{age.aps, 0.15, 5, 0.5}.at(rng, year, i))
					students := trend{age.students + float64(i)*age.perProv, 1000, 50000, 10000}.at(rng, year, i)
					out = append(out, records.APSRecord{
						Year:         year,
						ProvinceCode: prov.Code,
						ProvinceName: prov.Name,
						AgeGroup:     age.label,
						Gender:       gender,
						APS:          round(aps, 2),
						Students:     int(math.Floor(students)),
					})
				}
			}
		}
	}
	return out
}

func (g generator) schooling() []records.SchoolingRecord {
	rng := g.rng(2)
	out := make([]records.SchoolingRecord, 0, len(g.years)*len(records.Provinces)*len(genders))
	for _, year := range g.years {
		for i, prov := range records.Provinces {
			for _, gender := range genders {
				rls := trend{8.0, 0.12, 2.5, 0.1}.at(rng, year, i)
				hls := trend{12.5, 0.15, 2.0, 0.1}.at(rng, year, i)
				out = append(out, records.SchoolingRecord{
					Year:       year,
					RegionCode: prov.Code,
					RegionName: prov.Name,
					Gender:     gender,
					RLS:        round(rls, 2),
					HLS:        round(math.Max(rls, hls), 2),
				})
			}
		}
	}
	return out
}

// DirectMethodFrom is the first year life expectancy is estimated directly
const DirectMethodFrom = 2020

func (g generator) lifeExpectancy() []records.LifeExpectancyRecord {
	rng := g.rng(3)
	out := make([]records.LifeExpectancyRecord, 0, len(g.years)*len(records.Provinces))
	for _, year := range g.years {
		for i, prov := range records.Provinces {
			total := trend{68.0, 0.25, 3.5, 0.2}.at(rng, year, i)
			male := total - 2.5 - rng.Float64()*0.5
			female := total + 2.5 + rng.Float64()*0.5
			method := "Indirect"
			if year >= DirectMethodFrom {
				method = "Direct"
			}
			out = append(out, records.LifeExpectancyRecord{
				Year:         year,
				ProvinceCode: prov.Code,
				ProvinceName: prov.Name,
				Total:        round(total, 2),
				Male:         round(male, 2),
				Female:       round(female, 2),
				Method:       method,
			})
		}
	}
	return out
}

func (g generator) nutrition() []records.NutritionRecord {
	rng := g.rng(4)
	out := make([]records.NutritionRecord, 0, len(g.years)*len(records.Provinces))
	for _, year := range g.years {
		for i, prov := range records.Provinces {
			stunting := math.Max(5, trend{35, -1.2, 8, 0.8}.at(rng, year, i))
			wasting := math.Max(3, trend{12, -0.4, 3, 0.5}.at(rng, year, i))
			underweight := math.Max(5, trend{20, -0.8, 5, 0.6}.at(rng, year, i))
			out = append(out, records.NutritionRecord{
				Year:         year,
				ProvinceCode: prov.Code,
				ProvinceName: prov.Name,
				Stunting:     round(stunting, 2),
				Wasting:      round(wasting, 2),
				Underweight:  round(underweight, 2),
				Sample:       1500 + i*50 + rng.IntN(500),
			})
		}
	}
	return out
}

// Sectors are the GRDP industry groups
var Sectors = []string{
	"Pertanian",
	"Pertambangan",
	"Industri Pengolahan",
	"Konstruksi",
	"Perdagangan",
	"Jasa",
}

// sectorWeight is the typical share of each sector before province tilt
var sectorWeight = []float64{0.22, 0.10, 0.20, 0.10, 0.18, 0.20}

func (g generator) grdp() ([]records.GRDPRecord, []records.SectorRecord) {
	rng := g.rng(5)
	n := len(g.years) * len(records.Provinces)
	out := make([]records.GRDPRecord, 0, n)
	sectors := make([]records.SectorRecord, 0, n*len(Sectors))
	for _, year := range g.years {
		for i, prov := range records.Provinces {
			current := trend{50_000_000, 2_500_000, 30_000_000, 1_000_000}.at(rng, year, i)
			constant := current * 0.92
			growth := 4.5 + (rng.Float64()-0.5)*2
			population := 5_000_000 + float64(i)*500_000
			out = append(out, records.GRDPRecord{
				Year:         year,
				ProvinceCode: prov.Code,
				ProvinceName: prov.Name,
				Current:      round(current, 0),
				Constant:     round(constant, 0),
				Growth:       round(growth, 2),
				PerCapita:    round(current/population, 0),
			})

			// each province leans on one sector, which makes concentration vary
			lead := i % len(Sectors)
			weights := make([]float64, len(Sectors))
			sum := 0.0
			for s, w := range sectorWeight {
				if s == lead {
					w += 0.05 + 0.25*float64(i)/float64(len(records.Provinces))
				}
				weights[s] = w * (0.9 + 0.2*rng.Float64())
				sum += weights[s]
			}
			for s, name := range Sectors {
				sectors = append(sectors, records.SectorRecord{
					Year:         year,
					ProvinceCode: prov.Code,
					ProvinceName: prov.Name,
					Sector:       name,
					Value:        round(constant*weights[s]/sum, 0),
				})
			}
		}
	}
	return out, sectors
}

var areas = []struct {
	label      string
	multiplier float64
}{
	{records.Urban, 0.6},
	{records.Rural, 1.5},
	{records.Total, 1.0},
}

func (g generator) poverty() []records.PovertyRecord {
	rng := g.rng(6)
	out := make([]records.PovertyRecord, 0, len(g.years)*len(records.Provinces)*len(areas))
	for _, year := range g.years {
		for i, prov := range records.Provinces {
			population := 5_000_000 + float64(i)*500_000
			line := 350_000 + (year-BaseYear)*15_000 + i*5_000
			for _, area := range areas {
				pct := math.Max(3, trend{12 * area.multiplier, -0.35, 5, 0.5}.at(rng, year, i))
				out = append(out, records.PovertyRecord{
					Year:         year,
					ProvinceCode: prov.Code,
					ProvinceName: prov.Name,
					Area:         area.label,
					Percent:      round(pct, 2),
					Poor:         int(math.Floor(pct / 100 * population / 1000)),
					PovertyLine:  line,
				})
			}
		}
	}
	return out
}

// Education levels of the labour force survey, lowest first
var Education = []string{"SD", "SMP", "SMA", "Diploma", "Sarjana"}

// educationFactor scales the total rate per education level
var educationFactor = []float64{0.55, 0.85, 1.45, 1.05, 0.95}

func (g generator) unemployment() []records.UnemploymentRecord {
	rng := g.rng(7)
	rows := len(genders) + 1 + len(Education)
	out := make([]records.UnemploymentRecord, 0, len(g.years)*len(records.Provinces)*rows)
	for _, year := range g.years {
		for i, prov := range records.Provinces {
			laborForce := 2_000_000 + i*100_000
			row := func(gender, age, edu string, rate float64, force int) records.UnemploymentRecord {
				rate = math.Max(0.5, rate)
				return records.UnemploymentRecord{
					Year:         year,
					ProvinceCode: prov.Code,
					ProvinceName: prov.Name,
					Gender:       gender,
					AgeGroup:     age,
					Education:    edu,
					Rate:         round(rate, 2),
					Unemployed:   int(math.Floor(rate / 100 * float64(force))),
					LaborForce:   force,
				}
			}

			var total float64
			for _, gender := range genders {
				rate := math.Max(2, trend{6.5, -0.15, 2.5, 0.3}.at(rng, year, i))
				if gender == records.Total {
					total = rate
				}
				out = append(out, row(gender, records.Total, records.Total, rate, laborForce))
			}

			youth := total * (1.8 + 1.6*rng.Float64())
			out = append(out, row(records.Total, records.Youth, records.Total, youth, laborForce/5))

			// the tilt makes the tertiary/primary ratio differ between provinces
			tilt := 0.6 + 1.2*float64(i)/float64(len(records.Provinces))
			for e, edu := range Education {
				factor := educationFactor[e]
				if e >= 3 {
					factor *= tilt
				}
				rate := total * factor * (0.95 + 0.1*rng.Float64())
				out = append(out, row(records.Total, records.Total, edu, rate, laborForce/len(Education)))
			}
		}
	}
	return out
}

// ExpenditureGroups are the CPI groups; the first is the all-items index
var ExpenditureGroups = []string{
	records.General,
	"Makanan, Minuman dan Tembakau",
	"Perumahan",
	"Pakaian dan Alas Kaki",
	"Kesehatan",
	"Pendidikan",
	"Transportasi",
}

// groupDrift is the mean monthly inflation of each group, in percent
var groupDrift = []float64{0.25, 0.35, 0.20, 0.15, 0.22, 0.30, 0.28}

// CPIReferenceYear averages to 100
const CPIReferenceYear = 2018

func (g generator) priceIndex() []records.PriceIndexRecord {
	rng := g.rng(8)
	months := len(g.years) * 12
	out := make([]records.PriceIndexRecord, 0, months*len(records.PriceCities)*len(ExpenditureGroups))
	for c, city := range records.PriceCities {
		for e, group := range ExpenditureGroups {
			// twelve warm-up months give the first year its year-on-year base
			index := make([]float64, months+12)
			index[0] = 100
			for m := 1; m < len(index); m++ {
				mom := groupDrift[e] + 0.02*float64(c%3) + (rng.Float64()-0.5)*0.4
				index[m] = index[m-1] * (1 + mom/100)
			}
			rebase(index, g.cfg.FromYear-1)

			for m := 12; m < len(index); m++ {
				year := g.cfg.FromYear + (m-12)/12
				month := (m-12)%12 + 1
				decPrev := index[m-month]
				out = append(out, records.PriceIndexRecord{
					Year:     year,
					Month:    month,
					CityCode: city.Code,
					CityName: city.Name,
					Group:    group,
					CPI:      round(index[m], 2),
					MoM:      round((index[m]/index[m-1]-1)*100, 2),
					YoY:      round((index[m]/index[m-12]-1)*100, 2),
					YtD:      round((index[m]/decPrev-1)*100, 2),
				})
			}
		}
	}
	return out
}

// rebase scales a monthly index starting in January of firstYear so the
// reference year averages 100. Outside the range the first year is used.
func rebase(index []float64, firstYear int) {
	start := (CPIReferenceYear - firstYear) * 12
	if start < 0 || start+12 > len(index) {
		start = 0
	}
	sum := 0.0
	for _, v := range index[start : start+12] {
		sum += v
	}
	scale := 100 / (sum / 12)
	for i := range index {
		index[i] *= scale
	}
}
