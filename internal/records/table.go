package records

import (
	"strings"

	"github.com/soltixdb/datahub/internal/aggregation"
	"github.com/soltixdb/datahub/internal/catalog"
)

// Table is the rows of one dataset with their schema column names
type Table struct {
	DatasetID string
	Columns   []string
	Rows      []Record
}

// Filter selects rows. Zero fields match everything; Region matches the code
// or the name, ignoring case.
type Filter struct {
	YearFrom   int
	YearTo     int
	Region     string
	Dimensions map[string]string
}

// Match reports whether a row passes the filter. A dimension the row is not
// stratified by never excludes it.
func (f Filter) Match(r Record) bool {
	year := r.Period()
	if f.YearFrom != 0 && year < f.YearFrom {
		return false
	}
	if f.YearTo != 0 && year > f.YearTo {
		return false
	}
	if f.Region != "" {
		place := r.Place()
		if place.Code != f.Region && !strings.EqualFold(place.Name, f.Region) {
			return false
		}
	}
	for key, want := range f.Dimensions {
		if want == "" {
			continue
		}
		if got := r.Dimension(key); got != "" && !strings.EqualFold(got, want) {
			return false
		}
	}
	return true
}

// Select returns the rows passing f
func (t Table) Select(f Filter) []Record {
	return aggregation.Filter(t.Rows, f.Match)
}

// Page slices rows for offset/limit paging. A non-positive limit returns
// everything after offset.
func Page[T any](rows []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []T{}
	}
	end := len(rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return rows[offset:end]
}

// Years returns the distinct years present, ascending
func Years(rows []Record) []int {
	return aggregation.Keys(aggregation.GroupBy(rows, Record.Period))
}

// Regions returns the distinct places present, ordered by code
func Regions(rows []Record) []Region {
	byCode := make(map[string]Region)
	for _, r := range rows {
		p := r.Place()
		byCode[p.Code] = p
	}
	out := make([]Region, 0, len(byCode))
	for _, code := range aggregation.Keys(byCode) {
		out = append(out, byCode[code])
	}
	return out
}

// Bundle holds the rows of every dataset
type Bundle struct {
	SchoolParticipation []APSRecord            `json:"school_participation"`
	Schooling           []SchoolingRecord      `json:"schooling"`
	LifeExpectancy      []LifeExpectancyRecord `json:"life_expectancy"`
	Nutrition           []NutritionRecord      `json:"nutrition"`
	GRDP                []GRDPRecord           `json:"grdp"`
	GRDPSectors         []SectorRecord         `json:"grdp_sectors"`
	Unemployment        []UnemploymentRecord   `json:"unemployment"`
	PriceIndex          []PriceIndexRecord     `json:"price_index"`
	Poverty             []PovertyRecord        `json:"poverty"`
}

func rowsOf[T Record](items []T) []Record {
	out := make([]Record, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// Rows returns the records of a dataset
func (b *Bundle) Rows(datasetID string) ([]Record, bool) {
	switch datasetID {
	case catalog.SchoolParticipationID:
		return rowsOf(b.SchoolParticipation), true
	case catalog.SchoolingID:
		return rowsOf(b.Schooling), true
	case catalog.LifeExpectancyID:
		return rowsOf(b.LifeExpectancy), true
	case catalog.NutritionID:
		return rowsOf(b.Nutrition), true
	case catalog.GRDPID:
		return rowsOf(b.GRDP), true
	case catalog.UnemploymentID:
		return rowsOf(b.Unemployment), true
	case catalog.PriceIndexID:
		return rowsOf(b.PriceIndex), true
	case catalog.PovertyID:
		return rowsOf(b.Poverty), true
	}
	return nil, false
}

// Counts returns the row count per dataset id
func (b *Bundle) Counts() map[string]int {
	return map[string]int{
		catalog.SchoolParticipationID: len(b.SchoolParticipation),
		catalog.SchoolingID:           len(b.Schooling),
		catalog.LifeExpectancyID:      len(b.LifeExpectancy),
		catalog.NutritionID:           len(b.Nutrition),
		catalog.GRDPID:                len(b.GRDP),
		catalog.UnemploymentID:        len(b.Unemployment),
		catalog.PriceIndexID:          len(b.PriceIndex),
		catalog.PovertyID:             len(b.Poverty),
	}
}
