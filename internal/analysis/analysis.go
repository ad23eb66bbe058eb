// Package analysis runs the fixed per-dataset analyses: three indicators and
// the composite index with its clusters, evaluated for one year.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/soltixdb/datahub/internal/aggregation"
	"github.com/soltixdb/datahub/internal/analytics"
	"github.com/soltixdb/datahub/internal/analytics/composite"
	"github.com/soltixdb/datahub/internal/catalog"
	"github.com/soltixdb/datahub/internal/methodology"
	"github.com/soltixdb/datahub/internal/records"
)

var (
	// ErrNoMethodology is returned for datasets without a registered analysis
	ErrNoMethodology = errors.New("dataset has no methodology")
	// ErrNoData is returned when the selected year has no rows
	ErrNoData = errors.New("no data for the selected year")
)

// DefaultAgeGroup is the school participation age band analysed by default
const DefaultAgeGroup = "7-12"

// convergenceMinGroups is the fewest provinces a convergence regression needs
const convergenceMinGroups = 3

// Request selects what to analyse
type Request struct {
	DatasetID string `json:"dataset_id"`
	// Year defaults to the latest year in the data
	Year int `json:"year,omitempty"`
	// AgeGroup applies to school participation only
	AgeGroup string `json:"age_group,omitempty"`
}

// Indicator is the output of one methodology analysis
type Indicator struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Formula string `json:"formula"`
	Unit    string `json:"unit,omitempty"`
	// Results holds the typed indicator rows (a slice or a single value)
	Results any `json:"results"`
	// Summary counts the results per status label
	Summary map[string]int `json:"summary,omitempty"`
}

// Result is a complete dataset analysis
type Result struct {
	DatasetID    string             `json:"dataset_id"`
	DatasetName  string             `json:"dataset_name"`
	Year         int                `json:"year"`
	AgeGroup     string             `json:"age_group,omitempty"`
	Indicators   []Indicator        `json:"indicators"`
	Composite    []composite.Result `json:"composite"`
	Components   []string           `json:"components"`
	Strategy     string             `json:"strategy"`
	Distribution map[string]int     `json:"distribution"`
}

// Indicator returns the indicator with the given id
func (r *Result) Indicator(id string) (Indicator, bool) {
	for _, ind := range r.Indicators {
		if ind.ID == id {
			return ind, true
		}
	}
	return Indicator{}, false
}

// Supported reports whether a dataset can be analysed
func Supported(datasetID string) bool {
	_, ok := runners[datasetID]
	return ok
}

// Run analyses one dataset of the bundle
func Run(bundle *records.Bundle, req Request) (*Result, error) {
	m, ok := methodology.Get(req.DatasetID)
	run, supported := runners[req.DatasetID]
	if !ok || !supported {
		return nil, fmt.Errorf("%w: %s", ErrNoMethodology, req.DatasetID)
	}
	rows, ok := bundle.Rows(req.DatasetID)
	if !ok || len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoData, req.DatasetID)
	}

	years := records.Years(rows)
	year := req.Year
	if year == 0 {
		year = years[len(years)-1]
	}
	if !slices.Contains(years, year) {
		return nil, fmt.Errorf("%w: %s has no rows for %d", ErrNoData, req.DatasetID, year)
	}

	c := &env{
		bundle: bundle,
		m:      m,
		rows:   rows,
		year:   year,
		// the composite is evaluated on data known at the selected year
		history: records.Filter{YearTo: year}.Match,
	}
	res := &Result{
		DatasetID:   req.DatasetID,
		DatasetName: m.DatasetName,
		Year:        year,
		Strategy:    m.StrategyName(),
	}
	for _, comp := range m.Composite.Components {
		res.Components = append(res.Components, comp.Name)
	}
	if req.DatasetID == catalog.SchoolParticipationID {
		res.AgeGroup = req.AgeGroup
		if res.AgeGroup == "" {
			res.AgeGroup = DefaultAgeGroup
		}
		c.ageGroup = res.AgeGroup
	}

	inputs, err := run(c, res)
	if err != nil {
		return nil, err
	}
	scores, err := composite.Build(inputs, m.Spec())
	if err != nil {
		return nil, fmt.Errorf("failed to build composite for %s: %w", req.DatasetID, err)
	}
	res.Composite = scores
	res.Distribution = composite.Distribution(scores)
	if _, ok := m.Analysis(methodology.CompositePerformance); ok {
		res.Indicators = append(res.Indicators, c.indicator(methodology.CompositePerformance, scores,
			statuses(scores, func(r composite.Result) string { return r.Cluster })))
	}
	return res, nil
}

// env carries what every dataset runner needs
type env struct {
	bundle   *records.Bundle
	m        methodology.Methodology
	rows     []records.Record
	year     int
	ageGroup string
	history  func(records.Record) bool
}

// observe extracts a metric, narrowed by dims, from rows up to the selected year
func (c *env) observe(metric string, dims map[string]string) []analytics.Observation {
	m, ok := records.LookupMetric(c.m.DatasetID, metric)
	if !ok {
		return nil
	}
	var rows []records.Record
	for _, r := range c.rows {
		if c.history(r) {
			rows = append(rows, r)
		}
	}
	return records.Observations(rows, m, dims)
}

// observeYear is observe limited to the selected year
func (c *env) observeYear(metric string, dims map[string]string) []analytics.Observation {
	return analytics.ObservationsForYear(c.observe(metric, dims), c.year)
}

// series groups observations of a metric up to the selected year
func (c *env) series(metric string, dims map[string]string) analytics.GroupedSeries {
	return analytics.BuildGroupedSeries(c.observe(metric, dims))
}

// indicator wraps results with the analysis definition and a status count
func (c *env) indicator(id string, results any, labels []string) Indicator {
	a, _ := c.m.Analysis(id)
	ind := Indicator{ID: id, Name: a.Name, Formula: a.Formula, Unit: a.Unit, Results: results}
	if len(labels) > 0 {
		ind.Summary = make(map[string]int)
		for _, s := range labels {
			ind.Summary[s]++
		}
	}
	return ind
}

// runner computes the indicators of one dataset into res and returns the
// composite inputs in component order
type runner func(c *env, res *Result) ([]composite.Input, error)

var runners = map[string]runner{
	catalog.SchoolParticipationID: schoolParticipation,
	catalog.SchoolingID:           schooling,
	catalog.LifeExpectancyID:      lifeExpectancy,
	catalog.NutritionID:           nutrition,
	catalog.GRDPID:                grdp,
	catalog.PovertyID:             poverty,
	catalog.UnemploymentID:        unemployment,
}

// statuses maps results to their status labels
func statuses[T any](items []T, status func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = status(it)
	}
	return out
}

// join collects per-group component values; groups missing any component
// are left out. The result is ordered by group.
func join(columns ...map[string]float64) []composite.Input {
	if len(columns) == 0 {
		return nil
	}
	var inputs []composite.Input
	for _, group := range aggregation.Keys(columns[0]) {
		values := make([]float64, 0, len(columns))
		for _, col := range columns {
			v, ok := col[group]
			if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
				break
			}
			values = append(values, v)
		}
		if len(values) == len(columns) {
			inputs = append(inputs, composite.Input{Group: group, Values: values})
		}
	}
	return inputs
}

func byGroup(observations []analytics.Observation) map[string]float64 {
	out := make(map[string]float64, len(observations))
	for _, o := range observations {
		out[o.Group] = o.Value
	}
	return out
}
