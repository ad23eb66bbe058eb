package services

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/soltixdb/datahub/internal/aggregation"
	"github.com/soltixdb/datahub/internal/analytics"
	"github.com/soltixdb/datahub/internal/analytics/anomaly"
	"github.com/soltixdb/datahub/internal/analytics/stats"
	"github.com/soltixdb/datahub/internal/catalog"
	"github.com/soltixdb/datahub/internal/config"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/methodology"
	"github.com/soltixdb/datahub/internal/models"
	"github.com/soltixdb/datahub/internal/records"
	"github.com/soltixdb/datahub/internal/store"
)

// profileExtremes is how many groups the profile lists at each end
const profileExtremes = 5

// DataService serves catalog metadata, rows and metric series
type DataService struct {
	logger *logging.Logger
	store  *store.Store
	cfg    config.AnalyticsConfig
}

// NewDataService creates a new DataService
func NewDataService(logger *logging.Logger, st *store.Store, cfg config.AnalyticsConfig) *DataService {
	return &DataService{logger: logger, store: st, cfg: cfg}
}

// RecordsRequest selects a page of rows
type RecordsRequest struct {
	DatasetID string
	Filter    records.Filter
	Offset    int
	Limit     int
}

// SeriesRequest selects the grouped series of one metric
type SeriesRequest struct {
	DatasetID string
	Metric    string
	// Group keeps a single province or city, matched ignoring case
	Group string
	// Reducer collapses all groups into the aggregate series; mean by default
	Reducer    string
	Dimensions map[string]string
	YearFrom   int
	YearTo     int
}

// SeriesResponse is the grouped series of a metric plus the series reduced
// across groups
type SeriesResponse struct {
	DatasetID string                  `json:"dataset_id"`
	Metric    records.Metric          `json:"metric"`
	Reducer   aggregation.Reducer     `json:"reducer"`
	Groups    analytics.GroupedSeries `json:"groups"`
	Aggregate analytics.Series        `json:"aggregate"`
}

// ProfileRequest selects the year profile of one metric
type ProfileRequest struct {
	DatasetID  string
	Metric     string
	Year       int // defaults to the latest year
	Dimensions map[string]string
}

// ProfileResponse describes the distribution of a metric across groups in
// one year
type ProfileResponse struct {
	DatasetID string                  `json:"dataset_id"`
	Metric    records.Metric          `json:"metric"`
	Year      int                     `json:"year"`
	Summary   stats.Summary           `json:"summary"`
	Top       []analytics.Observation `json:"top"`
	Bottom    []analytics.Observation `json:"bottom"`
	Anomalies []anomaly.Anomaly       `json:"anomalies"`
}

// ListDatasets returns the catalog entries matching q with their row counts
func (s *DataService) ListDatasets(q catalog.Query) *models.DatasetListResponse {
	cat := s.store.Catalog()
	counts := s.store.Info().Rows

	list := cat.List(q)
	out := make([]models.DatasetSummary, len(list))
	for i, d := range list {
		out[i] = models.DatasetSummary{
			ID:          d.ID,
			Title:       d.Title,
			Category:    d.Category,
			Publisher:   d.Publisher,
			Keywords:    d.Keywords,
			Modified:    d.Modified,
			Rows:        counts[d.ID],
			HasAnalysis: methodology.Has(d.ID),
		}
	}
	return &models.DatasetListResponse{Datasets: out, Count: len(out), Categories: cat.Categories()}
}

// GetDataset returns the full metadata of a dataset
func (s *DataService) GetDataset(id string) (*catalog.Dataset, error) {
	d, err := s.store.Catalog().Get(id)
	if err != nil {
		return nil, lookupError(id, err)
	}
	return &d, nil
}

// Records returns one page of rows passing the filter
func (s *DataService) Records(ctx context.Context, req RecordsRequest) (*models.RecordsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if s.cfg.MaxPageSize > 0 && limit > s.cfg.MaxPageSize {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest, "limit exceeds the maximum page size",
			map[string]interface{}{"limit": limit, "max_limit": s.cfg.MaxPageSize})
	}
	if req.Offset < 0 {
		return nil, NewServiceError(CodeInvalidRequest, "offset must not be negative")
	}

	table, err := s.table(req.DatasetID)
	if err != nil {
		return nil, err
	}

	rows := table.Select(req.Filter)
	page := records.Page(rows, req.Offset, limit)

	logging.FromContext(ctx).Debug("Records served",
		"dataset_id", req.DatasetID,
		"total", len(rows),
		"count", len(page))

	return &models.RecordsResponse{
		DatasetID: req.DatasetID,
		Columns:   table.Columns,
		Total:     len(rows),
		Offset:    req.Offset,
		Limit:     limit,
		Count:     len(page),
		Records:   page,
	}, nil
}

// Metrics lists the metrics usable in series requests
func (s *DataService) Metrics(id string) ([]records.Metric, error) {
	if _, err := s.GetDataset(id); err != nil {
		return nil, err
	}
	return records.Metrics(id), nil
}

// Series builds the grouped series of a metric
func (s *DataService) Series(ctx context.Context, req SeriesRequest) (*SeriesResponse, error) {
	start := time.Now()

	reducer := aggregation.Mean
	if req.Reducer != "" {
		r, err := aggregation.ParseReducer(req.Reducer)
		if err != nil {
			return nil, NewServiceError(CodeInvalidRequest, err.Error())
		}
		reducer = r
	}

	metric, obs, err := s.observations(req.DatasetID, req.Metric, req.Dimensions,
		records.Filter{YearFrom: req.YearFrom, YearTo: req.YearTo})
	if err != nil {
		return nil, err
	}

	grouped := analytics.BuildGroupedSeries(obs)
	if req.Group != "" {
		key, ok := findGroup(grouped, req.Group)
		if !ok {
			return nil, NewServiceErrorWithDetails(CodeNoData, "no data for group: "+req.Group,
				map[string]interface{}{"group": req.Group})
		}
		grouped = analytics.GroupedSeries{key: grouped[key]}
	}

	// reduce the yearly group values so monthly rows count once per group
	annual := make([]analytics.Observation, 0, len(obs))
	for group, series := range grouped {
		for _, p := range series {
			annual = append(annual, analytics.Observation{Year: p.Year, Group: group, Value: p.Value})
		}
	}
	byYear := aggregation.AggregateBy(annual,
		func(o analytics.Observation) int { return o.Year },
		func(o analytics.Observation) float64 { return o.Value },
		reducer)
	aggregate := make(analytics.Series, 0, len(byYear))
	for _, year := range aggregation.Keys(byYear) {
		aggregate = append(aggregate, analytics.YearValue{Year: year, Value: byYear[year]})
	}

	logging.FromContext(ctx).Info("Series built",
		"dataset_id", req.DatasetID,
		"metric", metric.Name,
		"groups", len(grouped),
		"latency_ms", time.Since(start).Milliseconds())

	return &SeriesResponse{
		DatasetID: req.DatasetID,
		Metric:    metric,
		Reducer:   reducer,
		Groups:    grouped,
		Aggregate: aggregate,
	}, nil
}

// Profile summarises one year of a metric across groups and flags the groups
// whose latest value is anomalous against their own history
func (s *DataService) Profile(ctx context.Context, req ProfileRequest) (*ProfileResponse, error) {
	metric, obs, err := s.observations(req.DatasetID, req.Metric, req.Dimensions, records.Filter{})
	if err != nil {
		return nil, err
	}

	grouped := analytics.BuildGroupedSeries(obs)
	year := req.Year
	if year == 0 {
		year = latestYear(obs)
	}

	values := grouped.ValuesAt(year)
	if len(values) == 0 {
		return nil, NewServiceErrorWithDetails(CodeNoData, "no data for the selected year",
			map[string]interface{}{"year": year})
	}

	ranked := make([]analytics.Observation, 0, len(values))
	for _, group := range aggregation.Keys(values) {
		ranked = append(ranked, analytics.Observation{Year: year, Group: group, Value: values[group]})
	}
	slices.SortStableFunc(ranked, func(a, b analytics.Observation) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		}
		return 0
	})

	n := min(profileExtremes, len(ranked))
	bottom := slices.Clone(ranked[len(ranked)-n:])
	slices.Reverse(bottom)

	anomalies, err := anomaly.DetectGrouped("zscore", grouped, anomaly.DefaultConfig())
	if err != nil {
		return nil, err
	}
	anomalies = aggregation.Filter(anomalies, func(a anomaly.Anomaly) bool { return a.Year == year })

	logging.FromContext(ctx).Debug("Profile built", "dataset_id", req.DatasetID, "metric", metric.Name, "year", year)

	return &ProfileResponse{
		DatasetID: req.DatasetID,
		Metric:    metric,
		Year:      year,
		Summary:   stats.Describe(slices.Collect(maps.Values(values))),
		Top:       ranked[:n],
		Bottom:    bottom,
		Anomalies: anomalies,
	}, nil
}

// table resolves a dataset's rows
func (s *DataService) table(id string) (records.Table, error) {
	table, err := s.store.Table(id)
	if err != nil {
		return records.Table{}, lookupError(id, err)
	}
	return table, nil
}

// metric resolves a metric name of a dataset. An empty name selects the
// primary metric.
func (s *DataService) metric(id, name string) (records.Metric, error) {
	m, ok := records.LookupMetric(id, name)
	if !ok {
		names := make([]string, 0)
		for _, m := range records.Metrics(id) {
			names = append(names, m.Name)
		}
		return records.Metric{}, NewServiceErrorWithDetails(CodeInvalidMetric, "unknown metric: "+name,
			map[string]interface{}{"metric": name, "available_metrics": names})
	}
	return m, nil
}

// observations selects the rows passing filter and extracts one metric
func (s *DataService) observations(id, metricName string, dims map[string]string, filter records.Filter) (records.Metric, []analytics.Observation, error) {
	table, err := s.table(id)
	if err != nil {
		return records.Metric{}, nil, err
	}
	m, err := s.metric(id, metricName)
	if err != nil {
		return records.Metric{}, nil, err
	}

	obs := records.Observations(table.Select(filter), m, dims)
	if len(obs) == 0 {
		return m, nil, NewServiceError(CodeNoData, "no observations match the request")
	}
	return m, obs, nil
}

// groupedSeries is the grouped series of one metric over all years
func (s *DataService) groupedSeries(id, metricName string, dims map[string]string) (records.Metric, analytics.GroupedSeries, error) {
	m, obs, err := s.observations(id, metricName, dims, records.Filter{})
	if err != nil {
		return m, nil, err
	}
	return m, analytics.BuildGroupedSeries(obs), nil
}

// findGroup matches a group key ignoring case
func findGroup(grouped analytics.GroupedSeries, name string) (string, bool) {
	if _, ok := grouped[name]; ok {
		return name, true
	}
	for key := range grouped {
		if strings.EqualFold(key, name) {
			return key, true
		}
	}
	return "", false
}

func latestYear(obs []analytics.Observation) int {
	year := 0
	for _, o := range obs {
		year = max(year, o.Year)
	}
	return year
}
