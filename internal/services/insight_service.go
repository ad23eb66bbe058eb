package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/soltixdb/datahub/internal/aggregation"
	"github.com/soltixdb/datahub/internal/analytics"
	"github.com/soltixdb/datahub/internal/analytics/anomaly"
	"github.com/soltixdb/datahub/internal/analytics/insight"
	"github.com/soltixdb/datahub/internal/chart"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/records"
)

// InsightService generates narrative insights and correlations
type InsightService struct {
	logger *logging.Logger
	data   *DataService
}

// NewInsightService creates a new InsightService
func NewInsightService(logger *logging.Logger, data *DataService) *InsightService {
	return &InsightService{logger: logger, data: data}
}

// InsightRequest selects the series to describe
type InsightRequest struct {
	DatasetID  string
	Metric     string
	Group      string // empty describes the mean across groups
	Dimensions map[string]string
	// Detector is the anomaly algorithm run across groups (zscore, iqr)
	Detector string
}

// InsightsResponse holds the insights of one series and the anomalies found
// across all groups
type InsightsResponse struct {
	DatasetID string            `json:"dataset_id"`
	Metric    records.Metric    `json:"metric"`
	Group     string            `json:"group"`
	Insights  []insight.Insight `json:"insights"`
	Anomalies []anomaly.Anomaly `json:"anomalies"`
}

// Insights describes trend, anomaly, forecast and a recommendation for a
// series. Fewer than three points yields no insights.
func (s *InsightService) Insights(ctx context.Context, req InsightRequest) (*InsightsResponse, error) {
	start := time.Now()

	detector := req.Detector
	if detector == "" {
		detector = "zscore"
	}
	if _, err := anomaly.GetDetector(detector); err != nil {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest, err.Error(),
			map[string]interface{}{"available_detectors": anomaly.ListDetectors()})
	}

	series, err := s.data.Series(ctx, SeriesRequest{
		DatasetID:  req.DatasetID,
		Metric:     req.Metric,
		Group:      req.Group,
		Dimensions: req.Dimensions,
	})
	if err != nil {
		return nil, err
	}

	group := nationalGroup
	if req.Group != "" {
		for key := range series.Groups {
			group = key
		}
	}

	insights := insight.Generate(series.Metric.Name, series.Aggregate)
	if insights == nil {
		insights = []insight.Insight{}
	}

	anomalies, err := anomaly.DetectGrouped(detector, series.Groups, anomaly.DefaultConfig())
	if err != nil {
		return nil, err
	}
	if anomalies == nil {
		anomalies = []anomaly.Anomaly{}
	}

	s.logger.Info("Insights generated",
		"dataset_id", req.DatasetID,
		"metric", series.Metric.Name,
		"group", group,
		"insights", len(insights),
		"anomalies", len(anomalies),
		"latency_ms", time.Since(start).Milliseconds())

	return &InsightsResponse{
		DatasetID: req.DatasetID,
		Metric:    series.Metric,
		Group:     group,
		Insights:  insights,
		Anomalies: anomalies,
	}, nil
}

// CorrelationRequest pairs two metrics by group in one year. The second
// metric may come from another dataset.
type CorrelationRequest struct {
	DatasetID  string
	X          string
	Y          string
	YDatasetID string // defaults to DatasetID
	Year       int    // defaults to the latest year both metrics share
}

// CorrelationPair is one group's two values
type CorrelationPair struct {
	Group string  `json:"group"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// CorrelationResponse is a Pearson correlation across groups
type CorrelationResponse struct {
	DatasetID  string                    `json:"dataset_id"`
	YDatasetID string                    `json:"y_dataset_id"`
	Year       int                       `json:"year"`
	Report     insight.CorrelationReport `json:"report"`
	Sufficient bool                      `json:"sufficient"`
	Pairs      []CorrelationPair         `json:"pairs"`
}

// Correlation computes Pearson's r between two metrics across the groups
// that have both values in the year. Groups missing either value are left
// out.
func (s *InsightService) Correlation(ctx context.Context, req CorrelationRequest) (*CorrelationResponse, error) {
	if req.X == "" || req.Y == "" {
		return nil, NewServiceError(CodeInvalidRequest, "both x and y metrics are required")
	}
	yDataset := req.YDatasetID
	if yDataset == "" {
		yDataset = req.DatasetID
	}

	xMetric, xSeries, err := s.data.groupedSeries(req.DatasetID, req.X, nil)
	if err != nil {
		return nil, err
	}
	yMetric, ySeries, err := s.data.groupedSeries(yDataset, req.Y, nil)
	if err != nil {
		return nil, err
	}

	year := req.Year
	if year == 0 {
		year = latestSharedYear(xSeries, ySeries)
	}

	xs, ys := xSeries.ValuesAt(year), ySeries.ValuesAt(year)
	pairs := make([]CorrelationPair, 0, len(xs))
	for _, group := range aggregation.Keys(xs) {
		if y, ok := ys[group]; ok {
			pairs = append(pairs, CorrelationPair{Group: group, X: xs[group], Y: y})
		}
	}

	x := make([]float64, len(pairs))
	y := make([]float64, len(pairs))
	for i, p := range pairs {
		x[i], y[i] = p.X, p.Y
	}
	report, ok := insight.ExplainCorrelation(xMetric.Description, yMetric.Description, x, y)

	logging.FromContext(ctx).Info("Correlation computed",
		"dataset_id", req.DatasetID,
		"y_dataset_id", yDataset,
		"year", year,
		"pairs", len(pairs),
		"r", report.Correlation.R)

	return &CorrelationResponse{
		DatasetID:  req.DatasetID,
		YDatasetID: yDataset,
		Year:       year,
		Report:     report,
		Sufficient: ok,
		Pairs:      pairs,
	}, nil
}

// CorrelationChart renders the pairs of a correlation as a scatter plot
func (s *InsightService) CorrelationChart(ctx context.Context, req CorrelationRequest) ([]byte, error) {
	resp, err := s.Correlation(ctx, req)
	if err != nil {
		return nil, err
	}
	x := make([]float64, len(resp.Pairs))
	y := make([]float64, len(resp.Pairs))
	for i, p := range resp.Pairs {
		x[i], y[i] = p.X, p.Y
	}

	var buf bytes.Buffer
	title := fmt.Sprintf("%s (r = %.3f, %d)", resp.Report.Correlation.Strength, resp.Report.Correlation.R, resp.Year)
	if err := chart.ScatterPNG(&buf, title, resp.Report.X, resp.Report.Y, x, y); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// latestSharedYear is the most recent year present in every grouped series,
// or 0 when they share none
func latestSharedYear(all ...analytics.GroupedSeries) int {
	if len(all) == 0 {
		return 0
	}
	counts := make(map[int]int)
	for _, grouped := range all {
		seen := make(map[int]bool)
		for _, series := range grouped {
			for _, p := range series {
				if !seen[p.Year] {
					seen[p.Year] = true
					counts[p.Year]++
				}
			}
		}
	}
	best := 0
	for year, n := range counts {
		if n == len(all) {
			best = max(best, year)
		}
	}
	return best
}
