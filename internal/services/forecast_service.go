package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/soltixdb/datahub/internal/analytics"
	"github.com/soltixdb/datahub/internal/analytics/forecast"
	"github.com/soltixdb/datahub/internal/chart"
	"github.com/soltixdb/datahub/internal/config"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/records"
)

// nationalGroup labels the series averaged across all groups
const nationalGroup = "Indonesia"

// ForecastService handles forecasting business logic
type ForecastService struct {
	logger *logging.Logger
	data   *DataService
	cfg    config.AnalyticsConfig
}

// NewForecastService creates a new ForecastService
func NewForecastService(logger *logging.Logger, data *DataService, cfg config.AnalyticsConfig) *ForecastService {
	return &ForecastService{logger: logger, data: data, cfg: cfg}
}

// ForecastRequest represents a forecast request
type ForecastRequest struct {
	DatasetID string
	Metric    string
	// Group is a province or city; empty forecasts the mean across groups
	Group      string
	Periods    int
	Algorithm  string
	Dimensions map[string]string
	// Holdout > 0 back-tests the model on the last Holdout years
	Holdout int
}

// ForecastResponse represents the complete forecast response
type ForecastResponse struct {
	DatasetID   string                   `json:"dataset_id"`
	Metric      records.Metric           `json:"metric"`
	Group       string                   `json:"group"`
	History     analytics.Series         `json:"history"`
	Predictions []forecast.ForecastPoint `json:"predictions"`
	ModelInfo   *forecast.ModelInfo      `json:"model_info,omitempty"`
	Evaluation  *forecast.Evaluation     `json:"evaluation,omitempty"`
}

// Execute projects a metric series forward. A series shorter than
// forecast.MinPoints yields no predictions rather than an error.
func (s *ForecastService) Execute(ctx context.Context, req *ForecastRequest) (*ForecastResponse, error) {
	startExec := time.Now()

	periods, err := s.periods(req.Periods)
	if err != nil {
		return nil, err
	}

	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = s.cfg.Forecaster
	}
	if algorithm == "" {
		algorithm = forecast.DefaultAlgorithm
	}
	forecaster, err := forecast.GetForecaster(algorithm)
	if err != nil {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest, err.Error(),
			map[string]interface{}{"available_algorithms": forecast.ListForecasters()})
	}

	metric, group, history, err := s.history(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &ForecastResponse{
		DatasetID:   req.DatasetID,
		Metric:      metric,
		Group:       group,
		History:     history,
		Predictions: []forecast.ForecastPoint{},
	}

	cfg := forecast.DefaultForecastConfig()
	cfg.Horizon = periods
	if history.Len() >= forecast.MinPoints {
		result, err := forecaster.Forecast(history, cfg)
		if err != nil {
			return nil, NewServiceError(CodeInvalidRequest, err.Error())
		}
		resp.Predictions = result.Predictions
		resp.ModelInfo = &result.ModelInfo
	}

	if req.Holdout > 0 {
		eval, err := forecast.Evaluate(forecaster, history, req.Holdout, cfg)
		if err != nil {
			return nil, NewServiceErrorWithDetails(CodeInvalidRequest, err.Error(),
				map[string]interface{}{"holdout": req.Holdout, "data_points": history.Len()})
		}
		resp.Evaluation = eval
	}

	s.logger.Info("Forecast completed",
		"dataset_id", req.DatasetID,
		"metric", metric.Name,
		"group", group,
		"algorithm", algorithm,
		"periods", periods,
		"predictions", len(resp.Predictions),
		"latency_ms", time.Since(startExec).Milliseconds())

	return resp, nil
}

// Chart renders the history and forecast of a request as a PNG
func (s *ForecastService) Chart(ctx context.Context, req *ForecastRequest) ([]byte, error) {
	resp, err := s.Execute(ctx, req)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%s - %s", resp.Metric.Description, resp.Group)
	var buf bytes.Buffer
	if err := chart.SeriesPNG(&buf, title, resp.Metric.Unit, resp.History, resp.Predictions); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ForecastService) periods(requested int) (int, error) {
	switch {
	case requested < 0:
		return 0, NewServiceError(CodeInvalidRequest, "periods must not be negative")
	case requested == 0:
		if s.cfg.DefaultForecastPeriods > 0 {
			return s.cfg.DefaultForecastPeriods, nil
		}
		return 1, nil
	case s.cfg.MaxForecastPeriods > 0 && requested > s.cfg.MaxForecastPeriods:
		return 0, NewServiceErrorWithDetails(CodeInvalidRequest, "periods exceeds the maximum",
			map[string]interface{}{"periods": requested, "max_periods": s.cfg.MaxForecastPeriods})
	}
	return requested, nil
}

// history resolves the series to forecast: one group's, or the mean across
// groups
func (s *ForecastService) history(ctx context.Context, req *ForecastRequest) (records.Metric, string, analytics.Series, error) {
	series, err := s.data.Series(ctx, SeriesRequest{
		DatasetID:  req.DatasetID,
		Metric:     req.Metric,
		Group:      req.Group,
		Dimensions: req.Dimensions,
	})
	if err != nil {
		return records.Metric{}, "", nil, err
	}

	group := nationalGroup
	if req.Group != "" {
		for key := range series.Groups {
			group = key
		}
	}
	return series.Metric, group, series.Aggregate, nil
}
