package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/soltixdb/datahub/internal/aggregation"
	"github.com/soltixdb/datahub/internal/analytics"
	"github.com/soltixdb/datahub/internal/analytics/ranking"
	"github.com/soltixdb/datahub/internal/chart"
	"github.com/soltixdb/datahub/internal/logging"
)

// RankingService ranks groups on three weighted metrics
type RankingService struct {
	logger *logging.Logger
	data   *DataService
}

// NewRankingService creates a new RankingService
func NewRankingService(logger *logging.Logger, data *DataService) *RankingService {
	return &RankingService{logger: logger, data: data}
}

// RankingRequest names the three metrics in weight order
type RankingRequest struct {
	DatasetID string
	Primary   string
	Secondary string
	Tertiary  string
	// Weights default to ranking.DefaultWeights
	Weights    *ranking.Weights
	Invert     ranking.Invert
	Year       int // defaults to the latest year all three metrics share
	Dimensions map[string]string
}

// RankingResponse is a complete ranking
type RankingResponse struct {
	DatasetID    string                  `json:"dataset_id"`
	Year         int                     `json:"year"`
	Metrics      [3]string               `json:"metrics"`
	Weights      ranking.Weights         `json:"weights"`
	Invert       ranking.Invert          `json:"invert"`
	Ranked       []ranking.Ranked        `json:"ranked"`
	Distribution map[ranking.Cluster]int `json:"distribution"`
}

// Rank scores every group that has all three metrics in the year
func (s *RankingService) Rank(ctx context.Context, req RankingRequest) (*RankingResponse, error) {
	start := time.Now()

	weights := ranking.DefaultWeights()
	if req.Weights != nil {
		weights = *req.Weights
	}
	if err := weights.Validate(); err != nil {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest, err.Error(),
			map[string]interface{}{"weights": weights})
	}

	names := [3]string{req.Primary, req.Secondary, req.Tertiary}
	var grouped [3]analytics.GroupedSeries
	for i, name := range names {
		m, g, err := s.data.groupedSeries(req.DatasetID, name, req.Dimensions)
		if err != nil {
			return nil, err
		}
		names[i] = m.Name
		grouped[i] = g
	}

	year := req.Year
	if year == 0 {
		year = latestSharedYear(grouped[0], grouped[1], grouped[2])
	}

	primary := grouped[0].ValuesAt(year)
	secondary := grouped[1].ValuesAt(year)
	tertiary := grouped[2].ValuesAt(year)

	inputs := make([]ranking.Input, 0, len(primary))
	for _, group := range aggregation.Keys(primary) {
		sv, ok2 := secondary[group]
		tv, ok3 := tertiary[group]
		if !ok2 || !ok3 {
			continue
		}
		inputs = append(inputs, ranking.Input{Group: group, Primary: primary[group], Secondary: sv, Tertiary: tv})
	}
	if len(inputs) == 0 {
		return nil, NewServiceErrorWithDetails(CodeNoData, "no group has all three metrics in the selected year",
			map[string]interface{}{"year": year})
	}

	ranked, err := ranking.Rank(inputs, weights, req.Invert)
	if err != nil {
		return nil, err
	}

	distribution := make(map[ranking.Cluster]int)
	for _, r := range ranked {
		distribution[r.Cluster]++
	}

	logging.FromContext(ctx).Info("Ranking completed",
		"dataset_id", req.DatasetID,
		"year", year,
		"groups", len(ranked),
		"latency_ms", time.Since(start).Milliseconds())

	return &RankingResponse{
		DatasetID:    req.DatasetID,
		Year:         year,
		Metrics:      names,
		Weights:      weights,
		Invert:       req.Invert,
		Ranked:       ranked,
		Distribution: distribution,
	}, nil
}

// Chart renders a ranking as bars coloured by cluster
func (s *RankingService) Chart(ctx context.Context, req RankingRequest) ([]byte, error) {
	resp, err := s.Rank(ctx, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	title := fmt.Sprintf("Peringkat %s %d", resp.DatasetID, resp.Year)
	if err := chart.RankingPNG(&buf, title, resp.Ranked); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}
