package services

import (
	"context"
	"errors"
	"time"

	"github.com/soltixdb/datahub/internal/analysis"
	"github.com/soltixdb/datahub/internal/events"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/methodology"
	"github.com/soltixdb/datahub/internal/store"
)

// AnalysisCompletedEvent is the payload of analysis.completed
type AnalysisCompletedEvent struct {
	Year         int            `json:"year"`
	AgeGroup     string         `json:"age_group,omitempty"`
	Strategy     string         `json:"strategy"`
	Groups       int            `json:"groups"`
	Distribution map[string]int `json:"distribution"`
	LatencyMs    int64          `json:"latency_ms"`
}

// AnalyticsService runs the per-dataset methodology analyses
type AnalyticsService struct {
	logger *logging.Logger
	store  *store.Store
	bus    *events.Bus
}

// NewAnalyticsService creates a new AnalyticsService. bus may be nil.
func NewAnalyticsService(logger *logging.Logger, st *store.Store, bus *events.Bus) *AnalyticsService {
	return &AnalyticsService{logger: logger, store: st, bus: bus}
}

// Analyze computes the three indicators and the composite index of a
// dataset for one year
func (s *AnalyticsService) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	start := time.Now()

	if _, err := s.store.Catalog().Get(req.DatasetID); err != nil {
		return nil, lookupError(req.DatasetID, err)
	}

	result, err := analysis.Run(s.store.Bundle(), req)
	switch {
	case errors.Is(err, analysis.ErrNoMethodology):
		return nil, NewServiceErrorWithDetails(CodeNoMethodology, "dataset has no analysis methodology",
			map[string]interface{}{"dataset_id": req.DatasetID, "supported": methodology.DatasetIDs()})
	case errors.Is(err, analysis.ErrNoData):
		return nil, NewServiceErrorWithDetails(CodeNoData, err.Error(),
			map[string]interface{}{"dataset_id": req.DatasetID, "year": req.Year})
	case err != nil:
		return nil, err
	}

	latency := time.Since(start)
	logging.FromContext(ctx).Info("Analysis completed",
		"dataset_id", req.DatasetID,
		"year", result.Year,
		"strategy", result.Strategy,
		"groups", len(result.Composite),
		"latency_ms", latency.Milliseconds())

	if s.bus != nil {
		s.bus.Emit(ctx, events.AnalysisCompleted, req.DatasetID, AnalysisCompletedEvent{
			Year:         result.Year,
			AgeGroup:     result.AgeGroup,
			Strategy:     result.Strategy,
			Groups:       len(result.Composite),
			Distribution: result.Distribution,
			LatencyMs:    latency.Milliseconds(),
		})
	}
	return result, nil
}

// Methodology returns the thresholds, weights and clustering used for a
// dataset
func (s *AnalyticsService) Methodology(id string) (*methodology.Methodology, error) {
	if _, err := s.store.Catalog().Get(id); err != nil {
		return nil, lookupError(id, err)
	}
	m, ok := methodology.Get(id)
	if !ok {
		return nil, NewServiceErrorWithDetails(CodeNoMethodology, "dataset has no analysis methodology",
			map[string]interface{}{"dataset_id": id, "supported": methodology.DatasetIDs()})
	}
	return &m, nil
}
