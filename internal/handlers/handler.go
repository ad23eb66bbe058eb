// Package handlers exposes the services over HTTP. Handlers parse the
// request, call one service and return its result as JSON (or PNG). Errors
// are returned to the Fiber error handler.
package handlers

import (
	"github.com/soltixdb/datahub/internal/config"
	"github.com/soltixdb/datahub/internal/events"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/services"
	"github.com/soltixdb/datahub/internal/store"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	logger *logging.Logger
	store  *store.Store

	// Services
	dataService      *services.DataService
	analyticsService *services.AnalyticsService
	forecastService  *services.ForecastService
	insightService   *services.InsightService
	rankingService   *services.RankingService
	exportService    *services.ExportService
}

// New creates a new handler instance and starts the export workers. bus may
// be nil.
func New(logger *logging.Logger, st *store.Store, bus *events.Bus, cfg config.Config) *Handler {
	dataService := services.NewDataService(logger, st, cfg.Analytics)

	return &Handler{
		logger:           logger,
		store:            st,
		dataService:      dataService,
		analyticsService: services.NewAnalyticsService(logger, st, bus),
		forecastService:  services.NewForecastService(logger, dataService, cfg.Analytics),
		insightService:   services.NewInsightService(logger, dataService),
		rankingService:   services.NewRankingService(logger, dataService),
		exportService:    services.NewExportService(logger, st, bus, cfg.Export),
	}
}

// Stop stops the background export workers
func (h *Handler) Stop() {
	h.exportService.Stop()
}
