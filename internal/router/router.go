package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/soltixdb/datahub/internal/config"
	"github.com/soltixdb/datahub/internal/events"
	"github.com/soltixdb/datahub/internal/handlers"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/middleware"
	"github.com/soltixdb/datahub/internal/store"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, st *store.Store, bus *events.Bus, cfg config.Config) *handlers.Handler {
	h := handlers.New(logger, st, bus, cfg)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
		ExposeHeaders: "X-Request-ID,Content-Disposition",
	}))
	app.Use(logging.FiberMiddleware(logger))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	// API v1 routes (protected by API key)
	v1 := app.Group("/v1", middleware.APIKeyAuth(logger, cfg.Auth))

	// Catalog and rows
	v1.Get("/datasets", h.ListDatasets)
	v1.Get("/datasets/:id", h.GetDataset)
	v1.Get("/datasets/:id/records", h.Records)
	v1.Get("/datasets/:id/metrics", h.Metrics)

	// Series and statistics
	v1.Get("/datasets/:id/series", h.Series)
	v1.Get("/datasets/:id/profile", h.Profile)

	// Methodology analyses
	v1.Get("/datasets/:id/analytics", h.Analyze)
	v1.Get("/datasets/:id/methodology", h.Methodology)

	// Forecasting, insights, correlation and ranking
	v1.Get("/datasets/:id/forecast", h.Forecast)
	v1.Get("/datasets/:id/insights", h.Insights)
	v1.Get("/datasets/:id/correlation", h.Correlation)
	v1.Post("/datasets/:id/ranking", h.Ranking)
	v1.Get("/datasets/:id/chart.png", h.Chart)

	// Async exports
	v1.Post("/exports", h.CreateExport)
	v1.Get("/exports/:id", h.GetExportStatus)
	v1.Get("/exports/:id/file", h.DownloadExport)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration. Stop the returned handler
// after shutting the app down.
func New(logger *logging.Logger, st *store.Store, bus *events.Bus, cfg config.Config) (*fiber.App, *handlers.Handler) {
	app := fiber.New(fiber.Config{
		AppName:               "BPS DataHub",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		BodyLimit:             cfg.Server.BodyLimit,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	h := Setup(app, logger, st, bus, cfg)

	return app, h
}
