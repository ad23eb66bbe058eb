package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soltixdb/datahub/internal/catalog"
	"github.com/soltixdb/datahub/internal/config"
	"github.com/soltixdb/datahub/internal/datagen"
	"github.com/soltixdb/datahub/internal/events"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/router"
	"github.com/soltixdb/datahub/internal/store"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("DataHub service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Fatal("Failed to create directories", "error", err)
	}

	// Load the catalog and the records
	cat, err := catalog.Default()
	if err != nil {
		logger.Fatal("Failed to load catalog", "error", err)
	}
	algo, err := store.ParseAlgorithm(cfg.Data.Compression)
	if err != nil {
		logger.Fatal("Invalid snapshot compression", "error", err)
	}
	st, err := store.Open(cat, store.Options{
		Generator: datagen.Config{
			Seed:     cfg.Data.Seed,
			FromYear: cfg.Data.FromYear,
			ToYear:   cfg.Data.ToYear,
		},
		SnapshotPath:  cfg.Data.SnapshotPath,
		WriteSnapshot: cfg.Data.WriteSnapshot,
		Compression:   algo,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to load data", "error", err)
	}
	info := st.Info()
	logger.Info("Data ready", "source", info.Source, "datasets", cat.Len(),
		"from_year", info.FromYear, "to_year", info.ToYear)

	// Connect to the event bus (configurable backend)
	logger.Info("Connecting to event bus", "type", cfg.Events.Type, "url", cfg.Events.URL)
	bus, err := events.Open(cfg.Events, logger)
	if err != nil {
		logger.Fatal("Failed to connect to event bus", "error", err)
	}
	defer func() { _ = bus.Close() }()
	subscribeActivityLog(logger, bus)

	// Log authentication status
	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	// Initialize router
	app, h := router.New(logger, st, bus, *cfg)

	// Start server in goroutine
	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with 10 second timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	h.Stop()

	logger.Info("Server exited")
}

// subscribeActivityLog logs every published event. Without a consumer the
// in-memory bus would fill its buffers.
func subscribeActivityLog(logger *logging.Logger, bus *events.Bus) {
	for _, t := range []events.Type{events.ExportCompleted, events.ExportFailed, events.AnalysisCompleted} {
		err := bus.Subscribe(t, func(e events.Event) error {
			logger.Info("Activity", "type", string(e.Type), "id", e.ID, "dataset_id", e.DatasetID)
			return nil
		})
		if err != nil {
			logger.Warn("Activity log not subscribed", "type", string(t), "error", err)
		}
	}
}
