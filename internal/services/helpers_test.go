package services

import (
	"testing"
	"time"

	"github.com/soltixdb/datahub/internal/catalog"
	"github.com/soltixdb/datahub/internal/config"
	"github.com/soltixdb/datahub/internal/datagen"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/store"
)

// createTestStore generates a small bundle covering fromYear..toYear
func createTestStore(t *testing.T, fromYear, toYear int) *store.Store {
	t.Helper()

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	cfg := datagen.Config{Seed: 3, FromYear: fromYear, ToYear: toYear}
	bundle, err := datagen.Generate(cfg)
	if err != nil {
		t.Fatalf("Failed to generate bundle: %v", err)
	}

	return store.New(cat, bundle, store.Info{
		Source:   store.SourceGenerated,
		LoadedAt: time.Now(),
		Seed:     cfg.Seed,
		FromYear: cfg.FromYear,
		ToYear:   cfg.ToYear,
		Rows:     bundle.Counts(),
	}, logging.Nop())
}

func testAnalyticsConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		DefaultForecastPeriods: 3,
		MaxForecastPeriods:     10,
		Forecaster:             "linear",
		DefaultPageSize:        50,
		MaxPageSize:            500,
	}
}

func createTestDataService(t *testing.T) *DataService {
	t.Helper()
	return NewDataService(logging.Nop(), createTestStore(t, 2018, 2023), testAnalyticsConfig())
}

// expectCode fails unless err is a ServiceError with the given code
func expectCode(t *testing.T, err error, code string) {
	t.Helper()

	if err == nil {
		t.Fatalf("Expected error with code %s, got nil", code)
	}
	svcErr, ok := AsServiceError(err)
	if !ok {
		t.Fatalf("Expected *ServiceError, got %T: %v", err, err)
	}
	if svcErr.Code != code {
		t.Errorf("Expected code '%s', got '%s' (%s)", code, svcErr.Code, svcErr.Message)
	}
}
