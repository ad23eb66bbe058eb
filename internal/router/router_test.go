package router

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/datahub/internal/catalog"
	"github.com/soltixdb/datahub/internal/config"
	"github.com/soltixdb/datahub/internal/datagen"
	"github.com/soltixdb/datahub/internal/events"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/models"
	"github.com/soltixdb/datahub/internal/store"
)

const testAPIKey = "0123456789abcdef0123456789abcdef"

func newTestRouter(t *testing.T, auth bool) *fiber.App {
	t.Helper()

	cat, err := catalog.Default()
	require.NoError(t, err)
	gen := datagen.Config{Seed: 5, FromYear: 2021, ToYear: 2023}
	bundle, err := datagen.Generate(gen)
	require.NoError(t, err)
	st := store.New(cat, bundle, store.Info{
		Source:   store.SourceGenerated,
		LoadedAt: time.Now(),
		Seed:     gen.Seed,
		FromYear: gen.FromYear,
		ToYear:   gen.ToYear,
		Rows:     bundle.Counts(),
	}, logging.Nop())

	cfg := config.DefaultConfig()
	cfg.Export.Dir = t.TempDir()
	cfg.Auth = config.AuthConfig{Enabled: auth, APIKeys: []string{testAPIKey}}

	bus := events.NewBus(events.NewMemoryTransport(), "datahub", logging.Nop())
	app, h := New(logging.Nop(), st, bus, *cfg)
	t.Cleanup(func() {
		h.Stop()
		_ = bus.Close()
	})
	return app
}

func TestRouter_HealthWithoutKey(t *testing.T) {
	app := newTestRouter(t, true)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRouter_Auth(t *testing.T) {
	app := newTestRouter(t, true)

	tests := []struct {
		name   string
		target string
		header string
		status int
	}{
		{"missing key", "/v1/datasets", "", fiber.StatusUnauthorized},
		{"wrong key", "/v1/datasets", strings.Repeat("x", 32), fiber.StatusUnauthorized},
		{"header key", "/v1/datasets", testAPIKey, fiber.StatusOK},
		{"query key", "/v1/datasets?api_key=" + testAPIKey, "", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRouter_Routes(t *testing.T) {
	app := newTestRouter(t, false)

	tests := []struct {
		method string
		target string
		status int
	}{
		{"GET", "/v1/datasets/" + catalog.PovertyID, fiber.StatusOK},
		{"GET", "/v1/datasets/" + catalog.PovertyID + "/metrics", fiber.StatusOK},
		{"GET", "/v1/datasets/" + catalog.PovertyID + "/methodology", fiber.StatusOK},
		{"GET", "/v1/datasets/" + catalog.PovertyID + "/forecast", fiber.StatusOK},
		{"POST", "/v1/datasets/" + catalog.PovertyID + "/ranking", fiber.StatusOK},
		{"GET", "/v1/exports/none", fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil), 10000)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRouter_NotFound(t *testing.T) {
	app := newTestRouter(t, false)

	resp, err := app.Test(httptest.NewRequest("GET", "/v2/unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var errResp models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "NOT_FOUND", errResp.Error.Code)
	assert.Equal(t, "/v2/unknown", errResp.Error.Path)
}

func TestRouter_CORSPreflight(t *testing.T) {
	app := newTestRouter(t, true)

	req := httptest.NewRequest("OPTIONS", "/v1/datasets", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
