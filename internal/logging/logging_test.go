package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/datahub/internal/config"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.DebugLevel).With("component", "store")

	logger.Info("Loaded", "rows", 34, "error", errors.New("boom"), "took", 2*time.Second, "dangling")
	logger.Debug("Debug line")

	entries := lines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "Loaded", entries[0]["message"])
	assert.Equal(t, Service, entries[0]["service"])
	assert.Equal(t, "store", entries[0]["component"])
	assert.Equal(t, float64(34), entries[0]["rows"])
	assert.Equal(t, "boom", entries[0]["error"])
	assert.Equal(t, "2s", entries[0]["took"])
	assert.NotContains(t, entries[0], "dangling")
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.WarnLevel)
	logger.Info("hidden")
	logger.Warn("shown")
	entries := lines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "warn", entries[0]["level"])
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.InfoLevel)

	ctx := WithLogger(WithRequestID(context.Background(), "req-1"), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, Global(), FromContext(context.Background()))
	assert.Equal(t, "req-1", RequestID(ctx))

	InfoCtx(ctx, "hello")
	entries := lines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "req-1", entries[0]["request_id"])
}

func TestNewFromConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "datahub.log")
	logger, err := NewFromConfig(config.LoggingConfig{Level: "warn", Format: "json", OutputPath: path})
	require.NoError(t, err)

	logger.Info("skipped")
	logger.Error("written")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
	assert.NotContains(t, string(data), "skipped")
}

func TestFiberMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.InfoLevel)

	app := fiber.New()
	app.Use(FiberMiddleware(logger))
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/v1/datasets/:id", func(c *fiber.Ctx) error {
		assert.NotEmpty(t, RequestID(c.UserContext()))
		return c.SendStatus(fiber.StatusNotFound)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	req := httptest.NewRequest("GET", "/v1/datasets/bps-x", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "given-id", resp.Header.Get(RequestIDHeader))

	entries := lines(t, &buf)
	require.Len(t, entries, 1, "health checks are not logged")
	assert.Equal(t, "Client error", entries[0]["message"])
	assert.Equal(t, "bps-x", entries[0]["dataset_id"])
	assert.Equal(t, "given-id", entries[0]["request_id"])
	assert.Equal(t, float64(404), entries[0]["status"])
}
