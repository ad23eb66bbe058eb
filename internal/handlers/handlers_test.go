package handlers

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/datahub/internal/catalog"
	"github.com/soltixdb/datahub/internal/config"
	"github.com/soltixdb/datahub/internal/datagen"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/middleware"
	"github.com/soltixdb/datahub/internal/models"
	"github.com/soltixdb/datahub/internal/records"
	"github.com/soltixdb/datahub/internal/services"
	"github.com/soltixdb/datahub/internal/store"
)

// newTestApp serves a 2019-2023 bundle through every route
func newTestApp(t *testing.T) (*fiber.App, *Handler) {
	t.Helper()

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	gen := datagen.Config{Seed: 11, FromYear: 2019, ToYear: 2023}
	bundle, err := datagen.Generate(gen)
	if err != nil {
		t.Fatalf("Failed to generate bundle: %v", err)
	}
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
	cfg.Export.Workers = 1

	logger := logging.Nop()
	h := New(logger, st, nil, *cfg)
	t.Cleanup(h.Stop)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger)})
	app.Get("/health", h.Health)
	v1 := app.Group("/v1")
	v1.Get("/datasets", h.ListDatasets)
	v1.Get("/datasets/:id", h.GetDataset)
	v1.Get("/datasets/:id/records", h.Records)
	v1.Get("/datasets/:id/metrics", h.Metrics)
	v1.Get("/datasets/:id/series", h.Series)
	v1.Get("/datasets/:id/profile", h.Profile)
	v1.Get("/datasets/:id/analytics", h.Analyze)
	v1.Get("/datasets/:id/methodology", h.Methodology)
	v1.Get("/datasets/:id/forecast", h.Forecast)
	v1.Get("/datasets/:id/insights", h.Insights)
	v1.Get("/datasets/:id/correlation", h.Correlation)
	v1.Post("/datasets/:id/ranking", h.Ranking)
	v1.Get("/datasets/:id/chart.png", h.Chart)
	v1.Post("/exports", h.CreateExport)
	v1.Get("/exports/:id", h.GetExportStatus)
	v1.Get("/exports/:id/file", h.DownloadExport)
	app.Use(h.NotFound)

	return app, h
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	return resp
}

// decodeJSON checks the status and decodes the body into v
func decodeJSON(t *testing.T, resp *http.Response, status int, v interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if resp.StatusCode != status {
		t.Fatalf("Expected status %d, got %d: %s", status, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
}

func expectErrorCode(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()

	var errResp models.ErrorResponse
	decodeJSON(t, resp, status, &errResp)
	if errResp.Error.Code != code {
		t.Errorf("Expected error code '%s', got '%s' (%s)", code, errResp.Error.Code, errResp.Error.Message)
	}
}

func TestHandler_ListDatasets(t *testing.T) {
	app, _ := newTestApp(t)

	var list models.DatasetListResponse
	decodeJSON(t, doRequest(t, app, "GET", "/v1/datasets", nil), fiber.StatusOK, &list)
	if list.Count != 8 {
		t.Errorf("Expected 8 datasets, got %d", list.Count)
	}

	category := list.Datasets[0].Category
	decodeJSON(t, doRequest(t, app, "GET", "/v1/datasets?category="+category, nil), fiber.StatusOK, &list)
	for _, d := range list.Datasets {
		if d.Category != category {
			t.Errorf("Expected only category %s, got %s", category, d.Category)
		}
	}
}

func TestHandler_GetDataset(t *testing.T) {
	app, _ := newTestApp(t)

	var d catalog.Dataset
	decodeJSON(t, doRequest(t, app, "GET", "/v1/datasets/"+catalog.UnemploymentID, nil), fiber.StatusOK, &d)
	if d.ID != catalog.UnemploymentID || len(d.Schema) == 0 {
		t.Errorf("Unexpected dataset %+v", d)
	}

	expectErrorCode(t, doRequest(t, app, "GET", "/v1/datasets/bps-none-000", nil),
		fiber.StatusNotFound, services.CodeDatasetNotFound)
}

func TestHandler_Records(t *testing.T) {
	app, _ := newTestApp(t)

	var resp struct {
		Total   int              `json:"total"`
		Count   int              `json:"count"`
		Limit   int              `json:"limit"`
		Records []map[string]any `json:"records"`
	}
	target := "/v1/datasets/" + catalog.LifeExpectancyID + "/records?year=2022&limit=5"
	decodeJSON(t, doRequest(t, app, "GET", target, nil), fiber.StatusOK, &resp)
	if resp.Total != len(records.Provinces) {
		t.Errorf("Expected %d rows in 2022, got %d", len(records.Provinces), resp.Total)
	}
	if resp.Count != 5 || len(resp.Records) != 5 {
		t.Errorf("Expected 5 records, got %d", resp.Count)
	}

	target = "/v1/datasets/" + catalog.LifeExpectancyID + "/records?province=bali"
	decodeJSON(t, doRequest(t, app, "GET", target, nil), fiber.StatusOK, &resp)
	if resp.Total != 5 {
		t.Errorf("Expected one Bali row per year, got %d", resp.Total)
	}
}

func TestHandler_Records_BadParams(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"year not a number", "/records?year=abc", fiber.StatusBadRequest, services.CodeInvalidRequest},
		{"inverted range", "/records?year_from=2023&year_to=2020", fiber.StatusBadRequest, services.CodeInvalidRequest},
		{"limit too large", "/records?limit=100000", fiber.StatusBadRequest, services.CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, "GET", "/v1/datasets/"+catalog.PovertyID+tt.target, nil)
			expectErrorCode(t, resp, tt.status, tt.code)
		})
	}
}

func TestHandler_Series(t *testing.T) {
	app, _ := newTestApp(t)

	var resp services.SeriesResponse
	target := "/v1/datasets/" + catalog.SchoolParticipationID + "/series?metric=aps&group=Aceh&dim.age_group=13-15"
	decodeJSON(t, doRequest(t, app, "GET", target, nil), fiber.StatusOK, &resp)
	if len(resp.Groups) != 1 {
		t.Fatalf("Expected one group, got %d", len(resp.Groups))
	}
	if resp.Aggregate.Len() != 5 {
		t.Errorf("Expected 5 years, got %d", resp.Aggregate.Len())
	}

	resp2 := doRequest(t, app, "GET", "/v1/datasets/"+catalog.PovertyID+"/series?metric=nope", nil)
	expectErrorCode(t, resp2, fiber.StatusBadRequest, services.CodeInvalidMetric)
}

func TestHandler_Profile(t *testing.T) {
	app, _ := newTestApp(t)

	var resp services.ProfileResponse
	target := "/v1/datasets/" + catalog.NutritionID + "/profile?metric=wasting&year=2021"
	decodeJSON(t, doRequest(t, app, "GET", target, nil), fiber.StatusOK, &resp)
	if resp.Year != 2021 || resp.Summary.Count != len(records.Provinces) {
		t.Errorf("Unexpected profile year %d count %d", resp.Year, resp.Summary.Count)
	}
}

func TestHandler_Analyze(t *testing.T) {
	app, _ := newTestApp(t)

	var resp struct {
		DatasetID    string           `json:"dataset_id"`
		Year         int              `json:"year"`
		AgeGroup     string           `json:"age_group"`
		Composite    []map[string]any `json:"composite"`
		Distribution map[string]int   `json:"distribution"`
	}
	target := "/v1/datasets/" + catalog.SchoolParticipationID + "/analytics?year=2022"
	decodeJSON(t, doRequest(t, app, "GET", target, nil), fiber.StatusOK, &resp)
	if resp.Year != 2022 {
		t.Errorf("Expected year 2022, got %d", resp.Year)
	}
	if resp.AgeGroup != "7-12" {
		t.Errorf("Expected default age group 7-12, got %s", resp.AgeGroup)
	}
	if len(resp.Composite) == 0 || len(resp.Distribution) == 0 {
		t.Error("Expected composite results and a cluster distribution")
	}

	expectErrorCode(t, doRequest(t, app, "GET", "/v1/datasets/"+catalog.PriceIndexID+"/analytics", nil),
		fiber.StatusNotFound, services.CodeNoMethodology)
}

func TestHandler_Methodology(t *testing.T) {
	app, _ := newTestApp(t)

	var resp map[string]any
	decodeJSON(t, doRequest(t, app, "GET", "/v1/datasets/"+catalog.GRDPID+"/methodology", nil), fiber.StatusOK, &resp)
	if len(resp) == 0 {
		t.Error("Expected a methodology document")
	}
}

func TestHandler_Forecast(t *testing.T) {
	app, _ := newTestApp(t)

	var resp services.ForecastResponse
	target := "/v1/datasets/" + catalog.UnemploymentID + "/forecast?periods=2&algorithm=holt&group=Banten"
	decodeJSON(t, doRequest(t, app, "GET", target, nil), fiber.StatusOK, &resp)
	if resp.Group != "Banten" {
		t.Errorf("Expected group Banten, got %s", resp.Group)
	}
	if len(resp.Predictions) != 2 || resp.Predictions[0].Year != 2024 {
		t.Errorf("Unexpected predictions %+v", resp.Predictions)
	}

	tests := []struct {
		name   string
		target string
		code   string
	}{
		{"periods not a number", "?periods=two", services.CodeInvalidRequest},
		{"periods over the maximum", "?periods=1000", services.CodeInvalidRequest},
		{"unknown algorithm", "?algorithm=prophet", services.CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, "GET", "/v1/datasets/"+catalog.UnemploymentID+"/forecast"+tt.target, nil)
			expectErrorCode(t, resp, fiber.StatusBadRequest, tt.code)
		})
	}
}

func TestHandler_InsightsAndCorrelation(t *testing.T) {
	app, _ := newTestApp(t)

	var insights services.InsightsResponse
	decodeJSON(t, doRequest(t, app, "GET", "/v1/datasets/"+catalog.GRDPID+"/insights", nil), fiber.StatusOK, &insights)
	if len(insights.Insights) == 0 {
		t.Error("Expected insights for a five-year series")
	}

	var corr services.CorrelationResponse
	target := "/v1/datasets/" + catalog.SchoolingID + "/correlation?x=rls&y=hls"
	decodeJSON(t, doRequest(t, app, "GET", target, nil), fiber.StatusOK, &corr)
	if len(corr.Pairs) != len(records.Provinces) || !corr.Sufficient {
		t.Errorf("Expected %d sufficient pairs, got %d", len(records.Provinces), len(corr.Pairs))
	}

	resp := doRequest(t, app, "GET", "/v1/datasets/"+catalog.SchoolingID+"/correlation?x=rls", nil)
	expectErrorCode(t, resp, fiber.StatusBadRequest, services.CodeInvalidRequest)
}

func TestHandler_Ranking(t *testing.T) {
	app, _ := newTestApp(t)

	body := RankingRequest{
		Metrics: RankingMetrics{Primary: "tpt", Secondary: "jumlah_pengangguran", Tertiary: "angkatan_kerja"},
	}
	body.Invert.Primary = true
	body.Invert.Secondary = true

	var resp services.RankingResponse
	decodeJSON(t, doRequest(t, app, "POST", "/v1/datasets/"+catalog.UnemploymentID+"/ranking", body), fiber.StatusOK, &resp)
	if len(resp.Ranked) != len(records.Provinces) {
		t.Fatalf("Expected %d ranked provinces, got %d", len(records.Provinces), len(resp.Ranked))
	}
	if resp.Ranked[0].Rank != 1 {
		t.Errorf("Expected rank 1 first, got %d", resp.Ranked[0].Rank)
	}

	bad := map[string]any{"weights": map[string]float64{"primary": 0.9, "secondary": 0.9, "tertiary": 0.9}}
	expectErrorCode(t, doRequest(t, app, "POST", "/v1/datasets/"+catalog.UnemploymentID+"/ranking", bad),
		fiber.StatusBadRequest, services.CodeInvalidRequest)
}

func TestHandler_Chart(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name  string
		query string
	}{
		{"series", "?metric=ahh_total"},
		{"ranking", "?kind=ranking"},
		{"correlation", "?kind=correlation&x=ahh_lakilaki&y=ahh_perempuan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, "GET", "/v1/datasets/"+catalog.LifeExpectancyID+"/chart.png"+tt.query, nil)
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != fiber.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, body)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
				t.Errorf("Expected image/png, got %s", ct)
			}
			if _, err := png.Decode(resp.Body); err != nil {
				t.Errorf("Expected a decodable PNG: %v", err)
			}
		})
	}

	resp := doRequest(t, app, "GET", "/v1/datasets/"+catalog.LifeExpectancyID+"/chart.png?kind=pie", nil)
	expectErrorCode(t, resp, fiber.StatusBadRequest, services.CodeInvalidRequest)
}

func TestHandler_ExportLifecycle(t *testing.T) {
	app, _ := newTestApp(t)

	var created models.ExportCreateResponse
	decodeJSON(t, doRequest(t, app, "POST", "/v1/exports", map[string]any{
		"dataset_id": catalog.PovertyID,
		"format":     "csv",
		"year_from":  2023,
	}), fiber.StatusAccepted, &created)
	if created.TaskID == "" {
		t.Fatal("Expected a task id")
	}
	if !strings.HasSuffix(created.StatusURL, "/v1/exports/"+created.TaskID) {
		t.Errorf("Unexpected status URL %s", created.StatusURL)
	}

	var status models.ExportStatusResponse
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		decodeJSON(t, doRequest(t, app, "GET", "/v1/exports/"+created.TaskID, nil), fiber.StatusOK, &status)
		if status.Status == string(models.ExportStatusCompleted) || status.Status == string(models.ExportStatusFailed) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if status.Status != string(models.ExportStatusCompleted) {
		t.Fatalf("Expected completed export, got %s (%s)", status.Status, status.Error)
	}
	if !strings.HasSuffix(status.DownloadURL, "/v1/exports/"+created.TaskID+"/file") {
		t.Errorf("Unexpected download URL %s", status.DownloadURL)
	}

	resp := doRequest(t, app, "GET", "/v1/exports/"+created.TaskID+"/file", nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, catalog.PovertyID+"_2023_all.csv") {
		t.Errorf("Unexpected Content-Disposition %q", cd)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(data), "tahun,") {
		t.Errorf("Expected a CSV header, got %q", string(data[:min(len(data), 40)]))
	}
}

func TestHandler_Export_Errors(t *testing.T) {
	app, _ := newTestApp(t)

	expectErrorCode(t, doRequest(t, app, "POST", "/v1/exports", map[string]any{"format": "csv"}),
		fiber.StatusBadRequest, services.CodeInvalidRequest)
	expectErrorCode(t, doRequest(t, app, "POST", "/v1/exports", map[string]any{"dataset_id": catalog.PovertyID, "format": "pdf"}),
		fiber.StatusBadRequest, services.CodeInvalidRequest)
	expectErrorCode(t, doRequest(t, app, "POST", "/v1/exports", map[string]any{"dataset_id": "missing"}),
		fiber.StatusNotFound, services.CodeDatasetNotFound)
	expectErrorCode(t, doRequest(t, app, "GET", "/v1/exports/unknown", nil),
		fiber.StatusNotFound, services.CodeTaskNotFound)
	expectErrorCode(t, doRequest(t, app, "GET", "/v1/exports/unknown/file", nil),
		fiber.StatusNotFound, services.CodeTaskNotFound)
}
