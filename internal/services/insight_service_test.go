package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/soltixdb/datahub/internal/catalog"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/records"
)

func createTestInsightService(t *testing.T, fromYear, toYear int) *InsightService {
	t.Helper()
	data := NewDataService(logging.Nop(), createTestStore(t, fromYear, toYear), testAnalyticsConfig())
	return NewInsightService(logging.Nop(), data)
}

func TestInsightService_Insights(t *testing.T) {
	service := createTestInsightService(t, 2016, 2023)

	resp, err := service.Insights(context.Background(), InsightRequest{
		DatasetID: catalog.UnemploymentID,
		Detector:  "iqr",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Group != nationalGroup {
		t.Errorf("Expected group %s, got %s", nationalGroup, resp.Group)
	}
	if len(resp.Insights) == 0 {
		t.Fatal("Expected insights for an 8-year series")
	}
	for _, in := range resp.Insights {
		if in.Title == "" || in.Description == "" {
			t.Errorf("Expected title and description, got %+v", in)
		}
	}
	if resp.Anomalies == nil {
		t.Error("Expected an empty anomaly slice, not nil")
	}
}

func TestInsightService_Insights_ShortSeries(t *testing.T) {
	service := createTestInsightService(t, 2022, 2023)

	resp, err := service.Insights(context.Background(), InsightRequest{DatasetID: catalog.PovertyID, Group: "Bali"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Group != "Bali" {
		t.Errorf("Expected group Bali, got %s", resp.Group)
	}
	if resp.Insights == nil || len(resp.Insights) != 0 {
		t.Errorf("Expected no insights for two points, got %v", resp.Insights)
	}
}

func TestInsightService_Insights_UnknownDetector(t *testing.T) {
	service := createTestInsightService(t, 2022, 2023)

	_, err := service.Insights(context.Background(), InsightRequest{DatasetID: catalog.PovertyID, Detector: "dbscan"})
	expectCode(t, err, CodeInvalidRequest)
}

func TestInsightService_Correlation(t *testing.T) {
	service := createTestInsightService(t, 2020, 2023)

	resp, err := service.Correlation(context.Background(), CorrelationRequest{
		DatasetID: catalog.LifeExpectancyID,
		X:         "ahh_lakilaki",
		Y:         "ahh_perempuan",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Year != 2023 {
		t.Errorf("Expected latest shared year 2023, got %d", resp.Year)
	}
	if resp.YDatasetID != catalog.LifeExpectancyID {
		t.Errorf("Expected y dataset to default to x dataset, got %s", resp.YDatasetID)
	}
	if len(resp.Pairs) != len(records.Provinces) {
		t.Errorf("Expected %d pairs, got %d", len(records.Provinces), len(resp.Pairs))
	}
	if !resp.Sufficient {
		t.Error("Expected enough pairs for a correlation")
	}
	if r := resp.Report.Correlation.R; r < -1 || r > 1 {
		t.Errorf("Expected r in [-1, 1], got %v", r)
	}
	if resp.Report.Interpretation == "" {
		t.Error("Expected an interpretation")
	}
}

func TestInsightService_Correlation_CrossDataset(t *testing.T) {
	service := createTestInsightService(t, 2021, 2023)

	resp, err := service.Correlation(context.Background(), CorrelationRequest{
		DatasetID:  catalog.PovertyID,
		X:          "persentase_miskin",
		YDatasetID: catalog.UnemploymentID,
		Y:          "tpt",
		Year:       2022,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Year != 2022 {
		t.Errorf("Expected year 2022, got %d", resp.Year)
	}
	if len(resp.Pairs) != len(records.Provinces) {
		t.Errorf("Expected provinces to pair up, got %d pairs", len(resp.Pairs))
	}
}

func TestInsightService_Correlation_Errors(t *testing.T) {
	service := createTestInsightService(t, 2022, 2023)
	ctx := context.Background()

	_, err := service.Correlation(ctx, CorrelationRequest{DatasetID: catalog.PovertyID, X: "persentase_miskin"})
	expectCode(t, err, CodeInvalidRequest)

	_, err = service.Correlation(ctx, CorrelationRequest{DatasetID: catalog.PovertyID, X: "gini", Y: "persentase_miskin"})
	expectCode(t, err, CodeInvalidMetric)
}

func TestInsightService_CorrelationChart(t *testing.T) {
	service := createTestInsightService(t, 2022, 2023)

	png, err := service.CorrelationChart(context.Background(), CorrelationRequest{
		DatasetID: catalog.SchoolingID,
		X:         "rls",
		Y:         "hls",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("Expected PNG output")
	}
}
