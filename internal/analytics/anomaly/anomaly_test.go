package anomaly

import (
	"math"
	"testing"

	"github.com/soltixdb/datahub/internal/analytics"
)

func seriesOf(values ...float64) analytics.Series {
	s := make(analytics.Series, len(values))
	for i, v := range values {
		s[i] = analytics.YearValue{Year: 2013 + i, Value: v}
	}
	return s
}

func TestDetectorRegistry(t *testing.T) {
	for _, algo := range []string{"zscore", "iqr"} {
		detector, err := GetDetector(algo)
		if err != nil {
			t.Errorf("Detector '%s' not registered: %v", algo, err)
		} else if detector.Name() != algo {
			t.Errorf("Detector name mismatch: expected '%s', got '%s'", algo, detector.Name())
		}
	}

	if _, err := GetDetector("unknown"); err == nil {
		t.Error("Expected error for unknown detector")
	}

	names := ListDetectors()
	if len(names) != 2 || names[0] != "iqr" || names[1] != "zscore" {
		t.Errorf("Expected sorted [iqr zscore], got %v", names)
	}
}

func TestZScoreDetector_Spike(t *testing.T) {
	series := seriesOf(10, 10.5, 9.8, 10.2, 10.1, 9.9, 10.3, 30)

	results := (&ZScoreDetector{}).Detect(series, DefaultConfig())
	if len(results) != 1 {
		t.Fatalf("Expected 1 anomaly, got %d", len(results))
	}
	if results[0].Index != 7 {
		t.Errorf("Expected anomaly at index 7, got %d", results[0].Index)
	}
	if results[0].Type != AnomalyTypeSpike {
		t.Errorf("Expected spike, got %s", results[0].Type)
	}
	if results[0].Expected == nil || results[0].Expected.Max >= 30 {
		t.Errorf("Expected range should exclude the spike, got %+v", results[0].Expected)
	}
}

func TestZScoreDetector_Drop(t *testing.T) {
	series := seriesOf(50, 51, 49, 50.5, 49.5, 50, 51, 10)

	results := (&ZScoreDetector{}).Detect(series, DefaultConfig())
	if len(results) != 1 || results[0].Type != AnomalyTypeDrop {
		t.Fatalf("Expected one drop, got %+v", results)
	}
}

func TestZScoreDetector_FlatSeries(t *testing.T) {
	results := (&ZScoreDetector{}).Detect(seriesOf(5, 5, 5, 5, 5), DefaultConfig())
	if len(results) != 0 {
		t.Errorf("Flat series should have no anomalies, got %d", len(results))
	}
}

func TestZScoreDetector_InsufficientData(t *testing.T) {
	results := (&ZScoreDetector{}).Detect(seriesOf(1, 100), DefaultConfig())
	if results != nil {
		t.Errorf("Expected nil for short series, got %v", results)
	}
}

func TestIQRDetector(t *testing.T) {
	series := seriesOf(10, 11, 12, 11, 10, 12, 11, 40)

	results := (&IQRDetector{}).Detect(series, DefaultConfig())
	if len(results) != 1 {
		t.Fatalf("Expected 1 anomaly, got %d", len(results))
	}
	if results[0].Index != 7 || results[0].Type != AnomalyTypeSpike {
		t.Errorf("Unexpected result %+v", results[0])
	}
	if results[0].Score <= 0 {
		t.Errorf("Expected positive score, got %v", results[0].Score)
	}
}

func TestCalculateIQR(t *testing.T) {
	q1, q3, iqr := CalculateIQR([]float64{1, 2, 3, 4, 5, 6, 7, 8})
	if q1 >= q3 {
		t.Errorf("Expected q1 < q3, got %v, %v", q1, q3)
	}
	if math.Abs(iqr-(q3-q1)) > 1e-12 {
		t.Errorf("IQR mismatch: %v", iqr)
	}

	q1, q3, iqr = CalculateIQR(nil)
	if q1 != 0 || q3 != 0 || iqr != 0 {
		t.Error("Expected zeros for empty input")
	}
}

func TestLatestZScore(t *testing.T) {
	// mean 5, population sd 2; latest 9 gives z = 2
	series := seriesOf(2, 4, 4, 4, 5, 5, 7, 9)
	if z := LatestZScore(series); math.Abs(z-2) > 1e-9 {
		t.Errorf("Expected z 2, got %v", z)
	}
	if z := LatestZScore(nil); z != 0 {
		t.Errorf("Expected 0 for empty series, got %v", z)
	}
	if z := LatestZScore(seriesOf(3, 3, 3)); z != 0 {
		t.Errorf("Expected 0 for flat series, got %v", z)
	}
}

func TestDetectGrouped(t *testing.T) {
	grouped := analytics.GroupedSeries{
		"Bali": seriesOf(10, 10.5, 9.8, 10.2, 10.1, 9.9, 10.3, 30),
		"Aceh": seriesOf(1, 1, 1, 1),
	}

	got, err := DetectGrouped("zscore", grouped, DefaultConfig())
	if err != nil {
		t.Fatalf("DetectGrouped failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 anomaly, got %d", len(got))
	}
	if got[0].Group != "Bali" || got[0].Year != 2020 || got[0].Value != 30 || got[0].Algorithm != "zscore" {
		t.Errorf("Unexpected anomaly %+v", got[0])
	}

	if _, err := DetectGrouped("nope", grouped, DefaultConfig()); err == nil {
		t.Error("Expected error for unknown detector")
	}
}
