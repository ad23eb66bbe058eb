// Package anomaly flags years whose value sits far outside the rest of a
// series. Detectors are registered by name.
package anomaly

import (
	"fmt"
	"slices"

	"github.com/soltixdb/datahub/internal/analytics"
)

// AnomalyType represents the type of anomaly detected
type AnomalyType string

const (
	AnomalyTypeSpike   AnomalyType = "spike"   // Far above the norm
	AnomalyTypeDrop    AnomalyType = "drop"    // Far below the norm
	AnomalyTypeOutlier AnomalyType = "outlier" // Outside the expected range
)

// Anomaly is a flagged year of one group's series
type Anomaly struct {
	Group     string      `json:"group"`
	Year      int         `json:"year"`
	Value     float64     `json:"value"`
	Expected  *Range      `json:"expected,omitempty"`
	Score     float64     `json:"score"` // How anomalous (higher = more abnormal)
	Type      AnomalyType `json:"type"`
	Algorithm string      `json:"algorithm"`
}

// Range represents expected value range
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DetectorConfig holds configuration for anomaly detection
type DetectorConfig struct {
	// Threshold is the number of standard deviations for zscore and the
	// IQR multiplier for iqr
	Threshold float64

	// MinDataPoints minimum number of points required for detection
	MinDataPoints int
}

// DefaultConfig returns default detector configuration
func DefaultConfig() DetectorConfig {
	return DetectorConfig{
		Threshold:     2.0,
		MinDataPoints: 3,
	}
}

// AnomalyDetector interface for all anomaly detection algorithms
type AnomalyDetector interface {
	// Name returns the algorithm name
	Name() string

	// Detect returns the indices of anomalous points and their scores
	Detect(series analytics.Series, config DetectorConfig) []AnomalyResult
}

// AnomalyResult contains detection result for a single point
type AnomalyResult struct {
	Index    int         // Index in the series
	Score    float64     // Anomaly score
	Type     AnomalyType // Type of anomaly
	Expected *Range      // Expected range
}

// Registry holds available anomaly detectors
var detectorRegistry = make(map[string]AnomalyDetector)

// RegisterDetector adds a detector to the registry
func RegisterDetector(name string, detector AnomalyDetector) {
	detectorRegistry[name] = detector
}

// GetDetector returns a detector by name
func GetDetector(name string) (AnomalyDetector, error) {
	if detector, ok := detectorRegistry[name]; ok {
		return detector, nil
	}
	return nil, fmt.Errorf("unknown anomaly detector: %s", name)
}

// ListDetectors returns the registered detector names in order
func ListDetectors() []string {
	names := make([]string, 0, len(detectorRegistry))
	for name := range detectorRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DetectGrouped runs the named detector over every group and returns the
// anomalies ordered by group, then year
func DetectGrouped(algorithm string, grouped analytics.GroupedSeries, config DetectorConfig) ([]Anomaly, error) {
	detector, err := GetDetector(algorithm)
	if err != nil {
		return nil, err
	}

	var out []Anomaly
	for _, group := range grouped.Groups() {
		s := grouped[group]
		for _, r := range detector.Detect(s, config) {
			out = append(out, Anomaly{
				Group:     group,
				Year:      s[r.Index].Year,
				Value:     s[r.Index].Value,
				Expected:  r.Expected,
				Score:     r.Score,
				Type:      r.Type,
				Algorithm: detector.Name(),
			})
		}
	}
	return out, nil
}
