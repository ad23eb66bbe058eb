// Package forecast projects yearly series a few periods ahead with a
// prediction interval. Forecasters are registered by name; "linear" is the
// default used by the service.
package forecast

import (
	"fmt"
	"math"
	"slices"

	"github.com/soltixdb/datahub/internal/analytics"
)

// DefaultAlgorithm is the forecaster used when none is requested
const DefaultAlgorithm = "linear"

// MinPoints is the shortest series any forecaster will project
const MinPoints = 3

// maxConfidence caps the reported confidence of a fit
const maxConfidence = 0.99

// ForecastPoint is a single projected year
type ForecastPoint struct {
	Year       int     `json:"year"`
	Value      float64 `json:"value"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Confidence float64 `json:"confidence"`
}

// ModelInfo contains metadata about the forecast model
type ModelInfo struct {
	Algorithm  string                 `json:"algorithm"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	MAPE       float64                `json:"mape,omitempty"` // Mean Absolute Percentage Error
	MAE        float64                `json:"mae,omitempty"`  // Mean Absolute Error
	RMSE       float64                `json:"rmse,omitempty"` // Root Mean Squared Error
	DataPoints int                    `json:"data_points"`
}

// ForecastResult contains the forecast predictions and model information
type ForecastResult struct {
	Predictions []ForecastPoint `json:"predictions"`
	Fitted      []float64       `json:"fitted,omitempty"`
	Residuals   []float64       `json:"residuals,omitempty"`
	ModelInfo   ModelInfo       `json:"model_info"`
}

// ForecastConfig holds configuration for forecasting
type ForecastConfig struct {
	Horizon       int     // Number of years to project
	Alpha         float64 // Level smoothing factor for holt (0-1)
	Beta          float64 // Trend smoothing factor for holt (0-1)
	Confidence    float64 // Prediction interval level (0.90, 0.95, 0.99)
	MinDataPoints int     // Minimum data points required
}

// DefaultForecastConfig returns default forecast configuration
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		Horizon:       3,
		Alpha:         0.5,
		Beta:          0.3,
		Confidence:    0.95,
		MinDataPoints: MinPoints,
	}
}

// Forecaster interface for all forecasting algorithms
type Forecaster interface {
	// Name returns the algorithm name
	Name() string
	// Forecast projects the series Horizon years past its last year
	Forecast(series analytics.Series, config ForecastConfig) (*ForecastResult, error)
}

// Registry holds available forecasters
var forecasterRegistry = make(map[string]Forecaster)

// RegisterForecaster adds a forecaster to the registry
func RegisterForecaster(name string, forecaster Forecaster) {
	forecasterRegistry[name] = forecaster
}

// GetForecaster returns a forecaster by name
func GetForecaster(name string) (Forecaster, error) {
	if forecaster, ok := forecasterRegistry[name]; ok {
		return forecaster, nil
	}
	return nil, fmt.Errorf("unknown forecaster: %s", name)
}

// ListForecasters returns the registered forecaster names in order
func ListForecasters() []string {
	names := make([]string, 0, len(forecasterRegistry))
	for name := range forecasterRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Forecast projects series `periods` years ahead with the linear forecaster
// and a 95% prediction interval. It returns an empty slice when periods <= 0
// or the series has fewer than three points.
func Forecast(series analytics.Series, periods int) []ForecastPoint {
	if periods <= 0 || len(series) < MinPoints {
		return []ForecastPoint{}
	}
	cfg := DefaultForecastConfig()
	cfg.Horizon = periods

	result, err := NewLinearRegressionForecaster().Forecast(series, cfg)
	if err != nil {
		return []ForecastPoint{}
	}
	return result.Predictions
}

// checkInput validates the series against the config
func checkInput(series analytics.Series, config ForecastConfig) error {
	minPoints := max(config.MinDataPoints, MinPoints)
	if len(series) < minPoints {
		return fmt.Errorf("insufficient data points: need %d, have %d", minPoints, len(series))
	}
	if config.Horizon < 0 {
		return fmt.Errorf("invalid horizon: %d", config.Horizon)
	}
	return nil
}

// CalculateMAPE calculates Mean Absolute Percentage Error
func CalculateMAPE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	count := 0
	for i := range actual {
		if actual[i] != 0 {
			sum += math.Abs((actual[i] - predicted[i]) / actual[i])
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return (sum / float64(count)) * 100
}

// CalculateMAE calculates Mean Absolute Error
func CalculateMAE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// CalculateRMSE calculates Root Mean Squared Error
func CalculateRMSE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// criticalValue returns the normal quantile for a two-sided interval
func criticalValue(confidence float64) float64 {
	switch {
	case confidence >= 0.99:
		return 2.576
	case confidence >= 0.95:
		return 1.96
	case confidence >= 0.90:
		return 1.645
	default:
		return 1.96
	}
}

func clampConfidence(v float64) float64 {
	return math.Max(0, math.Min(maxConfidence, v))
}
