package forecast

import (
	"fmt"

	"github.com/soltixdb/datahub/internal/analytics"
	"github.com/soltixdb/datahub/internal/analytics/stats"
)

// LinearRegressionForecaster extrapolates a least-squares trend fitted on
// index-encoded years
type LinearRegressionForecaster struct{}

// NewLinearRegressionForecaster creates a new Linear Regression forecaster
func NewLinearRegressionForecaster() *LinearRegressionForecaster {
	return &LinearRegressionForecaster{}
}

func init() {
	RegisterForecaster("linear", NewLinearRegressionForecaster())
}

// Name returns the algorithm name
func (f *LinearRegressionForecaster) Name() string {
	return "linear"
}

// Forecast generates predictions using Linear Regression. The interval at
// index x is z*stdErr*sqrt(1 + 1/n + (x-mean_x)²/Σ(x-mean_x)²) and every point
// carries the fit's R² clamped to [0, 0.99] as its confidence.
func (f *LinearRegressionForecaster) Forecast(series analytics.Series, config ForecastConfig) (*ForecastResult, error) {
	if err := checkInput(series, config); err != nil {
		return nil, err
	}

	actual := series.Values()
	reg, ok := stats.LinearRegression(actual)
	if !ok {
		return nil, fmt.Errorf("cannot calculate regression: all x values are the same")
	}

	fitted := make([]float64, len(actual))
	residuals := make([]float64, len(actual))
	for i := range actual {
		fitted[i] = reg.Predict(float64(i))
		residuals[i] = actual[i] - fitted[i]
	}

	z := criticalValue(config.Confidence)
	confidence := clampConfidence(reg.RSquared)
	last, _ := series.Last()
	n := len(actual)

	predictions := make([]ForecastPoint, config.Horizon)
	for i := 0; i < config.Horizon; i++ {
		x := float64(n + i)
		value := reg.Predict(x)
		margin := reg.PredictionMargin(x, z)
		predictions[i] = ForecastPoint{
			Year:       last.Year + i + 1,
			Value:      value,
			Lower:      value - margin,
			Upper:      value + margin,
			Confidence: confidence,
		}
	}

	return &ForecastResult{
		Predictions: predictions,
		Fitted:      fitted,
		Residuals:   residuals,
		ModelInfo: ModelInfo{
			Algorithm: "linear",
			Parameters: map[string]interface{}{
				"slope":     reg.Slope,
				"intercept": reg.Intercept,
				"r_squared": reg.RSquared,
				"std_error": reg.StdError,
			},
			MAPE:       CalculateMAPE(actual, fitted),
			MAE:        CalculateMAE(actual, fitted),
			RMSE:       CalculateRMSE(actual, fitted),
			DataPoints: n,
		},
	}, nil
}
