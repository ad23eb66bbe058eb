package forecast

import (
	"math"

	"github.com/soltixdb/datahub/internal/analytics"
)

// HoltForecaster implements Holt's linear (double exponential) smoothing.
// It adapts to a changing trend faster than a global regression line.
type HoltForecaster struct{}

// NewHoltForecaster creates a new Holt forecaster
func NewHoltForecaster() *HoltForecaster {
	return &HoltForecaster{}
}

func init() {
	RegisterForecaster("holt", NewHoltForecaster())
}

// Name returns the algorithm name
func (f *HoltForecaster) Name() string {
	return "holt"
}

// Forecast generates predictions using Holt's method. The interval widens
// with sqrt(h) for the h-th step and confidence is 1-MAPE/100 clamped to
// [0, 0.99].
func (f *HoltForecaster) Forecast(series analytics.Series, config ForecastConfig) (*ForecastResult, error) {
	if err := checkInput(series, config); err != nil {
		return nil, err
	}

	alpha := config.Alpha
	if alpha <= 0 || alpha > 1 {
		alpha = 0.5
	}
	beta := config.Beta
	if beta <= 0 || beta > 1 {
		beta = 0.3
	}

	actual := series.Values()
	n := len(actual)

	level := actual[0]
	trend := actual[1] - actual[0]

	fitted := make([]float64, n)
	residuals := make([]float64, n)
	fitted[0] = actual[0]
	sumSquaredError := 0.0

	for i := 1; i < n; i++ {
		fitted[i] = level + trend
		residuals[i] = actual[i] - fitted[i]
		sumSquaredError += residuals[i] * residuals[i]

		prevLevel := level
		level = alpha*actual[i] + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
	}

	stdError := math.Sqrt(sumSquaredError / float64(n-2))
	mape := CalculateMAPE(actual, fitted)
	confidence := clampConfidence(1 - mape/100)
	z := criticalValue(config.Confidence)
	last, _ := series.Last()

	predictions := make([]ForecastPoint, config.Horizon)
	for i := 0; i < config.Horizon; i++ {
		h := float64(i + 1)
		value := level + h*trend
		margin := z * stdError * math.Sqrt(h)
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
			Algorithm:  "holt",
			Parameters: map[string]interface{}{"alpha": alpha, "beta": beta},
			MAPE:       mape,
			MAE:        CalculateMAE(actual, fitted),
			RMSE:       CalculateRMSE(actual, fitted),
			DataPoints: n,
		},
	}, nil
}
