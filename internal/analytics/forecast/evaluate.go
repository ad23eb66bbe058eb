package forecast

import (
	"fmt"

	"github.com/soltixdb/datahub/internal/analytics"
)

// Evaluation is the result of a holdout back-test
type Evaluation struct {
	Algorithm string    `json:"algorithm"`
	Holdout   int       `json:"holdout"`
	Actual    []float64 `json:"actual"`
	Predicted []float64 `json:"predicted"`
	MAE       float64   `json:"mae"`
	MAPE      float64   `json:"mape"`
	RMSE      float64   `json:"rmse"`
}

// Evaluate trains the forecaster on all but the last `holdout` points and
// scores its projection against them
func Evaluate(f Forecaster, series analytics.Series, holdout int, config ForecastConfig) (*Evaluation, error) {
	if holdout <= 0 {
		return nil, fmt.Errorf("invalid holdout: %d", holdout)
	}
	if len(series)-holdout < MinPoints {
		return nil, fmt.Errorf("insufficient data points for holdout %d: have %d", holdout, len(series))
	}

	train := series[:len(series)-holdout]
	test := series[len(series)-holdout:]

	cfg := config
	cfg.Horizon = holdout
	result, err := f.Forecast(train, cfg)
	if err != nil {
		return nil, fmt.Errorf("backtest %s: %w", f.Name(), err)
	}

	actual := test.Values()
	predicted := make([]float64, len(result.Predictions))
	for i, p := range result.Predictions {
		predicted[i] = p.Value
	}

	return &Evaluation{
		Algorithm: f.Name(),
		Holdout:   holdout,
		Actual:    actual,
		Predicted: predicted,
		MAE:       CalculateMAE(actual, predicted),
		MAPE:      CalculateMAPE(actual, predicted),
		RMSE:      CalculateRMSE(actual, predicted),
	}, nil
}
