package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/datahub/internal/services"
)

// Chart kinds served by /chart.png
const (
	ChartSeries      = "series"
	ChartRanking     = "ranking"
	ChartCorrelation = "correlation"
)

func forecastRequest(c *fiber.Ctx) (*services.ForecastRequest, error) {
	ints, err := queryInts(c, "periods", "holdout")
	if err != nil {
		return nil, err
	}
	return &services.ForecastRequest{
		DatasetID:  c.Params("id"),
		Metric:     c.Query("metric"),
		Group:      c.Query("group"),
		Periods:    ints[0],
		Holdout:    ints[1],
		Algorithm:  c.Query("algorithm"),
		Dimensions: dimensions(c),
	}, nil
}

// Forecast handles GET /v1/datasets/:id/forecast
// Query: metric, group, periods, algorithm (linear, holt), holdout, dim.<name>
func (h *Handler) Forecast(c *fiber.Ctx) error {
	req, err := forecastRequest(c)
	if err != nil {
		return err
	}

	resp, err := h.forecastService.Execute(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Chart handles GET /v1/datasets/:id/chart.png
// kind=series (default) draws the history and forecast of a metric,
// kind=ranking draws the ranking bars and kind=correlation a scatter of x
// against y.
func (h *Handler) Chart(c *fiber.Ctx) error {
	var (
		png []byte
		err error
	)

	switch kind := c.Query("kind", ChartSeries); kind {
	case ChartSeries:
		var req *services.ForecastRequest
		if req, err = forecastRequest(c); err == nil {
			png, err = h.forecastService.Chart(c.UserContext(), req)
		}
	case ChartRanking:
		var year int
		if year, err = queryInt(c, "year"); err == nil {
			png, err = h.rankingService.Chart(c.UserContext(), services.RankingRequest{
				DatasetID:  c.Params("id"),
				Primary:    c.Query("primary"),
				Secondary:  c.Query("secondary"),
				Tertiary:   c.Query("tertiary"),
				Year:       year,
				Dimensions: dimensions(c),
			})
		}
	case ChartCorrelation:
		var req services.CorrelationRequest
		if req, err = correlationRequest(c); err == nil {
			png, err = h.insightService.CorrelationChart(c.UserContext(), req)
		}
	default:
		return fiber.NewError(fiber.StatusBadRequest, "kind must be one of: series, ranking, correlation")
	}
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	return c.Send(png)
}
