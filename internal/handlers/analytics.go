package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/datahub/internal/analysis"
	"github.com/soltixdb/datahub/internal/analytics/ranking"
	"github.com/soltixdb/datahub/internal/services"
)

// RankingRequest is the body of POST /v1/datasets/:id/ranking
type RankingRequest struct {
	Metrics    RankingMetrics    `json:"metrics"`
	Weights    *ranking.Weights  `json:"weights,omitempty"`
	Invert     ranking.Invert    `json:"invert"`
	Year       int               `json:"year,omitempty"`
	Dimensions map[string]string `json:"dimensions,omitempty"`
}

// RankingMetrics names the metrics in weight order. Empty names select the
// dataset's primary metric.
type RankingMetrics struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Tertiary  string `json:"tertiary"`
}

// Analyze handles GET /v1/datasets/:id/analytics?year=&age_group=
func (h *Handler) Analyze(c *fiber.Ctx) error {
	year, err := queryInt(c, "year")
	if err != nil {
		return err
	}

	result, err := h.analyticsService.Analyze(c.UserContext(), analysis.Request{
		DatasetID: c.Params("id"),
		Year:      year,
		AgeGroup:  c.Query("age_group"),
	})
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Methodology handles GET /v1/datasets/:id/methodology
func (h *Handler) Methodology(c *fiber.Ctx) error {
	m, err := h.analyticsService.Methodology(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(m)
}

// Insights handles GET /v1/datasets/:id/insights?metric=&group=&detector=
func (h *Handler) Insights(c *fiber.Ctx) error {
	resp, err := h.insightService.Insights(c.UserContext(), services.InsightRequest{
		DatasetID:  c.Params("id"),
		Metric:     c.Query("metric"),
		Group:      c.Query("group"),
		Detector:   c.Query("detector"),
		Dimensions: dimensions(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func correlationRequest(c *fiber.Ctx) (services.CorrelationRequest, error) {
	year, err := queryInt(c, "year")
	if err != nil {
		return services.CorrelationRequest{}, err
	}
	return services.CorrelationRequest{
		DatasetID:  c.Params("id"),
		X:          c.Query("x"),
		Y:          c.Query("y"),
		YDatasetID: c.Query("y_dataset"),
		Year:       year,
	}, nil
}

// Correlation handles GET /v1/datasets/:id/correlation?x=&y=&y_dataset=&year=
func (h *Handler) Correlation(c *fiber.Ctx) error {
	req, err := correlationRequest(c)
	if err != nil {
		return err
	}
	resp, err := h.insightService.Correlation(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Ranking handles POST /v1/datasets/:id/ranking
func (h *Handler) Ranking(c *fiber.Ctx) error {
	var body RankingRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
		}
	}

	resp, err := h.rankingService.Rank(c.UserContext(), body.toService(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (r RankingRequest) toService(datasetID string) services.RankingRequest {
	return services.RankingRequest{
		DatasetID:  datasetID,
		Primary:    r.Metrics.Primary,
		Secondary:  r.Metrics.Secondary,
		Tertiary:   r.Metrics.Tertiary,
		Weights:    r.Weights,
		Invert:     r.Invert,
		Year:       r.Year,
		Dimensions: r.Dimensions,
	}
}
