package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/datahub/internal/catalog"
	"github.com/soltixdb/datahub/internal/services"
)

// ListDatasets handles GET /v1/datasets?category=&q=
func (h *Handler) ListDatasets(c *fiber.Ctx) error {
	return c.JSON(h.dataService.ListDatasets(catalog.Query{
		Category: c.Query("category"),
		Text:     c.Query("q"),
	}))
}

// GetDataset handles GET /v1/datasets/:id
func (h *Handler) GetDataset(c *fiber.Ctx) error {
	d, err := h.dataService.GetDataset(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(d)
}

// Records handles GET /v1/datasets/:id/records
// Filters: year, year_from, year_to, province, dim.<name>; paging: limit, offset
func (h *Handler) Records(c *fiber.Ctx) error {
	filter, err := recordFilter(c)
	if err != nil {
		return err
	}
	paging, err := queryInts(c, "limit", "offset")
	if err != nil {
		return err
	}

	resp, err := h.dataService.Records(c.UserContext(), services.RecordsRequest{
		DatasetID: c.Params("id"),
		Filter:    filter,
		Limit:     paging[0],
		Offset:    paging[1],
	})
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Metrics handles GET /v1/datasets/:id/metrics
func (h *Handler) Metrics(c *fiber.Ctx) error {
	metrics, err := h.dataService.Metrics(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"dataset_id": c.Params("id"),
		"metrics":    metrics,
	})
}

// Series handles GET /v1/datasets/:id/series?metric=&group=&reducer=
func (h *Handler) Series(c *fiber.Ctx) error {
	years, err := queryInts(c, "year_from", "year_to")
	if err != nil {
		return err
	}

	resp, err := h.dataService.Series(c.UserContext(), services.SeriesRequest{
		DatasetID:  c.Params("id"),
		Metric:     c.Query("metric"),
		Group:      c.Query("group"),
		Reducer:    c.Query("reducer"),
		Dimensions: dimensions(c),
		YearFrom:   years[0],
		YearTo:     years[1],
	})
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Profile handles GET /v1/datasets/:id/profile?metric=&year=
func (h *Handler) Profile(c *fiber.Ctx) error {
	year, err := queryInt(c, "year")
	if err != nil {
		return err
	}

	resp, err := h.dataService.Profile(c.UserContext(), services.ProfileRequest{
		DatasetID:  c.Params("id"),
		Metric:     c.Query("metric"),
		Year:       year,
		Dimensions: dimensions(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
