package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/datahub/internal/records"
)

// dimensionPrefix marks query parameters that pin a dimension, as in
// ?dim.jenis_kelamin=Perempuan
const dimensionPrefix = "dim."

// queryInt parses an optional integer query parameter. Missing means 0.
func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, key+" must be an integer")
	}
	return v, nil
}

// queryInts parses several integer parameters, stopping at the first error
func queryInts(c *fiber.Ctx, keys ...string) ([]int, error) {
	out := make([]int, len(keys))
	for i, key := range keys {
		v, err := queryInt(c, key)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// dimensions collects the dim.* query parameters
func dimensions(c *fiber.Ctx) map[string]string {
	var dims map[string]string
	for key, value := range c.Queries() {
		name, ok := strings.CutPrefix(key, dimensionPrefix)
		if !ok || name == "" {
			continue
		}
		if dims == nil {
			dims = make(map[string]string)
		}
		dims[name] = value
	}
	return dims
}

// recordFilter reads year, year_from, year_to, province and dim.* into a
// row filter. year sets both bounds.
func recordFilter(c *fiber.Ctx) (records.Filter, error) {
	years, err := queryInts(c, "year", "year_from", "year_to")
	if err != nil {
		return records.Filter{}, err
	}
	f := records.Filter{
		YearFrom:   years[1],
		YearTo:     years[2],
		Region:     c.Query("province"),
		Dimensions: dimensions(c),
	}
	if years[0] != 0 {
		f.YearFrom, f.YearTo = years[0], years[0]
	}
	if f.YearFrom != 0 && f.YearTo != 0 && f.YearTo < f.YearFrom {
		return records.Filter{}, fiber.NewError(fiber.StatusBadRequest, "year_to must not be before year_from")
	}
	return f, nil
}

// baseURL extracts the base URL from the request
func baseURL(c *fiber.Ctx) string {
	scheme := "http"
	if c.Protocol() == "https" || c.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Hostname()
}
