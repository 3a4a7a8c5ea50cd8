package middleware

import (
	"strconv"
	"time"

	"github.com/bizfish/tag-a-meal-app/internal/metrics"
	"github.com/gofiber/fiber/v2"
)

// Prometheus records request counts and latency labelled by the matched
// route pattern rather than the raw path.
func (m *middleware) Prometheus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		metrics.RecordAPIRequest(c.Method(), c.Route().Path, strconv.Itoa(status), time.Since(start))
		return err
	}
}
