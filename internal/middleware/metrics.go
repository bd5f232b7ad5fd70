package middleware

import (
	"errors"
	"strconv"
	"time"

	"catalog/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Metrics records request counts and latencies by matched route, so path
// parameters and unknown paths do not create new label values.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := responseStatus(c, err)

		route := c.Route().Path
		if status == fiber.StatusNotFound {
			route = "unmatched"
		}

		method := utils.CopyString(c.Method())
		m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// responseStatus returns the status the error handler will send for err,
// or the status already set when err is nil.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
