package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/promptgate/promptgate/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

type metricsMiddleware struct {
	logger *logrus.Logger
}

func NewMetricsMiddleware(logger *logrus.Logger) Middleware {
	return &metricsMiddleware{
		logger: logger,
	}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		prometheus.RequestTotal.WithLabelValues(statusClass(status)).Inc()
		prometheus.RequestLatency.Observe(float64(time.Since(start).Milliseconds()))

		return err
	}
}

// statusClass collapses a status code to its class ("2xx", "4xx", ...) to
// keep label cardinality down.
func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}
