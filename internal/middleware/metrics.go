package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"steam-proxy-go/internal/metrics"
)

// MetricsMiddleware returns an Echo middleware that records Prometheus metrics
// for each inbound request, labelled by method, status and bounded path prefix.
func MetricsMiddleware(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()
			err := next(c)

			labels := []string{
				metrics.NormalizeMethod(c.Request().Method),
				strconv.Itoa(responseStatus(c, err)),
				metrics.NormalizePath(c.Request().URL.Path),
			}
			m.RequestsTotal.WithLabelValues(labels...).Inc()
			m.RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// responseStatus returns the status the client will see. An *echo.HTTPError
// is written later by the central error handler, so the recorded response
// status is not final yet.
func responseStatus(c echo.Context, err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return c.Response().Status
}
