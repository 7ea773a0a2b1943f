package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/prometheus"
)

// unmatchedRoute labels requests no route matched, so probing random paths
// cannot grow the label set.
const unmatchedRoute = "unmatched"

// MetricsMiddleware counts and times every request by method, route template
// and final status. It must be the innermost global middleware: it hands a
// returned error to the error handler before reading the status.
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		if err := next(c); err != nil {
			c.Error(err)
		}

		route := c.Path()
		if route == "" || route == "/*" {
			route = unmatchedRoute
		}
		labels := []string{c.Request().Method, route, strconv.Itoa(c.Response().Status)}

		prometheus.HttpRequestsTotal.WithLabelValues(labels...).Inc()
		prometheus.HttpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return nil
	}
}
