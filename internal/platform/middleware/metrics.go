package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Devixx/carepoint-back/internal/platform/metrics"
)

// Metrics records one observation per request labelled with the matched
// route template rather than the raw path.
func Metrics(m *metrics.HTTP) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil {
				status = 500
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.Observe(c.Request().Method, route, status, time.Since(start).Seconds())
			return err
		}
	}
}
