package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout puts a deadline on each request context. Handlers that
// exceed it get a 504 and their result is discarded; the middleware returns
// only once the handler has. Paths listed in skip (for example /metrics) run
// without a deadline.
func RequestTimeout(timeout time.Duration, skip ...string) echo.MiddlewareFunc {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipped[c.Request().URL.Path] {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return timeoutError()
				}
				return err
			case <-ctx.Done():
				// The handler still holds c. Wait for it so echo does not
				// recycle the context underneath it.
				<-done
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return timeoutError()
				}
				return ctx.Err()
			}
		}
	}
}

func timeoutError() error {
	return echo.NewHTTPError(http.StatusGatewayTimeout, "request timed out")
}
