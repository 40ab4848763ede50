package ratelimit

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ntsvetkov/identity-platform/pkg/logging"
)

// Config drives the echo middleware for one deployed policy.
type Config struct {
	Limiter *Limiter

	// FailClosed rejects requests when the counting store is
	// unreachable. The default lets them through: availability is
	// worth more than strict limiting during a store outage.
	FailClosed bool
}

// Middleware rejects over-limit requests with 429 before any handler
// logic runs. Clients are identified by their real IP.
func Middleware(cfg Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			ok, err := cfg.Limiter.Allow(ctx, c.RealIP())
			if err != nil {
				l := logging.FromContext(ctx)
				if cfg.FailClosed {
					l.Error("rate limit store unavailable, rejecting", "error", err)
					return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Too many requests"})
				}
				l.Error("rate limit store unavailable, allowing", "error", err)
				return next(c)
			}
			if !ok {
				logging.FromContext(ctx).Warn("rate limit exceeded", "remote_ip", c.RealIP())
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Too many requests"})
			}

			return next(c)
		}
	}
}
