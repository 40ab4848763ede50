package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ntsvetkov/identity-platform/gateway/internal/middleware"
	"github.com/ntsvetkov/identity-platform/pkg/ratelimit"
)

type Deps struct {
	IdentityURL string
	RateLimit   ratelimit.Config
}

func Register(e *echo.Echo, d *Deps) error {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, m := range middleware.Common() {
		e.Use(m)
	}

	identityProxy, err := newProxy(d.IdentityURL, "/v1", "/api")
	if err != nil {
		return err
	}

	// Admission control runs before the proxy; a rejected request
	// never reaches the identity tier.
	v1 := e.Group("/v1", ratelimit.Middleware(d.RateLimit))
	v1.Any("/auth/*", identityProxy)

	return nil
}
