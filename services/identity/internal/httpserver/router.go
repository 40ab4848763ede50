package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ntsvetkov/identity-platform/pkg/ratelimit"
)

type Deps struct {
	AuthHandler *AuthHTTP

	// GeneralLimit covers every auth route; SensitiveLimit is layered
	// on top of it for registration only.
	GeneralLimit   ratelimit.Config
	SensitiveLimit ratelimit.Config
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := e.Group("/api/auth", ratelimit.Middleware(d.GeneralLimit))

	auth.POST("/register", d.AuthHandler.Register, ratelimit.Middleware(d.SensitiveLimit))
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)
}
