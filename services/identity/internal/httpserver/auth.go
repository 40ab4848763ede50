package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ntsvetkov/identity-platform/pkg/logging"
	"github.com/ntsvetkov/identity-platform/services/identity/internal/service"
	"github.com/ntsvetkov/identity-platform/services/identity/internal/transport"
)

type AuthHTTP struct {
	Svc *service.IdentityService
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "identity_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register rejected", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, transport.MessageResponse{Success: false, Message: "invalid request body"})
	}

	req.Normalize()
	if msg := req.Validate(); msg != "" {
		l.Warn("register rejected", "status", 400, "reason", msg)
		return c.JSON(http.StatusBadRequest, transport.MessageResponse{Success: false, Message: msg})
	}

	res, err := h.Svc.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			l.Warn("register rejected", "status", 400, "reason", "duplicate user")
			return c.JSON(http.StatusBadRequest, transport.MessageResponse{Success: false, Message: "User already exists"})
		}
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, transport.TokenPairResponse{
		Success:      true,
		Message:      "User registered",
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "identity_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login rejected", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, transport.MessageResponse{Success: false, Message: "invalid request body"})
	}

	req.Normalize()
	if msg := req.Validate(); msg != "" {
		l.Warn("login rejected", "status", 400, "reason", msg)
		return c.JSON(http.StatusBadRequest, transport.MessageResponse{Success: false, Message: msg})
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		// One body for unknown email and wrong password; the caller
		// must not learn which factor failed.
		if errors.Is(err, service.ErrInvalidCredentials) {
			l.Warn("login rejected", "status", 400, "reason", "invalid credentials")
			return c.JSON(http.StatusBadRequest, transport.MessageResponse{Success: false, Message: "Invalid email or password"})
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, transport.TokenPairResponse{
		Success:      true,
		Message:      "User logged in",
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		UserID:       res.UserID.String(),
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "identity_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh rejected", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Refresh token is required"})
	}

	pair, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("refresh rejected", "status", 400, "reason", "missing token")
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Refresh token is required"})
		case errors.Is(err, service.ErrInvalidRefreshToken):
			l.Warn("refresh rejected", "status", 400, "reason", "invalid token")
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid refresh token"})
		default:
			return serverError(c)
		}
	}

	return c.JSON(http.StatusOK, transport.TokenPairResponse{
		Success:      true,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "identity_logout")

	var req transport.LogoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("logout rejected", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Refresh token is required"})
	}

	if err := h.Svc.Logout(ctx, req.RefreshToken); err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("logout rejected", "status", 400, "reason", "missing token")
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Refresh token is required"})
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "User logged out"})
}
