package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/IL272/Wilddict/internal/middleware"
	"github.com/IL272/Wilddict/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Registry *service.Registry
	Timeout  time.Duration
	Log      *zap.Logger
}

func NewAuthHandler(r *service.Registry, timeout time.Duration, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Registry: r, Timeout: timeout, Log: log}
}

// Register: create an account and return a token for it immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	s, err := h.Registry.Register(ctx, req.Email, req.Username, req.Password)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toToken(s))
}

// Login: verify the password and return a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	s, err := h.Registry.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toToken(s))
}

// Me: the authenticated account.
func (h *AuthHandler) Me(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil {
		return fail(c, h.Log, service.ErrUnauthenticated)
	}
	return c.JSON(http.StatusOK, toUser(p))
}
