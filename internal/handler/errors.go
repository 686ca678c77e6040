package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/IL272/Wilddict/internal/middleware"
	"github.com/IL272/Wilddict/internal/service"
)

// fail maps a service error to its HTTP response.  Anything unrecognised is
// logged and reported as a bare 500.
func fail(c echo.Context, log *zap.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateEmail):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
	case errors.Is(err, service.ErrDuplicateUsername):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username already taken"})
	case errors.Is(err, service.ErrInactiveAccount):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "inactive user"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect email or password"})
	case errors.Is(err, service.ErrUnauthenticated):
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": middleware.UnauthorizedMessage})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "word not found"})
	}
	log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
