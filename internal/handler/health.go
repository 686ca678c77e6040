package handler // package handler holds the HTTP handlers of the API

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Version is reported by Info.  It is overridden at build time with
// -ldflags "-X github.com/IL272/Wilddict/internal/handler.Version=...".
var Version = "1.0.0"

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems.  It returns a plain text "ok".
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Info describes the service at the root path.
func Info(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"name":    "WildDict API",
		"version": Version,
		"docs":    "/healthz, /metrics, /api/auth, /api/words, /api/stats",
	})
}
