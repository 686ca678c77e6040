package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/IL272/Wilddict/internal/handler"
)

// RegisterRoutes registers the routes that do not require authentication:
// service info, health check and, when metrics is non-nil, the Prometheus
// scrape endpoint.
func RegisterRoutes(e *echo.Echo, metrics echo.HandlerFunc) {
	e.GET("/", handler.Info)
	e.GET("/healthz", handler.Health)
	if metrics != nil {
		e.GET("/metrics", metrics)
	}
}

// RegisterAuth registers the authentication routes.  Register and login are
// public; /api/auth/me runs behind auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, auth echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.GET("/me", a.Me, auth)
}

// RegisterWords registers the vocabulary routes.  Every one of them runs
// behind auth, so handlers always see a resolved principal.  cache wraps
// the read-only routes and may be nil.
func RegisterWords(e *echo.Echo, w *handler.WordHandler, auth, cache echo.MiddlewareFunc) {
	g := e.Group("/api", auth)

	reads := []echo.MiddlewareFunc{}
	if cache != nil {
		reads = append(reads, cache)
	}
	g.GET("/words", w.List, reads...)
	g.GET("/words/:id", w.Get, reads...)
	g.GET("/stats", w.Stats, reads...)

	g.POST("/words", w.Create)
	g.PUT("/words/:id", w.Update)
	g.DELETE("/words/:id", w.Delete)
}
