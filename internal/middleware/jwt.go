package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/IL272/Wilddict/internal/model"
	"github.com/IL272/Wilddict/internal/service"
)

// UnauthorizedMessage is the body of every 401.  Missing, malformed,
// expired and unknown-subject tokens are indistinguishable to the client.
const UnauthorizedMessage = "could not validate credentials"

// TokenResolver maps a raw bearer token to its account.
type TokenResolver interface {
	Resolve(ctx context.Context, raw string) (*model.Account, error)
}

// Authenticate returns an Echo middleware that resolves the Bearer token of
// each request to an account and stores it with SetPrincipal.  Requests that
// cannot be resolved are answered with 401 before reaching the handler.
func Authenticate(r TokenResolver, timeout time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			p, err := r.Resolve(ctx, raw)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					return unauthorized(c)
				}
				log.Error("resolve principal failed", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			SetPrincipal(c, p)
			return next(c)
		}
	}
}

// bearerToken extracts the token from an Authorization header.  The scheme
// is matched case-insensitively.
func bearerToken(h string) (string, bool) {
	scheme, tok, found := strings.Cut(strings.TrimSpace(h), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

func unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": UnauthorizedMessage})
}
