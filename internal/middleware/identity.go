package middleware

// identity.go holds the accessors for the authenticated principal that
// Authenticate stores in the Echo context.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/IL272/Wilddict/internal/model"
)

const principalKey = "principal"

// SetPrincipal stores the resolved account in the request context.
func SetPrincipal(c echo.Context, a *model.Account) { c.Set(principalKey, a) }

// Principal returns the account resolved for this request, or nil when the
// route is not behind Authenticate.
func Principal(c echo.Context) *model.Account {
	a, _ := c.Get(principalKey).(*model.Account)
	return a
}

// principalScope is the cache scope of the request: the principal's id, or
// "" for anonymous requests, which are never cached.
func principalScope(c echo.Context) string {
	p := Principal(c)
	if p == nil {
		return ""
	}
	return strconv.FormatUint(p.ID, 10)
}
