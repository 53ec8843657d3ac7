package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/customer-api/internal/api/middleware"
	"github.com/storefront/customer-api/internal/core/ports"
)

// ctxClaims returns the claims injected by the Auth middleware. A missing
// value means the route was registered without it.
func ctxClaims(c echo.Context) (*ports.Claims, error) {
	claims, _ := c.Get(middleware.ClaimsKey).(*ports.Claims)
	if claims == nil || claims.UserID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}

// ctxUserID returns the authenticated user id, or "" for anonymous requests.
func ctxUserID(c echo.Context) string {
	id, _ := c.Get(middleware.UserIDKey).(string)
	return id
}
