package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-service/internal/core/domain"
)

// RequireAuth rejects requests that Authenticate left anonymous.
// Must run after Authenticate.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !domain.CallerFromContext(c.Request().Context()).Authenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}
