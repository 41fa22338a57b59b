package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-service/internal/api/metrics"
	"github.com/stockroom/inventory-service/internal/core/domain"
	"github.com/stockroom/inventory-service/internal/core/ports"
)

const (
	bearerPrefix = "Bearer "

	// CallerKey is the echo.Context key holding the authenticated email.
	CallerKey = "email"
)

// Authenticate resolves the bearer token, if any, into a caller identity.
// It never rejects a request: missing, foreign-scheme, malformed, tampered
// and expired tokens all leave the request anonymous.
func Authenticate(tokens ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return next(c)
			}

			token := strings.TrimSpace(header[len(bearerPrefix):])
			email, ok := tokens.ExtractSubject(token)
			if !ok || !tokens.IsValid(token) {
				metrics.TokenValidationsTotal.WithLabelValues("invalid").Inc()
				return next(c)
			}

			metrics.TokenValidationsTotal.WithLabelValues("valid").Inc()
			c.Set(CallerKey, email)
			req := c.Request()
			c.SetRequest(req.WithContext(domain.WithCaller(req.Context(), domain.Caller{Email: email})))

			return next(c)
		}
	}
}
