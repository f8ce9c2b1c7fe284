package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/artisan_shop/pkg/session"
)

// Session puts the visitor's session on the context. It never rejects.
func Session(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session.IntoContext(c, session.Resolve(c, secret))
			return next(c)
		}
	}
}

// RequireRole rejects API calls early; the services check again.
func RequireRole(roles ...session.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := session.FromContext(c)
			if !s.IsAuthenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or expired access token")
			}
			if !slices.Contains(roles, s.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights to see this page")
			}
			return next(c)
		}
	}
}
