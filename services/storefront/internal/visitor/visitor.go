// Package visitor gives every browser a stable anonymous id, kept in the
// visitorId cookie, that owns its cart.
package visitor

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CookieName = "visitorId"
	cookieTTL  = 365 * 24 * time.Hour
	ctxKey     = "visitor_id"
)

// Middleware reuses a well-formed visitorId cookie or issues a new one.
func Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := ""
		if ck, err := c.Cookie(CookieName); err == nil {
			if _, err := uuid.Parse(ck.Value); err == nil {
				id = ck.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			c.SetCookie(&http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				Expires:  time.Now().Add(cookieTTL),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(ctxKey, id)
		return next(c)
	}
}

func FromContext(c echo.Context) string {
	id, _ := c.Get(ctxKey).(string)
	return id
}
