package session

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

type Gate struct {
	LoginPath string
	HomePath  string

	// Protected paths need any authenticated session.
	Protected []string
	// Admin paths need RoleAdmin.
	Admin []string
}

func DefaultGate() Gate {
	return Gate{
		LoginPath: "/auth/login",
		HomePath:  "/",
		Protected: []string{"/shop/checkout", "/shop/orders"},
		Admin:     []string{"/admin"},
	}
}

type Decision struct {
	Allow    bool
	Redirect string
}

func matches(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}

func (g Gate) loginRedirect(path string) string {
	return g.LoginPath + "?" + url.Values{"callbackUrl": {path}}.Encode()
}

func (g Gate) Check(path string, s Session) Decision {
	if matches(path, g.Admin) {
		if !s.IsAuthenticated() {
			return Decision{Redirect: g.loginRedirect(path)}
		}
		if !s.IsAdmin() {
			return Decision{Redirect: g.HomePath}
		}
		return Decision{Allow: true}
	}
	if matches(path, g.Protected) && !s.IsAuthenticated() {
		return Decision{Redirect: g.loginRedirect(path)}
	}
	return Decision{Allow: true}
}

// Middleware resolves the session for every request, stores it on the
// context and redirects page requests the gate refuses.
func (g Gate) Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := Resolve(c, secret)
			IntoContext(c, s)

			d := g.Check(c.Request().URL.Path, s)
			if !d.Allow {
				return c.Redirect(http.StatusFound, d.Redirect)
			}
			return next(c)
		}
	}
}
