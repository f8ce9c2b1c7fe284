package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/artisan_shop/gateway/internal/middleware"
	"github.com/Skotchmaster/artisan_shop/pkg/middleware/csrf"
	"github.com/Skotchmaster/artisan_shop/pkg/session"
)

type Deps struct {
	AuthURL       string
	CatalogURL    string
	StorefrontURL string

	CSRFConfig csrf.Config
	Gate       session.Gate
	JWTSecret  []byte
	Logger     *slog.Logger
}

var unsafeMethods = []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

func Register(e *echo.Echo, d *Deps) error {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, m := range middleware.Common(d.Logger) {
		e.Use(m)
	}
	e.Use(csrf.Middleware(d.CSRFConfig))

	authProxy, err := newProxy(d.AuthURL, "/api/v1/auth")
	if err != nil {
		return err
	}
	catalogProxy, err := newProxy(d.CatalogURL, "/api/v1")
	if err != nil {
		return err
	}
	cartProxy, err := newProxy(d.StorefrontURL, "/api/v1")
	if err != nil {
		return err
	}
	pageProxy, err := newProxy(d.StorefrontURL, "")
	if err != nil {
		return err
	}

	e.Any("/api/v1/auth/*", authProxy)

	api := e.Group("/api/v1", middleware.Session(d.JWTSecret))
	api.GET("/catalog/*", catalogProxy)
	api.Match(unsafeMethods, "/catalog/*", catalogProxy, middleware.RequireRole(session.RoleAdmin))
	api.Any("/cart", cartProxy)
	api.Any("/cart/*", cartProxy)

	gate := d.Gate.Middleware(d.JWTSecret)
	e.Any("/shop/*", pageProxy, gate)
	e.Any("/admin/*", pageProxy, gate)

	return nil
}
