package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(cfg Config) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(cfg))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/cart", ok)
	e.POST("/cart/items", ok)
	e.POST("/login", ok)
	return e
}

func TestGetIssuesToken(t *testing.T) {
	e := newServer(DefaultConfig())
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Header().Get("X-CSRF-Token")
	assert.NotEmpty(t, token)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "XSRF-TOKEN="+token)
}

func TestPostRequiresMatchingToken(t *testing.T) {
	e := newServer(DefaultConfig())

	post := func(header string) int {
		req := httptest.NewRequest(http.MethodPost, "http://shop.test/cart/items", nil)
		req.Host = "shop.test"
		req.Header.Set("Origin", "http://shop.test")
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc123"})
		if header != "" {
			req.Header.Set("X-CSRF-Token", header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post("abc123"))
	assert.Equal(t, http.StatusForbidden, post("wrong1"))
	assert.Equal(t, http.StatusForbidden, post(""))
}

func TestPostRejectsForeignOrigin(t *testing.T) {
	e := newServer(DefaultConfig())
	req := httptest.NewRequest(http.MethodPost, "http://shop.test/cart/items", nil)
	req.Host = "shop.test"
	req.Header.Set("Origin", "http://evil.test")
	req.Header.Set("X-CSRF-Token", "abc123")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc123"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSkipPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SkipPaths = []string{"/login"}
	e := newServer(cfg)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
