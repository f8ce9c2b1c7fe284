package authmw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/artisan_shop/pkg/authclient"
	"github.com/Skotchmaster/artisan_shop/pkg/session"
	"github.com/Skotchmaster/artisan_shop/pkg/tokens"
)

var secret = []byte("test-jwt-secret")

type fakeRefresher struct {
	resp  *authclient.RefreshResponse
	err   error
	calls int
}

func (f *fakeRefresher) RefreshTokens(context.Context, string, string) (*authclient.RefreshResponse, error) {
	f.calls++
	return f.resp, f.err
}

func accessToken(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	tok, err := tokens.SignAccessToken("user-1", role, exp, secret)
	require.NoError(t, err)
	return tok
}

func run(t *testing.T, h echo.MiddlewareFunc, cookies ...*http.Cookie) (*httptest.ResponseRecorder, session.Session, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen session.Session
	err := h(func(c echo.Context) error {
		seen = session.FromContext(c)
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, seen, err
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected echo.HTTPError, got %v", err)
	return he.Code
}

func TestRequireAuth_MissingCookie(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil)
	_, _, err := run(t, m.RequireAuth)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestRequireAuth_ValidToken(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil)
	rec, s, err := run(t, m.RequireAuth, &http.Cookie{Name: "accessToken", Value: accessToken(t, "user", time.Now().Add(time.Minute))})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "user-1", s.UserID)
	assert.False(t, s.IsAdmin())
}

func TestRequireAuth_UnknownRoleRejected(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil)
	_, _, err := run(t, m.RequireAuth, &http.Cookie{Name: "accessToken", Value: accessToken(t, "superuser", time.Now().Add(time.Minute))})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestRequireAdmin(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil)

	_, _, err := run(t, m.RequireAdmin, &http.Cookie{Name: "accessToken", Value: accessToken(t, "user", time.Now().Add(time.Minute))})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, s, err := run(t, m.RequireAdmin, &http.Cookie{Name: "accessToken", Value: accessToken(t, "admin", time.Now().Add(time.Minute))})
	require.NoError(t, err)
	assert.True(t, s.IsAdmin())
}

func TestRequireAuth_ExpiredTokenRefreshes(t *testing.T) {
	fresh := accessToken(t, "admin", time.Now().Add(time.Minute))
	ref := &fakeRefresher{resp: &authclient.RefreshResponse{
		AccessToken:  fresh,
		RefreshToken: "r2",
		AccessExp:    time.Now().Add(time.Minute).Unix(),
		RefreshExp:   time.Now().Add(time.Hour).Unix(),
	}}
	m := NewAutoRefreshMiddleware(secret, ref)

	rec, s, err := run(t, m.RequireAdmin,
		&http.Cookie{Name: "accessToken", Value: accessToken(t, "admin", time.Now().Add(-time.Minute))},
		&http.Cookie{Name: "refreshToken", Value: "r1"},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, ref.calls)
	assert.True(t, s.IsAdmin())
	assert.Contains(t, rec.Header().Values("Set-Cookie")[0], "accessToken="+fresh)
}

func TestRequireAuth_ExpiredWithoutRefreshCookie(t *testing.T) {
	ref := &fakeRefresher{}
	m := NewAutoRefreshMiddleware(secret, ref)

	_, _, err := run(t, m.RequireAuth, &http.Cookie{Name: "accessToken", Value: accessToken(t, "user", time.Now().Add(-time.Minute))})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	assert.Zero(t, ref.calls)
}

func TestRequireAuth_RefreshFails(t *testing.T) {
	ref := &fakeRefresher{err: errors.New("auth down")}
	m := NewAutoRefreshMiddleware(secret, ref)

	_, _, err := run(t, m.RequireAuth,
		&http.Cookie{Name: "accessToken", Value: accessToken(t, "user", time.Now().Add(-time.Minute))},
		&http.Cookie{Name: "refreshToken", Value: "r1"},
	)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	assert.Equal(t, 1, ref.calls)
}
