package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/artisan_shop/pkg/envelope"
	jwthelp "github.com/Skotchmaster/artisan_shop/pkg/jwt"
	"github.com/Skotchmaster/artisan_shop/pkg/logging"
	"github.com/Skotchmaster/artisan_shop/services/auth/internal/service"
	"github.com/Skotchmaster/artisan_shop/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func setTokenCookies(c echo.Context, res *service.LoginResult) {
	c.SetCookie(jwthelp.CreateCookie(jwthelp.AccessCookie, res.AccessToken, "/", res.AccessExp))
	c.SetCookie(jwthelp.CreateCookie(jwthelp.RefreshCookie, res.RefreshToken, "/", res.RefreshExp))
}

func clearTokenCookies(c echo.Context) {
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.RefreshCookie, "/"))
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.AccessCookie, "/"))
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return envelope.Fail(c, http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, req.Email, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return envelope.Fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrConflict):
			return envelope.Fail(c, http.StatusConflict, "User with this email already exists")
		default:
			return envelope.Fail(c, http.StatusInternalServerError, "register failed")
		}
	}

	l.Info("register_successful", "user_id", user.ID.String())
	return envelope.OKMessage(c, http.StatusCreated, "User registered", transport.UserResponse{
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return envelope.Fail(c, http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return envelope.Fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidCredentials):
			return envelope.Fail(c, http.StatusUnauthorized, "invalid email or password")
		default:
			return envelope.Fail(c, http.StatusInternalServerError, "login failed")
		}
	}

	setTokenCookies(c, res)
	l.Info("login_successful")

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"is_admin": res.IsAdmin,
	})
}

// Refresh is called by other services on behalf of a visitor, so the new
// tokens go out both as cookies and in the body.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	ck, err := c.Cookie(jwthelp.RefreshCookie)
	if err != nil || ck.Value == "" {
		l.Warn("refresh_error", "status", 401, "reason", "no refresh cookie")
		return envelope.Fail(c, http.StatusUnauthorized, "missing refresh token")
	}

	res, err := h.Svc.Refresh(ctx, ck.Value)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			clearTokenCookies(c)
			return envelope.Fail(c, http.StatusUnauthorized, "invalid refresh token")
		}
		return envelope.Fail(c, http.StatusInternalServerError, "refresh failed")
	}

	setTokenCookies(c, res)
	return c.JSON(http.StatusOK, transport.RefreshResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		AccessExp:    res.AccessExp.Unix(),
		RefreshExp:   res.RefreshExp.Unix(),
		IsAdmin:      res.IsAdmin,
	})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if ck, err := c.Cookie(jwthelp.RefreshCookie); err == nil {
		if err := h.Svc.LogOut(ctx, ck.Value); err != nil {
			clearTokenCookies(c)
			l.Error("logout_failed", "status", 500, "reason", "cannot revoke refreshToken", "error", err)
			return envelope.Fail(c, http.StatusInternalServerError, "logout failed")
		}
	}

	clearTokenCookies(c)
	l.Info("successful_logout")
	return envelope.OKMessage(c, http.StatusOK, "logged out", nil)
}

// Session reports who the access cookie belongs to. It never fails: a
// missing or bad token is the anonymous session.
func (h *AuthHTTP) Session(c echo.Context) error {
	var token string
	if ck, err := c.Cookie(jwthelp.AccessCookie); err == nil {
		token = ck.Value
	}
	return envelope.OK(c, http.StatusOK, h.Svc.Session(token))
}
