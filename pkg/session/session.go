// Package session exposes the visitor's authentication state as a typed
// capability. The role is validated where the token is read, so callers only
// ever see RoleUser or RoleAdmin.
package session

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	jwthelp "github.com/Skotchmaster/artisan_shop/pkg/jwt"
	"github.com/Skotchmaster/artisan_shop/pkg/tokens"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var (
	ErrUnknownRole = errors.New("unknown role")
	ErrNoSubject   = errors.New("token has no subject")
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

type Session struct {
	Authenticated bool   `json:"is_authenticated"`
	UserID        string `json:"user_id,omitempty"`
	Role          Role   `json:"role,omitempty"`
}

func Anonymous() Session { return Session{} }

func (s Session) IsAuthenticated() bool { return s.Authenticated }

func (s Session) IsAdmin() bool { return s.Authenticated && s.Role == RoleAdmin }

func FromClaims(claims *tokens.AccessClaims) (Session, error) {
	if claims == nil || claims.Subject == "" {
		return Anonymous(), ErrNoSubject
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return Anonymous(), err
	}
	return Session{Authenticated: true, UserID: claims.Subject, Role: role}, nil
}

const ctxKey = "session"

func IntoContext(c echo.Context, s Session) {
	c.Set(ctxKey, s)
	if s.Authenticated {
		c.Set("user_id", s.UserID)
		c.Set("role", string(s.Role))
	}
}

func FromContext(c echo.Context) Session {
	if s, ok := c.Get(ctxKey).(Session); ok {
		return s
	}
	return Anonymous()
}

// Resolve reads the access token cookie. A missing, expired or malformed
// token yields the anonymous session.
func Resolve(c echo.Context, secret []byte) Session {
	ck, err := c.Cookie(jwthelp.AccessCookie)
	if err != nil || ck.Value == "" {
		return Anonymous()
	}
	claims, err := tokens.AccessClaimsFromToken(ck.Value, secret)
	if err != nil {
		return Anonymous()
	}
	s, err := FromClaims(claims)
	if err != nil {
		return Anonymous()
	}
	return s
}
