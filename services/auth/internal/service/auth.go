package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/artisan_shop/pkg/events"
	pkg_hash "github.com/Skotchmaster/artisan_shop/pkg/hash"
	jwthelp "github.com/Skotchmaster/artisan_shop/pkg/jwt"
	"github.com/Skotchmaster/artisan_shop/pkg/logging"
	"github.com/Skotchmaster/artisan_shop/pkg/session"
	"github.com/Skotchmaster/artisan_shop/pkg/tokens"
	"github.com/Skotchmaster/artisan_shop/services/auth/internal/models"
	"github.com/Skotchmaster/artisan_shop/services/auth/internal/repo"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrConflict            = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

const minPasswordLen = 6

type AuthService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	IsAdmin      bool
}

func (h *AuthService) CreateAccessToken(role, id string, accessExp time.Time) (string, error) {
	return tokens.SignAccessToken(id, role, accessExp, h.Repo.JWTSecret)
}

func (h *AuthService) CreateRefreshToken(id string, refreshExp time.Time) (string, string, error) {
	jti := jwthelp.NewJTI()
	tok, err := tokens.SignRefreshToken(id, jti, refreshExp, h.Repo.RefreshSecret)
	return tok, jti, err
}

func (h *AuthService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	user := models.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: pwHash,
		Role:         string(session.RoleUser),
	}

	if err := h.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 409, "reason", "user already exist")
			return nil, ErrConflict
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, err
	}

	events.Publish(ctx, h.Events, events.TopicUsers, user.ID.String(), map[string]any{
		"type":    "user_registered",
		"user_id": user.ID.String(),
		"email":   user.Email,
	})
	return &user, nil
}

func (h *AuthService) issue(ctx context.Context, user *models.User) (*LoginResult, models.RefreshToken, error) {
	accessExp := time.Now().Add(tokens.AccessTTL)
	accessToken, err := h.CreateAccessToken(user.Role, user.ID.String(), accessExp)
	if err != nil {
		return nil, models.RefreshToken{}, err
	}

	refreshExp := time.Now().Add(tokens.RefreshTTL)
	refreshToken, jti, err := h.CreateRefreshToken(user.ID.String(), refreshExp)
	if err != nil {
		return nil, models.RefreshToken{}, err
	}

	record := models.RefreshToken{
		Token:     jwthelp.Sha256Hex(refreshToken),
		UserID:    user.ID,
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	}
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		IsAdmin:      user.Role == string(session.RoleAdmin),
	}, record, nil
}

func (h *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := h.Repo.UserExist(ctx, email, password)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidCredentials) {
			l.Warn("login_failed", "status", 401, "reason", "invalid email or password")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	res, record, err := h.issue(ctx, user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign tokens", "error", err)
		return nil, err
	}
	if err := h.Repo.AddRefreshToken(ctx, record); err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot store refresh token", "error", err)
		return nil, err
	}

	events.Publish(ctx, h.Events, events.TopicUsers, user.ID.String(), map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID.String(),
	})
	return res, nil
}

// Refresh rotates a refresh token. The role in the new access token is read
// from the user record, so role changes apply on the next refresh.
func (h *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if refreshToken == "" {
		return nil, fmt.Errorf("%w: missing token", ErrInvalidRefreshToken)
	}

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, h.Repo.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidRefreshToken)
	}

	user, err := h.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown user", ErrInvalidRefreshToken)
		}
		return nil, err
	}

	res, record, err := h.issue(ctx, user)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}

	if err := h.Repo.RotateRefreshToken(ctx, claims.ID, refreshToken, record); err != nil {
		if errors.Is(err, repo.ErrTokenExpiredOrRevoked) || errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("refresh_failed", "status", 401, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	return res, nil
}

func (h *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return h.Repo.LogOut(ctx, refreshToken)
}

// Session reports the typed session for an access token; any problem with the
// token yields the anonymous session.
func (h *AuthService) Session(accessToken string) session.Session {
	if accessToken == "" {
		return session.Anonymous()
	}
	claims, err := tokens.AccessClaimsFromToken(accessToken, h.Repo.JWTSecret)
	if err != nil {
		return session.Anonymous()
	}
	s, err := session.FromClaims(claims)
	if err != nil {
		return session.Anonymous()
	}
	return s
}

// EnsureAdmin creates the bootstrap admin account, or promotes it when the
// email is already registered.
func (h *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := h.Register(ctx, email, "Administrator", password)
	if err != nil && !errors.Is(err, ErrConflict) {
		return err
	}
	return h.Repo.PromoteToAdmin(ctx, email)
}
