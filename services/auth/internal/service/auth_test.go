package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgdb "github.com/Skotchmaster/artisan_shop/pkg/db"
	"github.com/Skotchmaster/artisan_shop/pkg/events"
	"github.com/Skotchmaster/artisan_shop/pkg/session"
	"github.com/Skotchmaster/artisan_shop/pkg/tokens"
	"github.com/Skotchmaster/artisan_shop/services/auth/internal/repo"
)

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := event.(map[string]any); ok && topic == events.TopicUsers {
		p.types = append(p.types, m["type"].(string))
	}
	return nil
}

func newTestAuthService() *AuthService {
	return &AuthService{
		Repo: &repo.GormRepo{
			JWTSecret:     []byte("test-jwt-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
		},
	}
}

func newDBAuthService(t *testing.T) (*AuthService, *recordingPublisher) {
	t.Helper()

	ctx := context.Background()
	db, err := pkgdb.Open(ctx, pkgdb.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	svc := newTestAuthService()
	svc.Repo.DB = db
	require.NoError(t, svc.Repo.Migrate(ctx))

	pub := &recordingPublisher{}
	svc.Events = pub
	return svc, pub
}

func TestAuthService_CreateAccessToken_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	userID := uuid.NewString()
	role := "admin"
	accessExp := time.Now().Add(15 * time.Minute).UTC()

	token, err := svc.CreateAccessToken(role, userID, accessExp)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tokens.AccessClaimsFromToken(token, svc.Repo.JWTSecret)
	require.NoError(t, err)

	assert.Equal(t, role, claims.Role)
	assert.Equal(t, userID, claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, accessExp, claims.ExpiresAt.Time, time.Second)
}

func TestAuthService_CreateRefreshToken_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	userID := uuid.NewString()
	refreshExp := time.Now().Add(24 * time.Hour).UTC()

	token, jti, err := svc.CreateRefreshToken(userID, refreshExp)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tokens.RefreshClaimsFromToken(token, svc.Repo.RefreshSecret)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, jti, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, refreshExp, claims.ExpiresAt.Time, time.Second)
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "secret1"},
		{name: "malformed email", email: "not-an-email", password: "secret1"},
		{name: "short password", email: "user@example.com", password: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u, err := svc.Register(ctx, tt.email, "User", tt.password)
			require.Error(t, err)
			assert.Nil(t, u)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Login_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "secret"},
		{name: "empty password", email: "user@example.com", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := svc.Login(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_LogOut_EmptyToken_NoError(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	require.NoError(t, svc.LogOut(context.Background(), ""))
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	res, err := svc.Refresh(context.Background(), "not-a-valid-jwt")

	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, pub := newDBAuthService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Ana@Example.com ", "Ana", "pottery1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, "user", u.Role)
	assert.NotEqual(t, uuid.Nil, u.ID)

	_, err = svc.Register(ctx, "ana@example.com", "Ana again", "pottery2")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Login(ctx, "ana@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "pottery1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := svc.Login(ctx, "ANA@example.com", "pottery1")
	require.NoError(t, err)
	assert.False(t, res.IsAdmin)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, svc.Repo.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.Subject)
	assert.Equal(t, "user", claims.Role)

	assert.Equal(t, []string{"user_registered", "user_logged_in"}, pub.types)
}

func TestAuthService_RefreshRotates(t *testing.T) {
	svc, _ := newDBAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "ben@example.com", "Ben", "woodwork")
	require.NoError(t, err)
	first, err := svc.Login(ctx, "ben@example.com", "woodwork")
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// the rotated token is single use
	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	require.NoError(t, svc.LogOut(ctx, second.RefreshToken))
	_, err = svc.Refresh(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_RefreshPicksUpRoleChange(t *testing.T) {
	svc, _ := newDBAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "cara@example.com", "Cara", "textiles")
	require.NoError(t, err)
	res, err := svc.Login(ctx, "cara@example.com", "textiles")
	require.NoError(t, err)
	assert.False(t, res.IsAdmin)

	require.NoError(t, svc.Repo.PromoteToAdmin(ctx, "cara@example.com"))

	res, err = svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.True(t, res.IsAdmin)
	assert.True(t, svc.Session(res.AccessToken).IsAdmin())
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	svc, _ := newDBAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@example.com", "admin-pass"))
	// running it again on start-up is harmless
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@example.com", "admin-pass"))

	res, err := svc.Login(ctx, "admin@example.com", "admin-pass")
	require.NoError(t, err)
	assert.True(t, res.IsAdmin)
}

func TestAuthService_Session(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	assert.Equal(t, session.Anonymous(), svc.Session(""))
	assert.Equal(t, session.Anonymous(), svc.Session("garbage"))

	id := uuid.NewString()
	tok, err := svc.CreateAccessToken("user", id, time.Now().Add(time.Minute))
	require.NoError(t, err)

	s := svc.Session(tok)
	assert.True(t, s.IsAuthenticated())
	assert.False(t, s.IsAdmin())
	assert.Equal(t, id, s.UserID)
}
