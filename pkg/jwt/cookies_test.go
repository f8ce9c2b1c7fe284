package jwt

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCookie(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	ck := CreateCookie(AccessCookie, "value", "/", exp)

	assert.Equal(t, "accessToken", ck.Name)
	assert.Equal(t, "value", ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, exp, ck.Expires)
}

func TestDeleteCookie(t *testing.T) {
	ck := DeleteCookie(RefreshCookie, "/")
	assert.Equal(t, "refreshToken", ck.Name)
	assert.Empty(t, ck.Value)
	assert.Equal(t, -1, ck.MaxAge)
}

func TestSha256Hex(t *testing.T) {
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", Sha256Hex("hello"))
}

func TestNewJTI(t *testing.T) {
	a, b := NewJTI(), NewJTI()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	require.NoError(t, err)
}
