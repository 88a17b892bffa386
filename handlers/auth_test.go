package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"quickannonce-backend/models"
)

func signTestToken(t *testing.T, key []byte, id int, role models.Role, expiresAt time.Time) string {
	t.Helper()

	tokenClaims := &claims{
		Email: "jean@quickannonce.com",
		ID:    id,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims)
	signed, err := token.SignedString(key)
	assert.NoError(t, err)
	return signed
}

func TestIdentityFromRequestValidToken(t *testing.T) {
	SetJWTKey("cle-de-test")

	signed := signTestToken(t, jwtKey, 42, models.RoleUser, time.Now().Add(time.Hour))

	r := httptest.NewRequest("GET", "/api/v1/ads/7", nil)
	r.Header.Set("Authorization", "Bearer "+signed)

	id, role, ok := identityFromRequest(r)
	assert.True(t, ok)
	assert.Equal(t, 42, id)
	assert.Equal(t, models.RoleUser, role)
}

func TestIdentityFromRequestAdminToken(t *testing.T) {
	SetJWTKey("cle-de-test")

	signed := signTestToken(t, jwtKey, 1, models.RoleAdmin, time.Now().Add(time.Hour))

	r := httptest.NewRequest("GET", "/api/v1/ads/7", nil)
	r.Header.Set("Authorization", "Bearer "+signed)

	id, role, ok := identityFromRequest(r)
	assert.True(t, ok)
	assert.Equal(t, 1, id)
	assert.Equal(t, models.RoleAdmin, role)
}

func TestIdentityFromRequestAnonymous(t *testing.T) {
	SetJWTKey("cle-de-test")

	r := httptest.NewRequest("GET", "/api/v1/ads/7", nil)

	_, _, ok := identityFromRequest(r)
	assert.False(t, ok)
}

func TestIdentityFromRequestMalformedHeader(t *testing.T) {
	SetJWTKey("cle-de-test")

	r := httptest.NewRequest("GET", "/api/v1/ads/7", nil)
	r.Header.Set("Authorization", "n-importe-quoi")

	_, _, ok := identityFromRequest(r)
	assert.False(t, ok)

	r = httptest.NewRequest("GET", "/api/v1/ads/7", nil)
	r.Header.Set("Authorization", "Basic abc123")

	_, _, ok = identityFromRequest(r)
	assert.False(t, ok)
}

func TestIdentityFromRequestWrongSignature(t *testing.T) {
	SetJWTKey("cle-de-test")

	signed := signTestToken(t, []byte("autre-cle"), 42, models.RoleUser, time.Now().Add(time.Hour))

	r := httptest.NewRequest("GET", "/api/v1/ads/7", nil)
	r.Header.Set("Authorization", "Bearer "+signed)

	_, _, ok := identityFromRequest(r)
	assert.False(t, ok)
}

func TestIdentityFromRequestExpiredToken(t *testing.T) {
	SetJWTKey("cle-de-test")

	signed := signTestToken(t, jwtKey, 42, models.RoleUser, time.Now().Add(-time.Hour))

	r := httptest.NewRequest("GET", "/api/v1/ads/7", nil)
	r.Header.Set("Authorization", "Bearer "+signed)

	_, _, ok := identityFromRequest(r)
	assert.False(t, ok)
}
