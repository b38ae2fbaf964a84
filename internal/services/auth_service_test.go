package services

import (
	"testing"
	"time"

	"llmsaas/internal/common"
	"llmsaas/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-unit-tests"

func newTestAuthService(t *testing.T, ttl time.Duration) AuthService {
	t.Helper()
	svc, err := NewAuthService(testSecret, "HS256", ttl)
	require.NoError(t, err)
	return svc
}

func testUser() *models.User {
	return &models.User{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Email:    "alice@example.com",
		Role:     models.RoleAdmin,
	}
}

func TestNewAuthService_RejectsNonHMAC(t *testing.T) {
	_, err := NewAuthService(testSecret, "RS256", time.Hour)
	assert.Error(t, err)

	_, err = NewAuthService(testSecret, "nonsense", time.Hour)
	assert.Error(t, err)
}

func TestIssueAndVerifyToken_Roundtrip(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)
	user := testUser()

	token, expiresIn, err := svc.IssueToken(user)
	require.NoError(t, err)
	assert.Equal(t, 3600, expiresIn)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, user.TenantID.String(), claims.TenantID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestVerifyToken_Expired(t *testing.T) {
	svc := newTestAuthService(t, -time.Minute)
	token, _, err := svc.IssueToken(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestVerifyToken_Tampered(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)
	token, _, err := svc.IssueToken(testUser())
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "0000"
	_, err = svc.VerifyToken(tampered)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	other, err := NewAuthService("a-completely-different-secret", "HS256", time.Hour)
	require.NoError(t, err)
	token, _, err := other.IssueToken(testUser())
	require.NoError(t, err)

	svc := newTestAuthService(t, time.Hour)
	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestVerifyToken_AlgorithmMismatch(t *testing.T) {
	// Same secret, different HMAC variant. The verifier pins the configured
	// algorithm, so the token must be rejected.
	other, err := NewAuthService(testSecret, "HS512", time.Hour)
	require.NoError(t, err)
	token, _, err := other.IssueToken(testUser())
	require.NoError(t, err)

	svc := newTestAuthService(t, time.Hour)
	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestVerifyToken_MissingTenantClaim(t *testing.T) {
	// A structurally valid token without a tenant claim must not pass.
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	svc := newTestAuthService(t, time.Hour)
	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestVerifyToken_Garbage(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.VerifyToken(token)
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	}
}

func TestTokenTTL(t *testing.T) {
	svc := newTestAuthService(t, 30*time.Minute)
	assert.Equal(t, 30*time.Minute, svc.TokenTTL())
}
