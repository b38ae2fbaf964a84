package services

import (
	"fmt"
	"time"

	"llmsaas/internal/common"
	"llmsaas/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService mints and verifies the signed bearer tokens that carry a
// user's identity, tenant and role. Tokens are self-contained; revocation is
// approximated by the auth middleware re-fetching the user on every request.
type AuthService interface {
	IssueToken(user *models.User) (string, int, error)
	VerifyToken(token string) (*TokenClaims, error)
	TokenTTL() time.Duration
}

// TokenClaims is the JWT payload: subject (user id) plus tenant and role.
type TokenClaims struct {
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// NewAuthService builds the token service. The signing key and algorithm are
// process-wide configuration, loaded once at startup; rotation is out of
// scope.
func NewAuthService(secret, algorithm string, ttl time.Duration) (AuthService, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not an HMAC method", algorithm)
	}
	return &authService{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
	}, nil
}

// IssueToken signs a time-bound token for the user. Returns the token string
// and its lifetime in seconds.
func (s *authService) IssueToken(user *models.User) (string, int, error) {
	now := time.Now()
	claims := TokenClaims{
		TenantID: user.TenantID.String(),
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, int(s.ttl.Seconds()), nil
}

// VerifyToken checks signature and expiry. Every failure mode — malformed,
// bad signature, expired, wrong algorithm, missing claims — collapses into
// common.ErrUnauthorized so the response gives no oracle on which check
// tripped.
func (s *authService) VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, common.ErrUnauthorized
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || claims.Subject == "" || claims.TenantID == "" {
		return nil, common.ErrUnauthorized
	}
	return claims, nil
}

func (s *authService) TokenTTL() time.Duration {
	return s.ttl
}
