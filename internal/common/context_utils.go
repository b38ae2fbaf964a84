package common

import (
	"context"

	"llmsaas/internal/models"
)

type contextKey string

const userKey contextKey = "auth_user"

// WithUser stamps the resolved auth user into the request context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUserFromContext extracts the authenticated user from the request context.
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ValidatePaginationParams clamps skip/limit to sane bounds.
func ValidatePaginationParams(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return skip, limit
}
