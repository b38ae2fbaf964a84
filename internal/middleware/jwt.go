package middleware

import (
	"net/http"
	"strings"

	"llmsaas/internal/common"
	"llmsaas/internal/repositories"
	"llmsaas/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// credentialsMessage is the single body used for every authentication
// failure. Missing token, bad signature, expired token and deleted user are
// indistinguishable from the outside.
const credentialsMessage = "Could not validate credentials"

func unauthenticated() error {
	return echo.NewHTTPError(http.StatusUnauthorized, credentialsMessage)
}

// Auth resolves the bearer token into a live user record and stamps it into
// the request context. The DB re-fetch is what approximates revocation:
// a structurally valid token whose subject was deleted, or whose tenant
// claim no longer matches the stored row, is rejected.
func Auth(userRepo repositories.UserRepository, authSvc services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthenticated()
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return unauthenticated()
			}

			claims, err := authSvc.VerifyToken(tokenString)
			if err != nil {
				return unauthenticated()
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return unauthenticated()
			}
			tenantID, err := uuid.Parse(claims.TenantID)
			if err != nil {
				return unauthenticated()
			}

			user, err := userRepo.GetByID(c.Request().Context(), tenantID, userID)
			if err != nil {
				return unauthenticated()
			}

			c.SetRequest(c.Request().WithContext(common.WithUser(c.Request().Context(), user)))
			return next(c)
		}
	}
}
