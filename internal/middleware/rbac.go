package middleware

import (
	"net/http"

	"llmsaas/internal/common"

	"github.com/labstack/echo/v4"
)

// RequireAdmin layers a role check on top of Auth. It must be registered
// after Auth on the route; an unauthenticated request never reaches it.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := common.GetUserFromContext(c.Request().Context())
			if !ok {
				return unauthenticated()
			}
			if !user.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "Admin privileges required")
			}
			return next(c)
		}
	}
}
