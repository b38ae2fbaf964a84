package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"llmsaas/internal/common"
	"llmsaas/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invokeRequireAdmin(user *models.User, next echo.HandlerFunc) error {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/admin/users", nil)
	if user != nil {
		req = req.WithContext(common.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return RequireAdmin()(next)(c)
}

func TestRequireAdmin_AdminPasses(t *testing.T) {
	admin := &models.User{ID: uuid.New(), TenantID: uuid.New(), Role: models.RoleAdmin}

	called := false
	err := invokeRequireAdmin(admin, func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, err)
	assert.True(t, called)
}

func TestRequireAdmin_RegularUserForbidden(t *testing.T) {
	user := &models.User{ID: uuid.New(), TenantID: uuid.New(), Role: models.RoleUser}

	err := invokeRequireAdmin(user, failIfCalledForbidden(t))

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestRequireAdmin_NoUserUnauthorized(t *testing.T) {
	err := invokeRequireAdmin(nil, failIfCalledForbidden(t))

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func failIfCalledForbidden(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatal("handler must not run without admin privileges")
		return nil
	}
}
