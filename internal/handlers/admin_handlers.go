package handlers

import (
	"net/http"

	"llmsaas/internal/common"
	"llmsaas/internal/services"

	"github.com/labstack/echo/v4"
)

// AdminHandlers serves admin-only user management. Routes are mounted behind
// the Auth and RequireAdmin middleware.
type AdminHandlers struct {
	userSvc services.UserService
}

func NewAdminHandlers(userSvc services.UserService) *AdminHandlers {
	return &AdminHandlers{userSvc: userSvc}
}

type AdminCreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser creates a user (any role) inside the admin's own tenant. The
// tenant comes from the admin's auth context; there is no way to create a
// user in another tenant through this endpoint.
func (h *AdminHandlers) CreateUser(c echo.Context) error {
	admin, ok := common.GetUserFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
	}

	var req AdminCreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	user, err := h.userSvc.CreateByAdmin(c.Request().Context(), admin, req.Email, req.Password, req.Role)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, user)
}
