package handlers

import (
	"net/http"

	"llmsaas/internal/common"
	"llmsaas/internal/models"
	"llmsaas/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type TenantHandlers struct {
	tenantSvc services.TenantService
	userSvc   services.UserService
}

func NewTenantHandlers(tenantSvc services.TenantService, userSvc services.UserService) *TenantHandlers {
	return &TenantHandlers{tenantSvc: tenantSvc, userSvc: userSvc}
}

type CreateTenantRequest struct {
	Name string `json:"name"`
}

// CreateTenant onboards a new tenant. Unauthenticated by design: it is the
// entry point for new organizations.
func (h *TenantHandlers) CreateTenant(c echo.Context) error {
	var req CreateTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tenant, err := h.tenantSvc.Create(c.Request().Context(), req.Name)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, tenant)
}

// ListUsers lists the users of a tenant. Admin-only, and an admin can only
// list their own tenant; the check runs before any query is issued.
func (h *TenantHandlers) ListUsers(c echo.Context) error {
	admin, ok := common.GetUserFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
	}

	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant id must be a valid UUID")
	}
	if admin.TenantID != tenantID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only view users within your own tenant")
	}

	users, err := h.userSvc.ListByTenant(c.Request().Context(), tenantID)
	if err != nil {
		return httpError(err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// DeleteTenant removes the admin's own tenant with everything it owns.
func (h *TenantHandlers) DeleteTenant(c echo.Context) error {
	admin, ok := common.GetUserFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
	}

	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant id must be a valid UUID")
	}
	if admin.TenantID != tenantID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own tenant")
	}

	if err := h.tenantSvc.Delete(c.Request().Context(), tenantID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
