package handlers

import (
	"net/http"

	"llmsaas/internal/common"
	"llmsaas/internal/models"
	"llmsaas/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AuthHandlers serves registration, login and the current-user probe.
type AuthHandlers struct {
	userSvc services.UserService
	authSvc services.AuthService
}

func NewAuthHandlers(userSvc services.UserService, authSvc services.AuthService) *AuthHandlers {
	return &AuthHandlers{userSvc: userSvc, authSvc: authSvc}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID string `json:"tenant_id"`
}

// Register handles self-registration into an existing tenant. The role is
// always "user"; admins are created through the admin endpoint.
func (h *AuthHandlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant_id must be a valid UUID")
	}

	user, err := h.userSvc.Register(c.Request().Context(), req.Email, req.Password, tenantID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login exchanges form credentials (username=email, password) for a bearer
// token. Unknown email and wrong password produce the identical response.
func (h *AuthHandlers) Login(c echo.Context) error {
	email := c.FormValue("username")
	password := c.FormValue("password")
	if email == "" || password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	user, err := h.userSvc.Authenticate(c.Request().Context(), email, password)
	if err != nil {
		return httpError(err)
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, expiresIn, err := h.authSvc.IssueToken(user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   expiresIn,
		User:        user,
	})
}

// Me returns the authenticated user's own record.
func (h *AuthHandlers) Me(c echo.Context) error {
	user, ok := common.GetUserFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
	}
	return c.JSON(http.StatusOK, user)
}
