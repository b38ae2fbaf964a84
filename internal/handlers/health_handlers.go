package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthHandlers struct {
	appName string
	appEnv  string
}

func NewHealthHandlers(appName, appEnv string) *HealthHandlers {
	return &HealthHandlers{appName: appName, appEnv: appEnv}
}

// Health is the unauthenticated liveness probe.
func (h *HealthHandlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"app":    h.appName,
		"env":    h.appEnv,
	})
}
