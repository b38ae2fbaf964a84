package handlers

import (
	"errors"
	"net/http"

	"llmsaas/internal/common"

	"github.com/labstack/echo/v4"
)

// httpError maps business errors to transport status codes. This is the only
// layer that performs that translation; services and repositories raise the
// typed errors from internal/common and never see HTTP.
func httpError(err error) error {
	switch {
	case errors.Is(err, common.ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, common.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, common.ErrUpstream):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		// Unhandled: the central error handler logs detail and redacts the body.
		return err
	}
}
