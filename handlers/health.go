package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Healthz reports liveness, including database reachability.
func (h *Handler) Healthz(c echo.Context) error {
	if err := h.db.PingContext(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
