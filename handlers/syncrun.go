package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// TriggerSync runs one full sync pass for a series and year on demand,
// ahead of the next scheduled sweep.
func (h *Handler) TriggerSync(c echo.Context) error {
	series := c.Param("series")
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1950 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid year param")
	}

	if err := h.orc.SyncSeries(c.Request().Context(), series, year); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}
