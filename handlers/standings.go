package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// standingRow is a flat scan target for the standings join query.
type standingRow struct {
	Position   int     `bun:"position"`
	Points     float64 `bun:"points"`
	Wins       int     `bun:"wins"`
	ClassName  string  `bun:"class_name"`
	DriverName string  `bun:"driver_name"`
	DriverSlug string  `bun:"driver_slug"`
	CarNumber  int     `bun:"car_number"`
	TeamName   *string `bun:"team_name"`
	TeamColor  *string `bun:"team_color"`
}

type standingEntry struct {
	Position   int     `json:"position"`
	Points     float64 `json:"points"`
	Wins       int     `json:"wins"`
	DriverName string  `json:"driverName"`
	DriverSlug string  `json:"driverSlug"`
	CarNumber  int     `json:"carNumber,omitempty"`
	TeamName   *string `json:"teamName,omitempty"`
	TeamColor  *string `json:"teamColor,omitempty"`
}

type standingClass struct {
	ClassName string          `json:"className"`
	Entries   []standingEntry `json:"entries"`
}

const standingsJoinSQL = `
SELECT
	st.position, st.points, st.wins, st.class_name,
	d.name AS driver_name, d.slug AS driver_slug, d.number AS car_number,
	t.name AS team_name, t.color AS team_color
FROM driver_standings st
INNER JOIN seasons se ON st.season_id = se.id
INNER JOIN series  s  ON se.series_id = s.id
INNER JOIN drivers d  ON st.driver_id = d.id
LEFT JOIN  teams   t  ON d.team_id    = t.id
`

// Standings returns a season's driver standings, grouped by class.
func (h *Handler) Standings(c echo.Context) error {
	series := c.QueryParam("series")
	if series == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing series param")
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing or invalid year param")
	}

	var rows []standingRow
	q := standingsJoinSQL + `WHERE s.slug = ? AND se.year = ? ORDER BY st.class_name, st.position`

	if err := h.db.NewRaw(q, series, year).Scan(c.Request().Context(), &rows); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, groupStandingsByClass(rows))
}

// groupStandingsByClass converts flat rows into class-grouped slices.
func groupStandingsByClass(rows []standingRow) []standingClass {
	order := []string{}
	classes := map[string]*standingClass{}

	for _, row := range rows {
		if _, ok := classes[row.ClassName]; !ok {
			order = append(order, row.ClassName)
			classes[row.ClassName] = &standingClass{
				ClassName: row.ClassName,
				Entries:   []standingEntry{},
			}
		}
		classes[row.ClassName].Entries = append(classes[row.ClassName].Entries, standingEntry{
			Position:   row.Position,
			Points:     row.Points,
			Wins:       row.Wins,
			DriverName: row.DriverName,
			DriverSlug: row.DriverSlug,
			CarNumber:  row.CarNumber,
			TeamName:   row.TeamName,
			TeamColor:  row.TeamColor,
		})
	}

	out := make([]standingClass, 0, len(order))
	for _, k := range order {
		out = append(out, *classes[k])
	}
	return out
}
