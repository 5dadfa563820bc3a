package normalize

import (
	"strconv"
	"strings"
)

// ProviderRow is one already-typed result from the timing provider, keyed by
// car number. Position 0 means the provider carried no official positions
// for the session and they must be derived from the lap trace.
type ProviderRow struct {
	CarNumber  int
	FirstName  string
	LastName   string
	TeamName   string
	Position   int
	Laps       int
	Status     string
	ClassName  string
	GapToFirst string
	TotalTime  string
}

// LapTrace maps car number -> lap number -> observed running position.
type LapTrace map[int]map[int]int

// providerRows maps the provider's typed rows onto the canonical shape.
// Rows without a car number are dropped; rows without a position are kept
// because the trace can fill them in.
func providerRows(in []ProviderRow) []Row {
	rows := make([]Row, 0, len(in))
	for _, pr := range in {
		if pr.CarNumber <= 0 {
			continue
		}

		name := strings.TrimSpace(strings.TrimSpace(pr.FirstName) + " " + strings.TrimSpace(pr.LastName))
		if name == "" {
			name = "Car " + strconv.Itoa(pr.CarNumber)
		}

		team := strings.TrimSpace(pr.TeamName)
		if team == "" {
			team = "Unknown Team"
		}
		status := strings.TrimSpace(pr.Status)
		if status == "" {
			status = "finished"
		}

		rows = append(rows, Row{
			Position:    pr.Position,
			CarNumber:   pr.CarNumber,
			DriverName:  name,
			TeamName:    team,
			Laps:        pr.Laps,
			ElapsedTime: strings.TrimSpace(pr.TotalTime),
			Gap:         strings.TrimSpace(pr.GapToFirst),
			Status:      status,
			ClassName:   strings.TrimSpace(pr.ClassName),
		})
	}
	return rows
}
