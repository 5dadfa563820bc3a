package models

import "github.com/uptrace/bun"

// Result is one driver's classification in one session, unique per
// (session, driver). Position stays null until present in the source or
// derived from lap data.
type Result struct {
	bun.BaseModel `bun:"table:results,alias:r"`

	ID          int     `bun:"id,pk,autoincrement" json:"id"`
	SessionID   int     `bun:"session_id,notnull,unique:results_no_dupes" json:"sessionID"`
	DriverID    int     `bun:"driver_id,notnull,unique:results_no_dupes" json:"driverID"`
	TeamID      *int    `bun:"team_id" json:"teamID,omitempty"`
	Position    *int    `bun:"position" json:"position,omitempty"`
	Laps        *int    `bun:"laps" json:"laps,omitempty"`
	ElapsedTime *string `bun:"elapsed_time" json:"elapsedTime,omitempty"`
	Gap         *string `bun:"gap" json:"gap,omitempty"`
	Status      string  `bun:"status,notnull" json:"status"`
	ClassName   string  `bun:"class_name,notnull,default:''" json:"className,omitempty"`
}
