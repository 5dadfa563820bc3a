package models

import "github.com/uptrace/bun"

// DriverStanding is one driver's aggregate rank within a season, scoped by
// class for multi-class series. Standings are a derived view: every
// aggregation run deletes and reinserts the whole season's rows.
type DriverStanding struct {
	bun.BaseModel `bun:"table:driver_standings,alias:ds"`

	ID        int     `bun:"id,pk,autoincrement" json:"id"`
	SeasonID  int     `bun:"season_id,notnull,unique:driver_standings_no_dupes" json:"seasonID"`
	DriverID  int     `bun:"driver_id,notnull,unique:driver_standings_no_dupes" json:"driverID"`
	ClassName string  `bun:"class_name,notnull,default:'Overall',unique:driver_standings_no_dupes" json:"className"`
	Position  int     `bun:"position,notnull" json:"position"`
	Points    float64 `bun:"points,notnull,default:0" json:"points"`
	Wins      int     `bun:"wins,notnull,default:0" json:"wins"`
}

// TeamStanding mirrors DriverStanding for teams.
type TeamStanding struct {
	bun.BaseModel `bun:"table:team_standings,alias:ts"`

	ID        int     `bun:"id,pk,autoincrement" json:"id"`
	SeasonID  int     `bun:"season_id,notnull,unique:team_standings_no_dupes" json:"seasonID"`
	TeamID    int     `bun:"team_id,notnull,unique:team_standings_no_dupes" json:"teamID"`
	ClassName string  `bun:"class_name,notnull,default:'Overall',unique:team_standings_no_dupes" json:"className"`
	Position  int     `bun:"position,notnull" json:"position"`
	Points    float64 `bun:"points,notnull,default:0" json:"points"`
	Wins      int     `bun:"wins,notnull,default:0" json:"wins"`
}
