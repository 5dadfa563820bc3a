package models

import "github.com/uptrace/bun"

// Driver is keyed by a slug built from series, display name and car number so
// same-named drivers in different cars never collide. TeamID tracks the most
// recently observed team and is overwritten whenever a newer result links the
// driver elsewhere.
type Driver struct {
	bun.BaseModel `bun:"table:drivers,alias:d"`

	ID       int    `bun:"id,pk,autoincrement" json:"id"`
	SeriesID int    `bun:"series_id,notnull,unique:drivers_no_dupes" json:"seriesID"`
	TeamID   *int   `bun:"team_id" json:"teamID,omitempty"`
	Name     string `bun:"name,notnull" json:"name"`
	Slug     string `bun:"slug,notnull,unique:drivers_no_dupes" json:"slug"`
	Number   int    `bun:"number" json:"number,omitempty"`
}
