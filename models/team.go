package models

import "github.com/uptrace/bun"

// Team is keyed by (series, slugified name). Short name and color are
// defaults filled at creation, never overwritten on re-sync.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID        int    `bun:"id,pk,autoincrement" json:"id"`
	SeriesID  int    `bun:"series_id,notnull,unique:teams_no_dupes" json:"seriesID"`
	Name      string `bun:"name,notnull" json:"name"`
	Slug      string `bun:"slug,notnull,unique:teams_no_dupes" json:"slug"`
	ShortName string `bun:"short_name" json:"shortName,omitempty"`
	Color     string `bun:"color" json:"color,omitempty"`
}
