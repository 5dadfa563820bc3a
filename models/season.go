package models

import "github.com/uptrace/bun"

// Season is one (series, year) pair, created lazily on first calendar sync.
type Season struct {
	bun.BaseModel `bun:"table:seasons,alias:se"`

	ID       int `bun:"id,pk,autoincrement" json:"id"`
	SeriesID int `bun:"series_id,notnull,unique:seasons_no_dupes" json:"seriesID"`
	Year     int `bun:"year,notnull,unique:seasons_no_dupes" json:"year"`
}
