package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Event is one race weekend. The slug is derived from (year, event name) and
// is the stable identity: calendar re-syncs update dates and circuit linkage
// but never the slug.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID          int       `bun:"id,pk,autoincrement" json:"id"`
	SeriesID    int       `bun:"series_id,notnull,unique:events_no_dupes" json:"seriesID"`
	SeasonID    int       `bun:"season_id,notnull" json:"seasonID"`
	CircuitID   int       `bun:"circuit_id,notnull" json:"circuitID"`
	Name        string    `bun:"name,notnull" json:"name"`
	Slug        string    `bun:"slug,notnull,unique:events_no_dupes" json:"slug"`
	RoundNumber int       `bun:"round_number" json:"roundNumber,omitempty"`
	StartDate   time.Time `bun:"start_date,type:date,nullzero" json:"startDate,omitempty"`
	EndDate     time.Time `bun:"end_date,type:date,nullzero" json:"endDate,omitempty"`
	Status      string    `bun:"status,notnull,default:'upcoming'" json:"status"`
}
