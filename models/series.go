package models

import "github.com/uptrace/bun"

// Status values shared by events and sessions.
const (
	StatusUpcoming  = "upcoming"
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusCompleted = "completed"
)

// Series is one championship (F1, WEC, IMSA). Seeded at startup, immutable after.
type Series struct {
	bun.BaseModel `bun:"table:series,alias:s"`

	ID    int    `bun:"id,pk,autoincrement" json:"id"`
	Slug  string `bun:"slug,notnull,unique" json:"slug"`
	Name  string `bun:"name,notnull" json:"name"`
	Color string `bun:"color" json:"color,omitempty"`
}
