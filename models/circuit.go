package models

import "github.com/uptrace/bun"

// Circuit is a physical venue, keyed by slugified name. Descriptive fields
// are filled from the first source that knows them and left alone after.
type Circuit struct {
	bun.BaseModel `bun:"table:circuits,alias:c"`

	ID       int    `bun:"id,pk,autoincrement" json:"id"`
	Slug     string `bun:"slug,notnull,unique" json:"slug"`
	Name     string `bun:"name,notnull" json:"name"`
	Country  string `bun:"country" json:"country,omitempty"`
	City     string `bun:"city" json:"city,omitempty"`
	Timezone string `bun:"timezone" json:"timezone,omitempty"`
}
