package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Session types recognised by the reconciler and standings aggregator.
const (
	SessionPractice         = "practice"
	SessionQualifying       = "qualifying"
	SessionSprintQualifying = "sprint_qualifying"
	SessionSprint           = "sprint"
	SessionRace             = "race"
)

// Session is a timed activity within an event (practice, qualifying, sprint,
// race). At most one race-type session per event is assumed.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:ss"`

	ID             int        `bun:"id,pk,autoincrement" json:"id"`
	EventID        int        `bun:"event_id,notnull,unique:sessions_no_dupes" json:"eventID"`
	Name           string     `bun:"name,notnull" json:"name"`
	Slug           string     `bun:"slug,notnull,unique:sessions_no_dupes" json:"slug"`
	Type           string     `bun:"type,notnull" json:"type"`
	ScheduledStart *time.Time `bun:"scheduled_start" json:"scheduledStart,omitempty"`
	ScheduledEnd   *time.Time `bun:"scheduled_end" json:"scheduledEnd,omitempty"`
	Status         string     `bun:"status,notnull,default:'upcoming'" json:"status"`
}
