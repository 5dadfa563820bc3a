package sync

import (
	"context"
	"time"

	"github.com/cgriffin/pitlane/normalize"
	"github.com/cgriffin/pitlane/reconcile"
)

// ScheduleSession is one session row from a calendar source.
type ScheduleSession struct {
	Name           string
	Slug           string
	Type           string
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
}

// ScheduleEvent is one race weekend from a calendar source. The event's
// stored slug is built from (year, Name), so renaming an event creates a new
// one while date or circuit changes update in place.
type ScheduleEvent struct {
	Name        string
	RoundNumber int
	CircuitName string
	Circuit     reconcile.CircuitDefaults
	StartDate   time.Time
	EndDate     time.Time
	Sessions    []ScheduleSession
}

// ScheduleSource lists a series' calendar for a year.
type ScheduleSource interface {
	Calendar(ctx context.Context, year int) ([]ScheduleEvent, error)
}

// ResultSource fetches classification artifacts for one session, best grade
// first. An empty slice with a nil error means the source has nothing yet,
// which is retryable, not fatal.
type ResultSource interface {
	ResultCandidates(ctx context.Context, year int, eventSlug, sessionSlug string) ([]normalize.Candidate, error)
}

// StandingsFeed fetches an official standings snapshot for a season.
type StandingsFeed interface {
	SeasonStandings(ctx context.Context, year int) (reconcile.Feed, error)
}

// SeriesSource bundles everything the orchestrator needs for one series.
// Standings may be nil for series without an official feed; their standings
// are derived from stored results instead. A nil PointsTable means the
// default 25-point scale.
type SeriesSource struct {
	Schedule    ScheduleSource
	Results     ResultSource
	Standings   StandingsFeed
	PointsTable reconcile.PointsTable
}
