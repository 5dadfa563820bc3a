package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/cgriffin/pitlane/models"
)

func sessionStatusAfterTick(t *testing.T, db *bun.DB, id int, now time.Time) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, AdvanceStatuses(ctx, db, now, zap.NewNop()))
	session := new(models.Session)
	require.NoError(t, db.NewSelect().Model(session).Where("ss.id = ?", id).Scan(ctx))
	return session.Status
}

func TestAdvanceStatusesSession(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	start := *fx.session.ScheduledStart
	end := *fx.session.ScheduledEnd

	assert.Equal(t, models.StatusUpcoming,
		sessionStatusAfterTick(t, db, fx.session.ID, start.Add(-time.Hour)))
	assert.Equal(t, models.StatusLive,
		sessionStatusAfterTick(t, db, fx.session.ID, start.Add(time.Minute)))
	assert.Equal(t, models.StatusCompleted,
		sessionStatusAfterTick(t, db, fx.session.ID, end.Add(time.Minute)))

	// Completed is final even if the clock somehow runs backwards.
	assert.Equal(t, models.StatusCompleted,
		sessionStatusAfterTick(t, db, fx.session.ID, start.Add(time.Minute)))
}

func TestAdvanceStatusesWindowEndInclusive(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	end := *fx.session.ScheduledEnd

	// The exact scheduled end instant still counts as inside the window,
	// for the session and for the event it keeps live.
	assert.Equal(t, models.StatusLive,
		sessionStatusAfterTick(t, db, fx.session.ID, end))
	assert.Equal(t, models.StatusLive,
		eventStatusAfterTick(t, db, fx.event.ID, end))

	assert.Equal(t, models.StatusCompleted,
		sessionStatusAfterTick(t, db, fx.session.ID, end.Add(time.Second)))
}

func TestAdvanceStatusesSessionDefaultWindow(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	ctx := context.Background()

	start := time.Date(2026, 6, 13, 10, 0, 0, 0, time.UTC)
	_, err := db.NewUpdate().Model((*models.Session)(nil)).
		Set("scheduled_start = ?", start).
		Set("scheduled_end = NULL").
		Where("id = ?", fx.session.ID).
		Exec(ctx)
	require.NoError(t, err)

	assert.Equal(t, models.StatusLive,
		sessionStatusAfterTick(t, db, fx.session.ID, start.Add(2*time.Hour)))
	assert.Equal(t, models.StatusCompleted,
		sessionStatusAfterTick(t, db, fx.session.ID, start.Add(3*time.Hour+time.Minute)))
}

func TestAdvanceStatusesSessionPostponed(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	ctx := context.Background()
	start := *fx.session.ScheduledStart

	assert.Equal(t, models.StatusLive,
		sessionStatusAfterTick(t, db, fx.session.ID, start.Add(time.Minute)))

	// The schedule moves a week out while the session shows live.
	newStart := start.Add(7 * 24 * time.Hour)
	newEnd := newStart.Add(defaultSessionLength)
	_, err := db.NewUpdate().Model((*models.Session)(nil)).
		Set("scheduled_start = ?", newStart).
		Set("scheduled_end = ?", newEnd).
		Where("id = ?", fx.session.ID).
		Exec(ctx)
	require.NoError(t, err)

	assert.Equal(t, models.StatusUpcoming,
		sessionStatusAfterTick(t, db, fx.session.ID, start.Add(2*time.Minute)))
}

func eventStatusAfterTick(t *testing.T, db *bun.DB, id int, now time.Time) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, AdvanceStatuses(ctx, db, now, zap.NewNop()))
	event := new(models.Event)
	require.NoError(t, db.NewSelect().Model(event).Where("e.id = ?", id).Scan(ctx))
	return event.Status
}

func TestAdvanceStatusesEvent(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	raceStart := *fx.session.ScheduledStart
	raceEnd := *fx.session.ScheduledEnd

	assert.Equal(t, models.StatusUpcoming,
		eventStatusAfterTick(t, db, fx.event.ID, day(2026, 6, 10)))
	assert.Equal(t, models.StatusLive,
		eventStatusAfterTick(t, db, fx.event.ID, raceStart.Add(time.Hour)))
	// The gap after the session and before the event's end is not live.
	assert.Equal(t, models.StatusUpcoming,
		eventStatusAfterTick(t, db, fx.event.ID, raceEnd.Add(time.Hour)))
	assert.Equal(t, models.StatusCompleted,
		eventStatusAfterTick(t, db, fx.event.ID, day(2026, 6, 15)))
}

func TestAdvanceStatusesEventPostponed(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	ctx := context.Background()
	raceStart := *fx.session.ScheduledStart

	assert.Equal(t, models.StatusLive,
		eventStatusAfterTick(t, db, fx.event.ID, raceStart.Add(time.Minute)))

	// The whole weekend slips a month.
	newStart := raceStart.Add(30 * 24 * time.Hour)
	_, err := db.NewUpdate().Model((*models.Session)(nil)).
		Set("scheduled_start = ?", newStart).
		Set("scheduled_end = ?", newStart.Add(4*time.Hour)).
		Where("id = ?", fx.session.ID).
		Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewUpdate().Model((*models.Event)(nil)).
		Set("start_date = ?", day(2026, 7, 13)).
		Set("end_date = ?", day(2026, 7, 14)).
		Where("id = ?", fx.event.ID).
		Exec(ctx)
	require.NoError(t, err)

	assert.Equal(t, models.StatusUpcoming,
		eventStatusAfterTick(t, db, fx.event.ID, raceStart.Add(2*time.Minute)))
}
