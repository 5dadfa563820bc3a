package reconcile

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	bundb "github.com/cgriffin/pitlane/db"
	"github.com/cgriffin/pitlane/models"
)

func testDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, bundb.CreateTables(context.Background(), db))
	t.Cleanup(func() { db.Close() })
	return db
}

type fixture struct {
	series  *models.Series
	season  *models.Season
	circuit *models.Circuit
	event   *models.Event
	session *models.Session
}

// seedRaceWeekend inserts one series with a single race weekend whose race
// session is scheduled inside the event's date range.
func seedRaceWeekend(t *testing.T, db *bun.DB, start, end time.Time) *fixture {
	t.Helper()
	ctx := context.Background()

	series := &models.Series{Slug: "wec", Name: "World Endurance Championship"}
	_, err := db.NewInsert().Model(series).Exec(ctx)
	require.NoError(t, err)

	season := &models.Season{SeriesID: series.ID, Year: start.Year()}
	_, err = db.NewInsert().Model(season).Exec(ctx)
	require.NoError(t, err)

	circuit := &models.Circuit{Slug: "circuit-de-la-sarthe", Name: "Circuit de la Sarthe"}
	_, err = db.NewInsert().Model(circuit).Exec(ctx)
	require.NoError(t, err)

	event := &models.Event{
		SeriesID:  series.ID,
		SeasonID:  season.ID,
		CircuitID: circuit.ID,
		Name:      "24 Hours of Le Mans",
		Slug:      "2026-24-hours-of-le-mans",
		StartDate: start,
		EndDate:   end,
		Status:    models.StatusUpcoming,
	}
	_, err = db.NewInsert().Model(event).Exec(ctx)
	require.NoError(t, err)

	raceStart := start.Add(14 * time.Hour)
	raceEnd := raceStart.Add(4 * time.Hour)
	session := &models.Session{
		EventID:        event.ID,
		Name:           "Race",
		Slug:           "race",
		Type:           models.SessionRace,
		ScheduledStart: &raceStart,
		ScheduledEnd:   &raceEnd,
		Status:         models.StatusUpcoming,
	}
	_, err = db.NewInsert().Model(session).Exec(ctx)
	require.NoError(t, err)

	return &fixture{series: series, season: season, circuit: circuit, event: event, session: session}
}
