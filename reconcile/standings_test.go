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

// addSession creates an extra session on the fixture's event and fills it
// with ranked results for the given drivers, in order.
func addSession(t *testing.T, fx *fixture, db *bun.DB, sessionType, slug string, drivers []*models.Driver, class string) {
	t.Helper()
	addSessionAt(t, fx, db, sessionType, slug, drivers, class, 1)
}

// addSessionAt is addSession with the first finishing position offset, for
// fields that finish down the order.
func addSessionAt(t *testing.T, fx *fixture, db *bun.DB, sessionType, slug string, drivers []*models.Driver, class string, firstPos int) {
	t.Helper()
	ctx := context.Background()

	start := time.Date(2026, 6, 13, 14, 0, 0, 0, time.UTC)
	session := &models.Session{
		EventID:        fx.event.ID,
		Name:           slug,
		Slug:           slug,
		Type:           sessionType,
		ScheduledStart: &start,
		Status:         models.StatusCompleted,
	}
	_, err := db.NewInsert().Model(session).Exec(ctx)
	require.NoError(t, err)

	for i, d := range drivers {
		pos := firstPos + i
		result := &models.Result{
			SessionID: session.ID,
			DriverID:  d.ID,
			TeamID:    d.TeamID,
			Position:  &pos,
			Status:    "Classified",
			ClassName: class,
		}
		_, err := db.NewInsert().Model(result).Exec(ctx)
		require.NoError(t, err)
	}
}

func seedDrivers(t *testing.T, fx *fixture, db *bun.DB, names map[string]string) map[string]*models.Driver {
	t.Helper()
	ctx := context.Background()

	out := make(map[string]*models.Driver, len(names))
	num := 1
	for name, teamName := range names {
		team, err := ResolveTeam(ctx, db, fx.series.ID, teamName)
		require.NoError(t, err)
		driver, err := ResolveDriver(ctx, db, fx.series.ID, fx.series.Slug, name, num, &team.ID)
		require.NoError(t, err)
		out[name] = driver
		num++
	}
	return out
}

func TestDeriveFromResults(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	agg := NewAggregator(db, zap.NewNop())
	ctx := context.Background()

	drivers := seedDrivers(t, fx, db, map[string]string{
		"Alpha": "Team One",
		"Bravo": "Team One",
		"Carol": "Team Two",
	})

	// Two races: Alpha wins both, Bravo and Carol trade second place.
	addSession(t, fx, db, models.SessionRace, "race-1",
		[]*models.Driver{drivers["Alpha"], drivers["Bravo"], drivers["Carol"]}, "")
	addSession(t, fx, db, models.SessionRace, "race-2",
		[]*models.Driver{drivers["Alpha"], drivers["Carol"], drivers["Bravo"]}, "")
	// Qualifying never scores.
	addSession(t, fx, db, models.SessionQualifying, "quali",
		[]*models.Driver{drivers["Carol"], drivers["Alpha"], drivers["Bravo"]}, "")

	require.NoError(t, agg.DeriveFromResults(ctx, fx.season.ID, nil))

	var standings []models.DriverStanding
	require.NoError(t, db.NewSelect().Model(&standings).Order("position").Scan(ctx))
	require.Len(t, standings, 3)

	assert.Equal(t, drivers["Alpha"].ID, standings[0].DriverID)
	assert.Equal(t, 50.0, standings[0].Points)
	assert.Equal(t, 2, standings[0].Wins)
	// Bravo and Carol both sit on 18+15=33, tie broken by slug.
	assert.Equal(t, 33.0, standings[1].Points)
	assert.Equal(t, 33.0, standings[2].Points)
	assert.Equal(t, 2, standings[1].Position)
	assert.Equal(t, 3, standings[2].Position)
	assert.Equal(t, "Overall", standings[0].ClassName)

	var teamStandings []models.TeamStanding
	require.NoError(t, db.NewSelect().Model(&teamStandings).Order("position").Scan(ctx))
	require.Len(t, teamStandings, 2)
	assert.Equal(t, 83.0, teamStandings[0].Points, "Team One pools both cars' points")
	assert.Equal(t, 33.0, teamStandings[1].Points)
}

func TestDeriveFromResultsTwoRaceChampionship(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	agg := NewAggregator(db, zap.NewNop())
	ctx := context.Background()

	drivers := seedDrivers(t, fx, db, map[string]string{
		"Xavier": "Team One",
		"Yannick": "Team Two",
	})
	addSession(t, fx, db, models.SessionRace, "race-1",
		[]*models.Driver{drivers["Xavier"], drivers["Yannick"]}, "")
	addSession(t, fx, db, models.SessionRace, "race-2",
		[]*models.Driver{drivers["Xavier"], drivers["Yannick"]}, "")

	require.NoError(t, agg.DeriveFromResults(ctx, fx.season.ID, nil))

	var standings []models.DriverStanding
	require.NoError(t, db.NewSelect().Model(&standings).Order("position").Scan(ctx))
	require.Len(t, standings, 2)

	assert.Equal(t, drivers["Xavier"].ID, standings[0].DriverID)
	assert.Equal(t, 50.0, standings[0].Points)
	assert.Equal(t, 2, standings[0].Wins)
	assert.Equal(t, 1, standings[0].Position)
	assert.Equal(t, 36.0, standings[1].Points)
	assert.Equal(t, 0, standings[1].Wins)
	assert.Equal(t, 2, standings[1].Position)
}

func TestDeriveFromResultsClassScoped(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	agg := NewAggregator(db, zap.NewNop())
	ctx := context.Background()

	drivers := seedDrivers(t, fx, db, map[string]string{
		"Hyper": "Team One",
		"Proto": "Team Two",
	})
	addSession(t, fx, db, models.SessionRace, "race-h", []*models.Driver{drivers["Hyper"]}, "Hypercar")
	addSession(t, fx, db, models.SessionRace, "race-p", []*models.Driver{drivers["Proto"]}, "LMP2")

	require.NoError(t, agg.DeriveFromResults(ctx, fx.season.ID, nil))

	var standings []models.DriverStanding
	require.NoError(t, db.NewSelect().Model(&standings).Order("class_name").Scan(ctx))
	require.Len(t, standings, 2)
	assert.Equal(t, "Hypercar", standings[0].ClassName)
	assert.Equal(t, "LMP2", standings[1].ClassName)
	// Each class has its own leader.
	assert.Equal(t, 1, standings[0].Position)
	assert.Equal(t, 1, standings[1].Position)
}

func TestDeriveFromResultsAllOutOfThePoints(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	agg := NewAggregator(db, zap.NewNop())
	ctx := context.Background()

	drivers := seedDrivers(t, fx, db, map[string]string{
		"Pedro": "Team One",
		"Quinn": "Team Two",
	})
	// Both classified, but P11 and P12 score nothing on the default table.
	addSessionAt(t, fx, db, models.SessionRace, "race-1",
		[]*models.Driver{drivers["Pedro"], drivers["Quinn"]}, "", 11)

	err := agg.DeriveFromResults(ctx, fx.season.ID, nil)
	assert.ErrorIs(t, err, ErrNoStandings)

	count, err := db.NewSelect().Model((*models.DriverStanding)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "a pointless season publishes no standings")
	count, err = db.NewSelect().Model((*models.TeamStanding)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeriveFromResultsDropsNonScoringFinishers(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	agg := NewAggregator(db, zap.NewNop())
	ctx := context.Background()

	drivers := seedDrivers(t, fx, db, map[string]string{
		"Front": "Team One",
		"Back":  "Team Two",
	})
	addSession(t, fx, db, models.SessionRace, "race-1", []*models.Driver{drivers["Front"]}, "")
	addSessionAt(t, fx, db, models.SessionRace, "race-2", []*models.Driver{drivers["Back"]}, "", 11)

	require.NoError(t, agg.DeriveFromResults(ctx, fx.season.ID, nil))

	var standings []models.DriverStanding
	require.NoError(t, db.NewSelect().Model(&standings).Scan(ctx))
	require.Len(t, standings, 1)
	assert.Equal(t, drivers["Front"].ID, standings[0].DriverID)

	var teamStandings []models.TeamStanding
	require.NoError(t, db.NewSelect().Model(&teamStandings).Scan(ctx))
	require.Len(t, teamStandings, 1)
}

func TestDeriveFromResultsNoRankedRows(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	agg := NewAggregator(db, zap.NewNop())

	err := agg.DeriveFromResults(context.Background(), fx.season.ID, nil)
	assert.ErrorIs(t, err, ErrNoStandings)
}

func TestApplyFeedReplacesWholesale(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	agg := NewAggregator(db, zap.NewNop())
	ctx := context.Background()

	first := Feed{
		Drivers: []FeedRow{
			{DriverName: "Max Verstappen", CarNumber: 1, TeamName: "Red Bull", Points: 200, Wins: 7},
			{DriverName: "Lando Norris", CarNumber: 4, TeamName: "McLaren", Points: 180, Wins: 3},
		},
		Teams: []TeamFeedRow{
			{TeamName: "Red Bull", Points: 320, Wins: 7},
			{TeamName: "McLaren", Points: 310, Wins: 3},
		},
	}
	require.NoError(t, agg.ApplyFeed(ctx, fx.season.ID, first))

	// A later snapshot drops Norris entirely; his row must vanish.
	second := Feed{
		Drivers: []FeedRow{
			{DriverName: "Max Verstappen", CarNumber: 1, TeamName: "Red Bull", Points: 225, Wins: 8},
		},
		Teams: []TeamFeedRow{
			{TeamName: "Red Bull", Points: 345, Wins: 8},
		},
	}
	require.NoError(t, agg.ApplyFeed(ctx, fx.season.ID, second))

	var standings []models.DriverStanding
	require.NoError(t, db.NewSelect().Model(&standings).Scan(ctx))
	require.Len(t, standings, 1)
	assert.Equal(t, 225.0, standings[0].Points)
	assert.Equal(t, 1, standings[0].Position)

	count, err := db.NewSelect().Model((*models.TeamStanding)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestApplyFeedEmpty(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	agg := NewAggregator(db, zap.NewNop())

	err := agg.ApplyFeed(context.Background(), fx.season.ID, Feed{})
	assert.ErrorIs(t, err, ErrNoStandings)
}
