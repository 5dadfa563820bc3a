package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTeam(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	ctx := context.Background()

	team, err := ResolveTeam(ctx, db, fx.series.ID, "Porsche Penske Motorsport")
	require.NoError(t, err)
	assert.Equal(t, "porsche-penske-motorsport", team.Slug)
	assert.Equal(t, "Porsche Penske Motorsport", team.ShortName)
	assert.Equal(t, "#4D4D4D", team.Color)

	again, err := ResolveTeam(ctx, db, fx.series.ID, "Porsche Penske Motorsport")
	require.NoError(t, err)
	assert.Equal(t, team.ID, again.ID)
}

func TestResolveTeamTruncatesShortName(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))

	long := "An Extremely Long Endurance Racing Team Name That Keeps Going"
	team, err := ResolveTeam(context.Background(), db, fx.series.ID, long)
	require.NoError(t, err)
	assert.Len(t, team.ShortName, 50)
	assert.Equal(t, long, team.Name)
}

func TestResolveDriver(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	ctx := context.Background()

	teamA, err := ResolveTeam(ctx, db, fx.series.ID, "Team A")
	require.NoError(t, err)

	driver, err := ResolveDriver(ctx, db, fx.series.ID, fx.series.Slug, "Felipe Nasr", 7, &teamA.ID)
	require.NoError(t, err)
	assert.Equal(t, "wec-felipe-nasr-7", driver.Slug)
	require.NotNil(t, driver.TeamID)
	assert.Equal(t, teamA.ID, *driver.TeamID)

	// Same name in a different car is a different driver entry.
	other, err := ResolveDriver(ctx, db, fx.series.ID, fx.series.Slug, "Felipe Nasr", 4, &teamA.ID)
	require.NoError(t, err)
	assert.NotEqual(t, driver.ID, other.ID)

	// A later result in another team moves the link.
	teamB, err := ResolveTeam(ctx, db, fx.series.ID, "Team B")
	require.NoError(t, err)
	moved, err := ResolveDriver(ctx, db, fx.series.ID, fx.series.Slug, "Felipe Nasr", 7, &teamB.ID)
	require.NoError(t, err)
	assert.Equal(t, driver.ID, moved.ID)
	require.NotNil(t, moved.TeamID)
	assert.Equal(t, teamB.ID, *moved.TeamID)
}

func TestResolveCircuitFillsOnce(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	first, err := ResolveCircuit(ctx, db, "Sebring International Raceway", CircuitDefaults{Country: "USA"})
	require.NoError(t, err)
	assert.Equal(t, "USA", first.Country)
	assert.Empty(t, first.City)

	// Empty columns get filled on a later sighting, filled ones stay put.
	second, err := ResolveCircuit(ctx, db, "Sebring International Raceway",
		CircuitDefaults{Country: "United States", City: "Sebring", Timezone: "America/New_York"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "USA", second.Country)
	assert.Equal(t, "Sebring", second.City)
	assert.Equal(t, "America/New_York", second.Timezone)
}

func TestResolveSeason(t *testing.T) {
	db := testDB(t)
	fx := seedRaceWeekend(t, db, day(2026, 6, 13), day(2026, 6, 14))
	ctx := context.Background()

	season, err := ResolveSeason(ctx, db, fx.series.ID, 2027)
	require.NoError(t, err)
	again, err := ResolveSeason(ctx, db, fx.series.ID, 2027)
	require.NoError(t, err)
	assert.Equal(t, season.ID, again.ID)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
