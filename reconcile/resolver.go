package reconcile

import (
	"context"
	"fmt"
	"strconv"

	"github.com/uptrace/bun"

	bundb "github.com/cgriffin/pitlane/db"
	"github.com/cgriffin/pitlane/models"
)

const defaultTeamColor = "#4D4D4D"

// CircuitDefaults are descriptive fields a calendar source may know about a
// venue. They fill empty columns on first sight and never overwrite.
type CircuitDefaults struct {
	Country  string
	City     string
	Timezone string
}

// ResolveCircuit returns the circuit for name, creating it if needed. Works
// inside or outside a transaction, which is why it takes bun.IDB.
func ResolveCircuit(ctx context.Context, idb bun.IDB, name string, defaults CircuitDefaults) (*models.Circuit, error) {
	slug := models.Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("circuit name %q produces an empty slug", name)
	}

	circuit := new(models.Circuit)
	err := idb.NewSelect().Model(circuit).Where("slug = ?", slug).Scan(ctx)
	if err == nil {
		return fillCircuit(ctx, idb, circuit, defaults)
	}

	circuit = &models.Circuit{
		Slug:     slug,
		Name:     name,
		Country:  defaults.Country,
		City:     defaults.City,
		Timezone: defaults.Timezone,
	}
	if _, err := idb.NewInsert().Model(circuit).Exec(ctx); err != nil {
		if !bundb.IsUniqueViolation(err) {
			return nil, fmt.Errorf("inserting circuit %q: %w", slug, err)
		}
		// lost the race, the row exists now
		circuit = new(models.Circuit)
		if err := idb.NewSelect().Model(circuit).Where("slug = ?", slug).Scan(ctx); err != nil {
			return nil, fmt.Errorf("rereading circuit %q: %w", slug, err)
		}
		return fillCircuit(ctx, idb, circuit, defaults)
	}
	return circuit, nil
}

func fillCircuit(ctx context.Context, idb bun.IDB, circuit *models.Circuit, defaults CircuitDefaults) (*models.Circuit, error) {
	changed := false
	if circuit.Country == "" && defaults.Country != "" {
		circuit.Country = defaults.Country
		changed = true
	}
	if circuit.City == "" && defaults.City != "" {
		circuit.City = defaults.City
		changed = true
	}
	if circuit.Timezone == "" && defaults.Timezone != "" {
		circuit.Timezone = defaults.Timezone
		changed = true
	}
	if !changed {
		return circuit, nil
	}
	if _, err := idb.NewUpdate().Model(circuit).WherePK().Exec(ctx); err != nil {
		return nil, fmt.Errorf("updating circuit %q: %w", circuit.Slug, err)
	}
	return circuit, nil
}

// ResolveSeason returns the (series, year) season, creating it if needed.
func ResolveSeason(ctx context.Context, idb bun.IDB, seriesID, year int) (*models.Season, error) {
	season := new(models.Season)
	err := idb.NewSelect().Model(season).
		Where("series_id = ?", seriesID).
		Where("year = ?", year).
		Scan(ctx)
	if err == nil {
		return season, nil
	}

	season = &models.Season{SeriesID: seriesID, Year: year}
	if _, err := idb.NewInsert().Model(season).Exec(ctx); err != nil {
		if !bundb.IsUniqueViolation(err) {
			return nil, fmt.Errorf("inserting season %d/%d: %w", seriesID, year, err)
		}
		season = new(models.Season)
		if err := idb.NewSelect().Model(season).
			Where("series_id = ?", seriesID).
			Where("year = ?", year).
			Scan(ctx); err != nil {
			return nil, fmt.Errorf("rereading season %d/%d: %w", seriesID, year, err)
		}
	}
	return season, nil
}

// ResolveTeam returns the team named by a result row, creating it with default
// short name and color if needed. Re-syncs never overwrite those defaults.
func ResolveTeam(ctx context.Context, idb bun.IDB, seriesID int, name string) (*models.Team, error) {
	slug := models.Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("team name %q produces an empty slug", name)
	}

	team := new(models.Team)
	err := idb.NewSelect().Model(team).
		Where("series_id = ?", seriesID).
		Where("slug = ?", slug).
		Scan(ctx)
	if err == nil {
		return team, nil
	}

	short := name
	if len(short) > 50 {
		short = short[:50]
	}
	team = &models.Team{
		SeriesID:  seriesID,
		Name:      name,
		Slug:      slug,
		ShortName: short,
		Color:     defaultTeamColor,
	}
	if _, err := idb.NewInsert().Model(team).Exec(ctx); err != nil {
		if !bundb.IsUniqueViolation(err) {
			return nil, fmt.Errorf("inserting team %q: %w", slug, err)
		}
		team = new(models.Team)
		if err := idb.NewSelect().Model(team).
			Where("series_id = ?", seriesID).
			Where("slug = ?", slug).
			Scan(ctx); err != nil {
			return nil, fmt.Errorf("rereading team %q: %w", slug, err)
		}
	}
	return team, nil
}

// ResolveDriver returns the driver for (name, car number) within a series,
// creating it if needed. The slug folds in the car number so two drivers with
// the same name never collide. An existing driver's team link is moved when a
// newer result places them elsewhere.
func ResolveDriver(ctx context.Context, idb bun.IDB, seriesID int, seriesSlug, name string, number int, teamID *int) (*models.Driver, error) {
	slug := models.Slugify(seriesSlug + " " + name + " " + strconv.Itoa(number))

	driver := new(models.Driver)
	err := idb.NewSelect().Model(driver).
		Where("series_id = ?", seriesID).
		Where("slug = ?", slug).
		Scan(ctx)
	if err == nil {
		return retargetDriver(ctx, idb, driver, teamID)
	}

	driver = &models.Driver{
		SeriesID: seriesID,
		TeamID:   teamID,
		Name:     name,
		Slug:     slug,
		Number:   number,
	}
	if _, err := idb.NewInsert().Model(driver).Exec(ctx); err != nil {
		if !bundb.IsUniqueViolation(err) {
			return nil, fmt.Errorf("inserting driver %q: %w", slug, err)
		}
		driver = new(models.Driver)
		if err := idb.NewSelect().Model(driver).
			Where("series_id = ?", seriesID).
			Where("slug = ?", slug).
			Scan(ctx); err != nil {
			return nil, fmt.Errorf("rereading driver %q: %w", slug, err)
		}
		return retargetDriver(ctx, idb, driver, teamID)
	}
	return driver, nil
}

func retargetDriver(ctx context.Context, idb bun.IDB, driver *models.Driver, teamID *int) (*models.Driver, error) {
	if teamID == nil || (driver.TeamID != nil && *driver.TeamID == *teamID) {
		return driver, nil
	}
	driver.TeamID = teamID
	if _, err := idb.NewUpdate().Model(driver).
		Column("team_id").
		WherePK().
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("moving driver %q to team %d: %w", driver.Slug, *teamID, err)
	}
	return driver, nil
}
