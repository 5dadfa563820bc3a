package reconcile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/cgriffin/pitlane/models"
)

// ErrNoStandings means the season has no ranked race results to score yet.
// Callers treat it as "nothing to publish", not a failure.
var ErrNoStandings = errors.New("no ranked race results for season")

// PointsTable maps finishing position to championship points.
type PointsTable map[int]float64

// DefaultPointsTable is the 25-point scale shared by every seeded series.
var DefaultPointsTable = PointsTable{
	1: 25, 2: 18, 3: 15, 4: 12, 5: 10,
	6: 8, 7: 6, 8: 4, 9: 2, 10: 1,
}

// FeedRow is one driver line from an official standings feed.
type FeedRow struct {
	DriverName string
	CarNumber  int
	TeamName   string
	ClassName  string
	Points     float64
	Wins       int
}

// TeamFeedRow is one team line from an official standings feed.
type TeamFeedRow struct {
	TeamName  string
	ClassName string
	Points    float64
	Wins      int
}

// Feed is a full official standings snapshot for one season.
type Feed struct {
	Drivers []FeedRow
	Teams   []TeamFeedRow
}

// Aggregator maintains the season standings tables. Standings are a derived
// view: every run replaces the season's rows wholesale, so entries that
// vanish from the source vanish here too.
type Aggregator struct {
	db  *bun.DB
	log *zap.Logger
}

func NewAggregator(db *bun.DB, log *zap.Logger) *Aggregator {
	return &Aggregator{db: db, log: log}
}

type standingEntry struct {
	id     int
	slug   string
	class  string
	points float64
	wins   int
}

// ApplyFeed replaces the season's standings with an official snapshot,
// resolving any drivers and teams the feed mentions before results ever did.
func (a *Aggregator) ApplyFeed(ctx context.Context, seasonID int, feed Feed) error {
	if len(feed.Drivers) == 0 && len(feed.Teams) == 0 {
		return ErrNoStandings
	}

	season := new(models.Season)
	if err := a.db.NewSelect().Model(season).Where("se.id = ?", seasonID).Scan(ctx); err != nil {
		return fmt.Errorf("loading season %d: %w", seasonID, err)
	}
	series := new(models.Series)
	if err := a.db.NewSelect().Model(series).Where("s.id = ?", season.SeriesID).Scan(ctx); err != nil {
		return fmt.Errorf("loading series %d: %w", season.SeriesID, err)
	}

	err := a.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		drivers := make([]standingEntry, 0, len(feed.Drivers))
		for _, fr := range feed.Drivers {
			team, err := ResolveTeam(ctx, tx, series.ID, fr.TeamName)
			if err != nil {
				return err
			}
			driver, err := ResolveDriver(ctx, tx, series.ID, series.Slug, fr.DriverName, fr.CarNumber, &team.ID)
			if err != nil {
				return err
			}
			drivers = append(drivers, standingEntry{
				id:     driver.ID,
				slug:   driver.Slug,
				class:  className(fr.ClassName),
				points: fr.Points,
				wins:   fr.Wins,
			})
		}

		teams := make([]standingEntry, 0, len(feed.Teams))
		for _, fr := range feed.Teams {
			team, err := ResolveTeam(ctx, tx, series.ID, fr.TeamName)
			if err != nil {
				return err
			}
			teams = append(teams, standingEntry{
				id:     team.ID,
				slug:   team.Slug,
				class:  className(fr.ClassName),
				points: fr.Points,
				wins:   fr.Wins,
			})
		}

		return replaceStandings(ctx, tx, seasonID, drivers, teams)
	})
	if err != nil {
		return err
	}

	a.log.Info("applied official standings",
		zap.Int("season_id", seasonID),
		zap.Int("drivers", len(feed.Drivers)),
		zap.Int("teams", len(feed.Teams)))
	return nil
}

type scoredResult struct {
	Position   int     `bun:"position"`
	ClassName  string  `bun:"class_name"`
	DriverID   int     `bun:"driver_id"`
	DriverSlug string  `bun:"driver_slug"`
	TeamID     *int    `bun:"team_id"`
	TeamSlug   *string `bun:"team_slug"`
}

// DeriveFromResults recomputes the season's standings from stored race
// results, used when no official feed exists for the series. Only ranked
// race-session rows inside the points table score; a win is a race finished
// in first. ErrNoStandings comes back when nothing scored at all.
func (a *Aggregator) DeriveFromResults(ctx context.Context, seasonID int, points PointsTable) error {
	if points == nil {
		points = DefaultPointsTable
	}

	var scored []scoredResult
	err := a.db.NewRaw(`
		SELECT r.position, r.class_name, d.id AS driver_id, d.slug AS driver_slug,
		       t.id AS team_id, t.slug AS team_slug
		FROM results AS r
		JOIN sessions AS ss ON ss.id = r.session_id
		JOIN events AS e ON e.id = ss.event_id
		JOIN drivers AS d ON d.id = r.driver_id
		LEFT JOIN teams AS t ON t.id = r.team_id
		WHERE e.season_id = ? AND ss.type = ? AND r.position IS NOT NULL`,
		seasonID, models.SessionRace,
	).Scan(ctx, &scored)
	if err != nil {
		return fmt.Errorf("loading scored results for season %d: %w", seasonID, err)
	}
	if len(scored) == 0 {
		return ErrNoStandings
	}

	type key struct {
		id    int
		class string
	}
	driverAcc := make(map[key]*standingEntry)
	teamAcc := make(map[key]*standingEntry)

	for _, sr := range scored {
		pts := points[sr.Position]
		// Finishing outside the points never enters the standings, so a
		// season scored entirely off the table stays empty.
		if pts <= 0 {
			continue
		}
		win := 0
		if sr.Position == 1 {
			win = 1
		}
		cls := className(sr.ClassName)

		dk := key{id: sr.DriverID, class: cls}
		de, ok := driverAcc[dk]
		if !ok {
			de = &standingEntry{id: sr.DriverID, slug: sr.DriverSlug, class: cls}
			driverAcc[dk] = de
		}
		de.points += pts
		de.wins += win

		if sr.TeamID != nil {
			tk := key{id: *sr.TeamID, class: cls}
			te, ok := teamAcc[tk]
			if !ok {
				slug := ""
				if sr.TeamSlug != nil {
					slug = *sr.TeamSlug
				}
				te = &standingEntry{id: *sr.TeamID, slug: slug, class: cls}
				teamAcc[tk] = te
			}
			te.points += pts
			te.wins += win
		}
	}

	if len(driverAcc) == 0 {
		return ErrNoStandings
	}

	drivers := make([]standingEntry, 0, len(driverAcc))
	for _, e := range driverAcc {
		drivers = append(drivers, *e)
	}
	teams := make([]standingEntry, 0, len(teamAcc))
	for _, e := range teamAcc {
		teams = append(teams, *e)
	}

	err = a.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return replaceStandings(ctx, tx, seasonID, drivers, teams)
	})
	if err != nil {
		return err
	}

	a.log.Info("derived standings from results",
		zap.Int("season_id", seasonID),
		zap.Int("drivers", len(drivers)),
		zap.Int("teams", len(teams)))
	return nil
}

// rankEntries orders entries within each class by points then wins, with the
// slug as a stable final tie-break, and assigns positions 1..N per class.
func rankEntries(entries []standingEntry) map[*standingEntry]int {
	byClass := make(map[string][]*standingEntry)
	for i := range entries {
		e := &entries[i]
		byClass[e.class] = append(byClass[e.class], e)
	}

	positions := make(map[*standingEntry]int, len(entries))
	for _, group := range byClass {
		sort.Slice(group, func(i, j int) bool {
			if group[i].points != group[j].points {
				return group[i].points > group[j].points
			}
			if group[i].wins != group[j].wins {
				return group[i].wins > group[j].wins
			}
			return group[i].slug < group[j].slug
		})
		for i, e := range group {
			positions[e] = i + 1
		}
	}
	return positions
}

func replaceStandings(ctx context.Context, tx bun.Tx, seasonID int, drivers, teams []standingEntry) error {
	if _, err := tx.NewDelete().Model((*models.DriverStanding)(nil)).
		Where("season_id = ?", seasonID).
		Exec(ctx); err != nil {
		return fmt.Errorf("clearing driver standings for season %d: %w", seasonID, err)
	}
	if _, err := tx.NewDelete().Model((*models.TeamStanding)(nil)).
		Where("season_id = ?", seasonID).
		Exec(ctx); err != nil {
		return fmt.Errorf("clearing team standings for season %d: %w", seasonID, err)
	}

	for e, pos := range rankEntries(drivers) {
		row := &models.DriverStanding{
			SeasonID:  seasonID,
			DriverID:  e.id,
			ClassName: e.class,
			Position:  pos,
			Points:    e.points,
			Wins:      e.wins,
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("inserting driver standing: %w", err)
		}
	}
	for e, pos := range rankEntries(teams) {
		row := &models.TeamStanding{
			SeasonID:  seasonID,
			TeamID:    e.id,
			ClassName: e.class,
			Position:  pos,
			Points:    e.points,
			Wins:      e.wins,
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("inserting team standing: %w", err)
		}
	}
	return nil
}

func className(name string) string {
	if name == "" {
		return "Overall"
	}
	return name
}
