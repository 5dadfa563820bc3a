package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	bundb "github.com/cgriffin/pitlane/db"
	"github.com/cgriffin/pitlane/models"
)

// previewHorizon is how far ahead of an event its preview item appears.
const previewHorizon = 7 * 24 * time.Hour

// FeedGenerator turns synced data into timeline items: a result summary when
// a race's classification lands and a preview for each event coming up soon.
type FeedGenerator struct {
	db  *bun.DB
	log *zap.Logger
}

func NewFeedGenerator(db *bun.DB, log *zap.Logger) *FeedGenerator {
	return &FeedGenerator{db: db, log: log}
}

type podiumRow struct {
	Position   int    `bun:"position"`
	DriverName string `bun:"driver_name"`
}

// RaceResultSummary publishes the result item for a race session, refreshing
// the summary if the item already exists. Sessions without a full podium are
// left alone until one lands.
func (g *FeedGenerator) RaceResultSummary(ctx context.Context, sessionID int, now time.Time) error {
	session := new(models.Session)
	if err := g.db.NewSelect().Model(session).Where("ss.id = ?", sessionID).Scan(ctx); err != nil {
		return fmt.Errorf("loading session %d: %w", sessionID, err)
	}
	event := new(models.Event)
	if err := g.db.NewSelect().Model(event).Where("e.id = ?", session.EventID).Scan(ctx); err != nil {
		return fmt.Errorf("loading event %d: %w", session.EventID, err)
	}

	var podium []podiumRow
	err := g.db.NewRaw(`
		SELECT r.position, d.name AS driver_name
		FROM results AS r
		JOIN drivers AS d ON d.id = r.driver_id
		WHERE r.session_id = ? AND r.position IS NOT NULL
		ORDER BY r.position
		LIMIT 3`, sessionID,
	).Scan(ctx, &podium)
	if err != nil {
		return fmt.Errorf("loading podium for session %d: %w", sessionID, err)
	}
	if len(podium) < 3 {
		g.log.Debug("podium incomplete, no result item", zap.String("session", session.Slug))
		return nil
	}

	item := &models.FeedItem{
		SeriesID:    event.SeriesID,
		ItemType:    models.FeedRaceResult,
		Title:       fmt.Sprintf("%s - Race Result", event.Name),
		Summary:     resultSummary(event.Name, podium[0].DriverName, podium[1].DriverName, podium[2].DriverName),
		PublishedAt: now,
	}
	return g.publish(ctx, item, true)
}

// UpcomingPreviews publishes a preview item for every upcoming event starting
// within the next week. Previews that already exist are left untouched.
func (g *FeedGenerator) UpcomingPreviews(ctx context.Context, now time.Time) error {
	var events []models.Event
	if err := g.db.NewSelect().Model(&events).
		Where("e.status = ?", models.StatusUpcoming).
		Scan(ctx); err != nil {
		return fmt.Errorf("loading upcoming events: %w", err)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i := range events {
		e := &events[i]
		if e.StartDate.IsZero() || e.StartDate.Before(today) || e.StartDate.After(today.Add(previewHorizon)) {
			continue
		}
		item := &models.FeedItem{
			SeriesID:    e.SeriesID,
			ItemType:    models.FeedPreview,
			Title:       fmt.Sprintf("Race Preview: %s", e.Name),
			Summary:     fmt.Sprintf("The %s is coming up on %s. Don't miss the action!", e.Name, e.StartDate.Format("2006-01-02")),
			PublishedAt: now,
		}
		if err := g.publish(ctx, item, false); err != nil {
			return err
		}
	}
	return nil
}

func resultSummary(eventName, winner, second, third string) string {
	return fmt.Sprintf("%s wins the %s! %s finishes P2, %s P3.", winner, eventName, second, third)
}

// publish inserts the item, or when one already exists under the same
// (series, type, title) either refreshes it or leaves it be.
func (g *FeedGenerator) publish(ctx context.Context, item *models.FeedItem, refresh bool) error {
	existing := new(models.FeedItem)
	err := g.db.NewSelect().Model(existing).
		Where("series_id = ?", item.SeriesID).
		Where("item_type = ?", item.ItemType).
		Where("title = ?", item.Title).
		Scan(ctx)
	if err == nil {
		if !refresh {
			return nil
		}
		existing.Summary = item.Summary
		existing.PublishedAt = item.PublishedAt
		if _, err := g.db.NewUpdate().Model(existing).
			Column("summary", "published_at").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("updating feed item %q: %w", item.Title, err)
		}
		return nil
	}

	if _, err := g.db.NewInsert().Model(item).Exec(ctx); err != nil {
		if !bundb.IsUniqueViolation(err) {
			return fmt.Errorf("inserting feed item %q: %w", item.Title, err)
		}
		// lost an insert race, the winner's item stands
		return nil
	}
	g.log.Info("feed item published",
		zap.String("type", item.ItemType),
		zap.String("title", item.Title))
	return nil
}
