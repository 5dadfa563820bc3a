package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	bundb "github.com/cgriffin/pitlane/db"
	"github.com/cgriffin/pitlane/models"
	"github.com/cgriffin/pitlane/normalize"
	"github.com/cgriffin/pitlane/reconcile"
)

// Orchestrator drives the periodic sync loops: calendar refresh, result
// sweeps, standings recomputes and status ticks, per configured series.
type Orchestrator struct {
	db      *bun.DB
	log     *zap.Logger
	rec     *reconcile.Reconciler
	agg     *reconcile.Aggregator
	feed    *FeedGenerator
	sources map[string]SeriesSource

	StatusInterval   time.Duration
	ResultsInterval  time.Duration
	CalendarInterval time.Duration
}

func NewOrchestrator(db *bun.DB, log *zap.Logger, sources map[string]SeriesSource) *Orchestrator {
	return &Orchestrator{
		db:      db,
		log:     log,
		rec:     reconcile.NewReconciler(db, log),
		agg:     reconcile.NewAggregator(db, log),
		feed:    NewFeedGenerator(db, log),
		sources: sources,

		StatusInterval:   5 * time.Minute,
		ResultsInterval:  time.Hour,
		CalendarInterval: 24 * time.Hour,
	}
}

// Series lists the slugs this orchestrator has sources for.
func (o *Orchestrator) Series() []string {
	out := make([]string, 0, len(o.sources))
	for slug := range o.sources {
		out = append(out, slug)
	}
	return out
}

func (o *Orchestrator) series(ctx context.Context, slug string) (*models.Series, SeriesSource, error) {
	source, ok := o.sources[slug]
	if !ok {
		return nil, SeriesSource{}, fmt.Errorf("no source configured for series %q", slug)
	}
	series := new(models.Series)
	if err := o.db.NewSelect().Model(series).Where("slug = ?", slug).Scan(ctx); err != nil {
		return nil, SeriesSource{}, fmt.Errorf("series %q not seeded: %w", slug, err)
	}
	return series, source, nil
}

// SyncCalendar upserts the year's events and sessions. The event slug is the
// stable identity: re-syncs move dates, circuits and rounds but never the
// slug, so results attached to an event survive schedule changes.
func (o *Orchestrator) SyncCalendar(ctx context.Context, seriesSlug string, year int) error {
	series, source, err := o.series(ctx, seriesSlug)
	if err != nil {
		return err
	}

	schedule, err := source.Schedule.Calendar(ctx, year)
	if err != nil {
		return fmt.Errorf("fetching %s %d calendar: %w", seriesSlug, year, err)
	}
	if len(schedule) == 0 {
		o.log.Debug("calendar empty", zap.String("series", seriesSlug), zap.Int("year", year))
		return nil
	}

	season, err := reconcile.ResolveSeason(ctx, o.db, series.ID, year)
	if err != nil {
		return err
	}

	for _, se := range schedule {
		if err := o.upsertEvent(ctx, series, season, year, se); err != nil {
			return err
		}
	}

	o.log.Info("calendar synced",
		zap.String("series", seriesSlug),
		zap.Int("year", year),
		zap.Int("events", len(schedule)))
	return nil
}

func (o *Orchestrator) upsertEvent(ctx context.Context, series *models.Series, season *models.Season, year int, se ScheduleEvent) error {
	circuit, err := reconcile.ResolveCircuit(ctx, o.db, se.CircuitName, se.Circuit)
	if err != nil {
		return err
	}

	slug := models.Slugify(fmt.Sprintf("%d %s", year, se.Name))
	event := new(models.Event)
	err = o.db.NewSelect().Model(event).
		Where("series_id = ?", series.ID).
		Where("slug = ?", slug).
		Scan(ctx)
	switch {
	case err == nil:
		event.Name = se.Name
		event.RoundNumber = se.RoundNumber
		event.CircuitID = circuit.ID
		event.StartDate = se.StartDate
		event.EndDate = se.EndDate
		if _, err := o.db.NewUpdate().Model(event).
			Column("name", "round_number", "circuit_id", "start_date", "end_date").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("updating event %q: %w", slug, err)
		}
	default:
		event = &models.Event{
			SeriesID:    series.ID,
			SeasonID:    season.ID,
			CircuitID:   circuit.ID,
			Name:        se.Name,
			Slug:        slug,
			RoundNumber: se.RoundNumber,
			StartDate:   se.StartDate,
			EndDate:     se.EndDate,
			Status:      models.StatusUpcoming,
		}
		if _, err := o.db.NewInsert().Model(event).Exec(ctx); err != nil {
			if !bundb.IsUniqueViolation(err) {
				return fmt.Errorf("inserting event %q: %w", slug, err)
			}
			if err := o.db.NewSelect().Model(event).
				Where("series_id = ?", series.ID).
				Where("slug = ?", slug).
				Scan(ctx); err != nil {
				return fmt.Errorf("rereading event %q: %w", slug, err)
			}
		}
	}

	for _, ss := range se.Sessions {
		if err := o.upsertSession(ctx, event, ss); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) upsertSession(ctx context.Context, event *models.Event, ss ScheduleSession) error {
	slug := ss.Slug
	if slug == "" {
		slug = models.Slugify(ss.Name)
	}

	session := new(models.Session)
	err := o.db.NewSelect().Model(session).
		Where("event_id = ?", event.ID).
		Where("slug = ?", slug).
		Scan(ctx)
	if err == nil {
		session.Name = ss.Name
		session.Type = ss.Type
		session.ScheduledStart = ss.ScheduledStart
		session.ScheduledEnd = ss.ScheduledEnd
		if _, err := o.db.NewUpdate().Model(session).
			Column("name", "type", "scheduled_start", "scheduled_end").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("updating session %q: %w", slug, err)
		}
		return nil
	}

	session = &models.Session{
		EventID:        event.ID,
		Name:           ss.Name,
		Slug:           slug,
		Type:           ss.Type,
		ScheduledStart: ss.ScheduledStart,
		ScheduledEnd:   ss.ScheduledEnd,
		Status:         models.StatusUpcoming,
	}
	if _, err := o.db.NewInsert().Model(session).Exec(ctx); err != nil {
		if !bundb.IsUniqueViolation(err) {
			return fmt.Errorf("inserting session %q: %w", slug, err)
		}
	}
	return nil
}

// resultSessionTypes are the session types worth sweeping for results.
var resultSessionTypes = []string{
	models.SessionQualifying,
	models.SessionSprintQualifying,
	models.SessionSprint,
	models.SessionRace,
}

// SyncResults sweeps the year's finished events for sessions that still have
// no results. Source gaps and unparseable artifacts are logged and skipped;
// they resolve themselves on a later sweep.
func (o *Orchestrator) SyncResults(ctx context.Context, seriesSlug string, year int) error {
	series, source, err := o.series(ctx, seriesSlug)
	if err != nil {
		return err
	}

	season := new(models.Season)
	err = o.db.NewSelect().Model(season).
		Where("series_id = ?", series.ID).
		Where("year = ?", year).
		Scan(ctx)
	if err != nil {
		o.log.Debug("no season to sweep", zap.String("series", seriesSlug), zap.Int("year", year))
		return nil
	}

	var events []models.Event
	if err := o.db.NewSelect().Model(&events).
		Where("season_id = ?", season.ID).
		Order("start_date").
		Scan(ctx); err != nil {
		return fmt.Errorf("loading events for %s %d: %w", seriesSlug, year, err)
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i := range events {
		event := &events[i]
		// Sweep from the event's final day onward, when results can exist.
		if event.EndDate.IsZero() || event.EndDate.After(today) {
			continue
		}
		if err := o.sweepEvent(ctx, source, event, year, now); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) sweepEvent(ctx context.Context, source SeriesSource, event *models.Event, year int, now time.Time) error {
	var sessions []models.Session
	if err := o.db.NewSelect().Model(&sessions).
		Where("event_id = ?", event.ID).
		Where("type IN (?)", bun.In(resultSessionTypes)).
		Scan(ctx); err != nil {
		return fmt.Errorf("loading sessions for event %q: %w", event.Slug, err)
	}

	for i := range sessions {
		session := &sessions[i]
		count, err := o.db.NewSelect().Model((*models.Result)(nil)).
			Where("session_id = ?", session.ID).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("counting results for session %q: %w", session.Slug, err)
		}
		if count > 0 {
			continue
		}

		candidates, err := source.Results.ResultCandidates(ctx, year, event.Slug, session.Slug)
		if err != nil {
			o.log.Warn("result fetch failed",
				zap.String("event", event.Slug),
				zap.String("session", session.Slug),
				zap.Error(err))
			continue
		}
		rows, err := normalize.FirstRows(candidates)
		if err != nil {
			o.log.Warn("result artifact unusable",
				zap.String("event", event.Slug),
				zap.String("session", session.Slug),
				zap.Error(err))
			continue
		}

		outcome, err := o.rec.ReconcileSession(ctx, session.ID, rows, now)
		if err != nil {
			o.log.Error("reconcile failed",
				zap.String("event", event.Slug),
				zap.String("session", session.Slug),
				zap.Error(err))
			continue
		}
		if outcome == reconcile.OutcomeNoData {
			o.log.Debug("no classification yet",
				zap.String("event", event.Slug),
				zap.String("session", session.Slug))
		}
		if outcome == reconcile.OutcomeApplied && session.Type == models.SessionRace {
			if err := o.feed.RaceResultSummary(ctx, session.ID, now); err != nil {
				o.log.Warn("result feed item failed",
					zap.String("event", event.Slug),
					zap.Error(err))
			}
		}
	}
	return nil
}

// SyncStandings refreshes the season's standings, preferring an official feed
// and falling back to derivation from stored results.
func (o *Orchestrator) SyncStandings(ctx context.Context, seriesSlug string, year int) error {
	series, source, err := o.series(ctx, seriesSlug)
	if err != nil {
		return err
	}

	season := new(models.Season)
	err = o.db.NewSelect().Model(season).
		Where("series_id = ?", series.ID).
		Where("year = ?", year).
		Scan(ctx)
	if err != nil {
		return nil
	}

	if source.Standings != nil {
		feed, err := source.Standings.SeasonStandings(ctx, year)
		switch {
		case err == nil:
			if err := o.agg.ApplyFeed(ctx, season.ID, feed); err == nil {
				return nil
			} else if !errors.Is(err, reconcile.ErrNoStandings) {
				return err
			}
		case errors.Is(err, fs.ErrNotExist):
			// no official snapshot, derive below
		default:
			o.log.Warn("standings feed failed",
				zap.String("series", seriesSlug),
				zap.Int("year", year),
				zap.Error(err))
		}
	}

	err = o.agg.DeriveFromResults(ctx, season.ID, source.PointsTable)
	if errors.Is(err, reconcile.ErrNoStandings) {
		o.log.Debug("nothing to rank yet", zap.String("series", seriesSlug), zap.Int("year", year))
		return nil
	}
	return err
}

// SyncSeries runs one full pass (calendar, results, standings) for a series
// and year, tagged with a run ID so interleaved series logs stay readable.
func (o *Orchestrator) SyncSeries(ctx context.Context, seriesSlug string, year int) error {
	log := o.log.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("series", seriesSlug),
		zap.Int("year", year))

	log.Info("sync pass started")
	if err := o.SyncCalendar(ctx, seriesSlug, year); err != nil {
		return err
	}
	if err := o.SyncResults(ctx, seriesSlug, year); err != nil {
		return err
	}
	if err := o.SyncStandings(ctx, seriesSlug, year); err != nil {
		return err
	}
	log.Info("sync pass finished")
	return nil
}

func (o *Orchestrator) syncAll(ctx context.Context, year int) {
	for slug := range o.sources {
		if err := o.SyncSeries(ctx, slug, year); err != nil {
			o.log.Error("sync pass failed", zap.String("series", slug), zap.Error(err))
		}
	}
	o.refreshPreviews(ctx)
}

func (o *Orchestrator) refreshPreviews(ctx context.Context) {
	if err := o.feed.UpcomingPreviews(ctx, time.Now()); err != nil {
		o.log.Error("preview refresh failed", zap.Error(err))
	}
}

func (o *Orchestrator) tickStatuses(ctx context.Context) {
	if err := reconcile.AdvanceStatuses(ctx, o.db, time.Now(), o.log); err != nil {
		o.log.Error("status tick failed", zap.Error(err))
	}
}

// Run performs an initial full pass and then loops until ctx is cancelled:
// statuses every StatusInterval, result sweeps every ResultsInterval and a
// calendar refresh every CalendarInterval.
func (o *Orchestrator) Run(ctx context.Context) {
	o.syncAll(ctx, time.Now().Year())
	o.tickStatuses(ctx)

	status := time.NewTicker(o.StatusInterval)
	results := time.NewTicker(o.ResultsInterval)
	calendar := time.NewTicker(o.CalendarInterval)
	defer status.Stop()
	defer results.Stop()
	defer calendar.Stop()

	for {
		select {
		case <-ctx.Done():
			o.log.Info("sync loop stopped")
			return
		case <-status.C:
			o.tickStatuses(ctx)
		case <-results.C:
			year := time.Now().Year()
			for slug := range o.sources {
				if err := o.SyncResults(ctx, slug, year); err != nil {
					o.log.Error("result sweep failed", zap.String("series", slug), zap.Error(err))
				}
				if err := o.SyncStandings(ctx, slug, year); err != nil {
					o.log.Error("standings refresh failed", zap.String("series", slug), zap.Error(err))
				}
			}
			o.refreshPreviews(ctx)
		case <-calendar.C:
			o.syncAll(ctx, time.Now().Year())
		}
	}
}

// Backfill syncs a span of past seasons, oldest first. Seasons that already
// hold results are skipped so re-running a backfill is cheap.
func (o *Orchestrator) Backfill(ctx context.Context, seriesSlug string, from, to int) error {
	series, _, err := o.series(ctx, seriesSlug)
	if err != nil {
		return err
	}

	for year := from; year <= to; year++ {
		var existing int
		if err := o.db.NewRaw(`
			SELECT COUNT(*)
			FROM results AS r
			JOIN sessions AS ss ON ss.id = r.session_id
			JOIN events AS e ON e.id = ss.event_id
			JOIN seasons AS se ON se.id = e.season_id
			WHERE se.series_id = ? AND se.year = ?`,
			series.ID, year,
		).Scan(ctx, &existing); err != nil {
			return fmt.Errorf("checking %s %d backfill state: %w", seriesSlug, year, err)
		}
		if existing > 0 {
			o.log.Info("season already backfilled",
				zap.String("series", seriesSlug),
				zap.Int("year", year),
				zap.Int("results", existing))
			continue
		}
		if err := o.SyncSeries(ctx, seriesSlug, year); err != nil {
			return err
		}
	}
	return nil
}
