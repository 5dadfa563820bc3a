package reconcile

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/cgriffin/pitlane/models"
	"github.com/cgriffin/pitlane/normalize"
)

// Outcome says what ReconcileSession did with a batch of rows.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeSkippedExisting
	OutcomeNoData
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeSkippedExisting:
		return "skipped_existing"
	case OutcomeNoData:
		return "no_data"
	}
	return "unknown"
}

// Reconciler writes normalized classification rows into the database,
// creating teams and drivers as they are first seen.
type Reconciler struct {
	db  *bun.DB
	log *zap.Logger
}

func NewReconciler(db *bun.DB, log *zap.Logger) *Reconciler {
	return &Reconciler{db: db, log: log}
}

// ReconcileSession persists rows as the session's classification. Sessions
// that already have results are skipped, so a re-run of the same sweep is a
// no-op. The whole batch lands in one transaction: a duplicate driver within
// the batch aborts it untouched. On success the session is marked completed,
// and its event too once the event's final day has been reached.
func (rc *Reconciler) ReconcileSession(ctx context.Context, sessionID int, rows []normalize.Row, now time.Time) (Outcome, error) {
	if len(rows) == 0 {
		return OutcomeNoData, nil
	}

	session := new(models.Session)
	if err := rc.db.NewSelect().Model(session).Where("ss.id = ?", sessionID).Scan(ctx); err != nil {
		return 0, fmt.Errorf("loading session %d: %w", sessionID, err)
	}
	event := new(models.Event)
	if err := rc.db.NewSelect().Model(event).Where("e.id = ?", session.EventID).Scan(ctx); err != nil {
		return 0, fmt.Errorf("loading event %d: %w", session.EventID, err)
	}
	series := new(models.Series)
	if err := rc.db.NewSelect().Model(series).Where("s.id = ?", event.SeriesID).Scan(ctx); err != nil {
		return 0, fmt.Errorf("loading series %d: %w", event.SeriesID, err)
	}

	existing, err := rc.db.NewSelect().Model((*models.Result)(nil)).
		Where("session_id = ?", sessionID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting results for session %d: %w", sessionID, err)
	}
	if existing > 0 {
		rc.log.Debug("session already has results",
			zap.Int("session_id", sessionID),
			zap.Int("count", existing))
		return OutcomeSkippedExisting, nil
	}

	err = rc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		seen := make(map[string]struct{}, len(rows))
		for _, row := range rows {
			team, err := ResolveTeam(ctx, tx, series.ID, row.TeamName)
			if err != nil {
				return err
			}
			driver, err := ResolveDriver(ctx, tx, series.ID, series.Slug, row.DriverName, row.CarNumber, &team.ID)
			if err != nil {
				return err
			}
			if _, dup := seen[driver.Slug]; dup {
				return fmt.Errorf("driver %q appears twice in session %d classification", driver.Slug, sessionID)
			}
			seen[driver.Slug] = struct{}{}

			result := &models.Result{
				SessionID:   sessionID,
				DriverID:    driver.ID,
				TeamID:      &team.ID,
				Position:    nzInt(row.Position),
				Laps:        nzInt(row.Laps),
				ElapsedTime: nzString(row.ElapsedTime),
				Gap:         nzString(row.Gap),
				Status:      row.Status,
				ClassName:   row.ClassName,
			}
			if _, err := tx.NewInsert().Model(result).Exec(ctx); err != nil {
				return fmt.Errorf("inserting result for driver %q: %w", driver.Slug, err)
			}
		}

		if _, err := tx.NewUpdate().Model(session).
			Set("status = ?", models.StatusCompleted).
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("completing session %d: %w", sessionID, err)
		}

		// The event only closes once its final day has arrived, so a race
		// result landing early in a multi-session weekend leaves it open.
		if event.Status != models.StatusCompleted && !event.EndDate.IsZero() && !dateOnly(now).Before(dateOnly(event.EndDate)) {
			if _, err := tx.NewUpdate().Model(event).
				Set("status = ?", models.StatusCompleted).
				WherePK().
				Exec(ctx); err != nil {
				return fmt.Errorf("completing event %d: %w", event.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	rc.log.Info("reconciled session results",
		zap.Int("session_id", sessionID),
		zap.String("event", event.Slug),
		zap.Int("rows", len(rows)))
	return OutcomeApplied, nil
}

func nzInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func nzString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
