package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/cgriffin/pitlane/models"
)

// Sessions without a scheduled end are assumed to run this long.
const defaultSessionLength = 3 * time.Hour

// AdvanceStatuses moves session and event statuses to match the clock.
//
// A session is live inside its scheduled window and completed after it. An
// event is live only while one of its sessions is, so the Saturday-night gap
// between qualifying and the race does not count, and it completes once its
// final day has passed. Live entries whose schedule moved into the future
// drop back to upcoming; completed is final. Comparisons happen in Go rather
// than in SQL so the same code runs against any dialect's date storage.
func AdvanceStatuses(ctx context.Context, db bun.IDB, now time.Time, log *zap.Logger) error {
	var sessions []models.Session
	if err := db.NewSelect().Model(&sessions).Scan(ctx); err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}

	liveEvents := make(map[int]bool)
	for i := range sessions {
		ss := &sessions[i]
		if sessionWindowCovers(ss, now) {
			liveEvents[ss.EventID] = true
		}
		if ss.Status == models.StatusCompleted {
			continue
		}
		next := sessionStatus(ss, now)
		if next == "" || next == ss.Status {
			continue
		}
		old := ss.Status
		ss.Status = next
		if _, err := db.NewUpdate().Model(ss).
			Column("status").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("updating session %d status: %w", ss.ID, err)
		}
		log.Info("session status changed",
			zap.String("session", ss.Slug),
			zap.String("from", old),
			zap.String("to", next))
	}

	var events []models.Event
	if err := db.NewSelect().Model(&events).
		Where("e.status != ?", models.StatusCompleted).
		Scan(ctx); err != nil {
		return fmt.Errorf("loading events: %w", err)
	}

	today := dateOnly(now)
	for i := range events {
		e := &events[i]
		next := eventStatus(e, today, liveEvents[e.ID])
		if next == "" || next == e.Status {
			continue
		}
		old := e.Status
		e.Status = next
		if _, err := db.NewUpdate().Model(e).
			Column("status").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("updating event %d status: %w", e.ID, err)
		}
		log.Info("event status changed",
			zap.String("event", e.Slug),
			zap.String("from", old),
			zap.String("to", next))
	}

	return nil
}

func sessionWindow(ss *models.Session) (time.Time, time.Time, bool) {
	if ss.ScheduledStart == nil {
		return time.Time{}, time.Time{}, false
	}
	start := *ss.ScheduledStart
	end := start.Add(defaultSessionLength)
	if ss.ScheduledEnd != nil {
		end = *ss.ScheduledEnd
	}
	return start, end, true
}

// The window is closed on both ends: a session is still live at the exact
// scheduled end instant.
func sessionWindowCovers(ss *models.Session, now time.Time) bool {
	start, end, ok := sessionWindow(ss)
	return ok && !now.Before(start) && !now.After(end)
}

func sessionStatus(ss *models.Session, now time.Time) string {
	start, end, ok := sessionWindow(ss)
	if !ok {
		return ""
	}
	switch {
	case now.Before(start):
		if ss.Status == models.StatusLive {
			return models.StatusUpcoming
		}
		return ""
	case !now.After(end):
		return models.StatusLive
	default:
		return models.StatusCompleted
	}
}

func eventStatus(e *models.Event, today time.Time, sessionLive bool) string {
	if !e.EndDate.IsZero() && today.After(dateOnly(e.EndDate)) {
		return models.StatusCompleted
	}
	if sessionLive {
		return models.StatusLive
	}
	if e.Status == models.StatusLive {
		return models.StatusUpcoming
	}
	return ""
}
