package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cgriffin/pitlane/normalize"
	"github.com/cgriffin/pitlane/reconcile"
)

// FileSource serves calendar, result and standings artifacts from a
// directory tree, one per series:
//
//	<root>/<series>/<year>/calendar.json
//	<root>/<series>/<year>/standings.json
//	<root>/<series>/<year>/<event-slug>/<session-slug>.{json,csv,html}
//
// Result files are graded by extension: a JSON export is the official
// classification, CSV the provisional timing sheet and HTML a scraped page.
type FileSource struct {
	root   string
	series string
}

func NewFileSource(root, series string) *FileSource {
	return &FileSource{root: root, series: series}
}

// FileSources builds a file-backed source bundle for each series slug under
// one data directory.
func FileSources(root string, seriesSlugs ...string) map[string]SeriesSource {
	out := make(map[string]SeriesSource, len(seriesSlugs))
	for _, slug := range seriesSlugs {
		fs := NewFileSource(root, slug)
		out[slug] = SeriesSource{Schedule: fs, Results: fs, Standings: fs}
	}
	return out
}

func (f *FileSource) yearDir(year int) string {
	return filepath.Join(f.root, f.series, strconv.Itoa(year))
}

type calendarSession struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Type  string `json:"type"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type calendarEvent struct {
	Name    string `json:"name"`
	Round   int    `json:"round"`
	Circuit struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		City     string `json:"city"`
		Timezone string `json:"timezone"`
	} `json:"circuit"`
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Sessions  []calendarSession `json:"sessions"`
}

func (f *FileSource) Calendar(ctx context.Context, year int) ([]ScheduleEvent, error) {
	data, err := os.ReadFile(filepath.Join(f.yearDir(year), "calendar.json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var raw []calendarEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s %d calendar: %w", f.series, year, err)
	}

	events := make([]ScheduleEvent, 0, len(raw))
	for _, ce := range raw {
		start, err := parseDate(ce.StartDate)
		if err != nil {
			return nil, fmt.Errorf("event %q start date: %w", ce.Name, err)
		}
		end, err := parseDate(ce.EndDate)
		if err != nil {
			return nil, fmt.Errorf("event %q end date: %w", ce.Name, err)
		}

		se := ScheduleEvent{
			Name:        ce.Name,
			RoundNumber: ce.Round,
			CircuitName: ce.Circuit.Name,
			Circuit: reconcile.CircuitDefaults{
				Country:  ce.Circuit.Country,
				City:     ce.Circuit.City,
				Timezone: ce.Circuit.Timezone,
			},
			StartDate: start,
			EndDate:   end,
		}
		for _, cs := range ce.Sessions {
			ss := ScheduleSession{Name: cs.Name, Slug: cs.Slug, Type: cs.Type}
			if cs.Start != "" {
				t, err := time.Parse(time.RFC3339, cs.Start)
				if err != nil {
					return nil, fmt.Errorf("session %q start: %w", cs.Name, err)
				}
				ss.ScheduledStart = &t
			}
			if cs.End != "" {
				t, err := time.Parse(time.RFC3339, cs.End)
				if err != nil {
					return nil, fmt.Errorf("session %q end: %w", cs.Name, err)
				}
				ss.ScheduledEnd = &t
			}
			se.Sessions = append(se.Sessions, ss)
		}
		events = append(events, se)
	}
	return events, nil
}

func (f *FileSource) ResultCandidates(ctx context.Context, year int, eventSlug, sessionSlug string) ([]normalize.Candidate, error) {
	dir := filepath.Join(f.yearDir(year), eventSlug)

	var candidates []normalize.Candidate
	variants := []struct {
		ext   string
		grade normalize.Grade
	}{
		{"json", normalize.GradeOfficial},
		{"csv", normalize.GradeProvisional},
		{"html", normalize.GradeUnofficial},
	}
	for _, v := range variants {
		data, err := os.ReadFile(filepath.Join(dir, sessionSlug+"."+v.ext))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		switch v.ext {
		case "json":
			candidates = append(candidates, normalize.Candidate{Grade: v.grade, Artifact: normalize.JSONArtifact(data)})
		case "csv":
			candidates = append(candidates, normalize.Candidate{Grade: v.grade, Artifact: normalize.CSVArtifact(data)})
		case "html":
			candidates = append(candidates, normalize.Candidate{Grade: v.grade, Artifact: normalize.HTMLArtifact(data)})
		}
	}
	return candidates, nil
}

type standingsFile struct {
	Drivers []struct {
		Driver string  `json:"driver"`
		Number int     `json:"number"`
		Team   string  `json:"team"`
		Class  string  `json:"class"`
		Points float64 `json:"points"`
		Wins   int     `json:"wins"`
	} `json:"drivers"`
	Teams []struct {
		Team   string  `json:"team"`
		Class  string  `json:"class"`
		Points float64 `json:"points"`
		Wins   int     `json:"wins"`
	} `json:"teams"`
}

func (f *FileSource) SeasonStandings(ctx context.Context, year int) (reconcile.Feed, error) {
	data, err := os.ReadFile(filepath.Join(f.yearDir(year), "standings.json"))
	if err != nil {
		// fs.ErrNotExist passes through so callers fall back to derivation
		return reconcile.Feed{}, err
	}

	var raw standingsFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return reconcile.Feed{}, fmt.Errorf("parsing %s %d standings: %w", f.series, year, err)
	}

	feed := reconcile.Feed{}
	for _, d := range raw.Drivers {
		feed.Drivers = append(feed.Drivers, reconcile.FeedRow{
			DriverName: d.Driver,
			CarNumber:  d.Number,
			TeamName:   d.Team,
			ClassName:  d.Class,
			Points:     d.Points,
			Wins:       d.Wins,
		})
	}
	for _, t := range raw.Teams {
		feed.Teams = append(feed.Teams, reconcile.TeamFeedRow{
			TeamName:  t.Team,
			ClassName: t.Class,
			Points:    t.Points,
			Wins:      t.Wins,
		})
	}
	return feed, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
