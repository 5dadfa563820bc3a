package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Feed item types.
const (
	FeedRaceResult = "race_result"
	FeedPreview    = "preview"
)

// FeedItem is one entry on a series' news timeline, generated from synced
// data: a race result summary or an upcoming event preview. An item is
// identified by (series, type, title), so regenerating refreshes in place
// instead of piling up duplicates.
type FeedItem struct {
	bun.BaseModel `bun:"table:feed_items,alias:fi"`

	ID          int       `bun:"id,pk,autoincrement" json:"id"`
	SeriesID    int       `bun:"series_id,notnull,unique:feed_items_no_dupes" json:"seriesID"`
	ItemType    string    `bun:"item_type,notnull,unique:feed_items_no_dupes" json:"itemType"`
	Title       string    `bun:"title,notnull,unique:feed_items_no_dupes" json:"title"`
	Summary     string    `bun:"summary,notnull" json:"summary"`
	PublishedAt time.Time `bun:"published_at,notnull" json:"publishedAt"`
}
