package db

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/cgriffin/pitlane/models"
)

// SeedSeries inserts the supported championships. Ingestion looks series up
// by slug and refuses to run without them, so this must happen before the
// first sync. Idempotent: existing rows are left untouched.
func SeedSeries(ctx context.Context, db *bun.DB) error {
	series := []models.Series{
		{Slug: "f1", Name: "Formula 1", Color: "#E10600"},
		{Slug: "wec", Name: "FIA World Endurance Championship", Color: "#00A19C"},
		{Slug: "imsa", Name: "IMSA WeatherTech SportsCar Championship", Color: "#DA291C"},
	}

	_, err := db.NewInsert().
		Model(&series).
		On("CONFLICT (slug) DO NOTHING").
		Exec(ctx)
	return err
}
