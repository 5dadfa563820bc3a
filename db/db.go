package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/cgriffin/pitlane/config"
	"github.com/cgriffin/pitlane/models"
)

// Setup opens a PostgreSQL connection using the provided config.
func Setup(cfg *config.Config) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN())))
	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(context.Background()); err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	return db
}

// CreateTables creates all tables in dependency order. Composite natural-key
// constraints are declared as bun unique groups on the models, so they exist
// on any dialect the schema is created against.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.Series)(nil),
		(*models.Season)(nil),
		(*models.Circuit)(nil),
		(*models.Event)(nil),
		(*models.Session)(nil),
		(*models.Team)(nil),
		(*models.Driver)(nil),
		(*models.Result)(nil),
		(*models.DriverStanding)(nil),
		(*models.TeamStanding)(nil),
		(*models.FeedItem)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	return nil
}

// IsUniqueViolation reports whether err is a natural-key constraint hit.
// Resolvers treat these as "already exists - reread", never as fatal.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	// sqlite, used by the test store
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
