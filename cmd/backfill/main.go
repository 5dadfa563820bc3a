// cmd/backfill/main.go
// Loads historical seasons from the artifact data directory into the
// database, one series at a time. Seasons that already hold results are
// skipped, so it is safe to re-run.
//
// Usage:
//
//	DB_PASS="pgpass" \
//	HISTORICAL_SYNC="2012-2024" \
//	DATA_DIR="data" \
//	go run ./cmd/backfill
package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/cgriffin/pitlane/config"
	bundb "github.com/cgriffin/pitlane/db"
	applog "github.com/cgriffin/pitlane/logger"
	"github.com/cgriffin/pitlane/sync"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()
	from, to, ok, err := cfg.HistoricalRange()
	if err != nil {
		log.Fatal(err)
	}
	if !ok {
		log.Fatal("HISTORICAL_SYNC required, e.g.: 2012-2024")
	}

	logger, err := applog.New(cfg.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	pgDB := bundb.Setup(cfg)
	defer pgDB.Close()

	// Idempotent, the tables usually exist already
	if err := bundb.CreateTables(ctx, pgDB); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}
	if err := bundb.SeedSeries(ctx, pgDB); err != nil {
		logger.Fatal("seed series failed", zap.Error(err))
	}

	orc := sync.NewOrchestrator(pgDB, logger,
		sync.FileSources(cfg.DataDir, "f1", "wec", "imsa"))

	for _, slug := range orc.Series() {
		logger.Info("backfilling series",
			zap.String("series", slug),
			zap.Int("from", from),
			zap.Int("to", to))
		if err := orc.Backfill(ctx, slug, from, to); err != nil {
			logger.Fatal("backfill failed", zap.String("series", slug), zap.Error(err))
		}
	}
	logger.Info("backfill complete")
}
