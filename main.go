package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/cgriffin/pitlane/config"
	"github.com/cgriffin/pitlane/db"
	"github.com/cgriffin/pitlane/handlers"
	applog "github.com/cgriffin/pitlane/logger"
	"github.com/cgriffin/pitlane/sync"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bdb := db.Setup(cfg)
	defer bdb.Close()

	if err := db.CreateTables(ctx, bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}
	if err := db.SeedSeries(ctx, bdb); err != nil {
		logger.Fatal("seed series failed", zap.Error(err))
	}

	orc := sync.NewOrchestrator(bdb, logger,
		sync.FileSources(cfg.DataDir, "f1", "wec", "imsa"))
	orc.StatusInterval = cfg.StatusInterval
	orc.ResultsInterval = cfg.ResultsInterval
	orc.CalendarInterval = cfg.CalendarInterval

	if from, to, ok, err := cfg.HistoricalRange(); err != nil {
		logger.Fatal("bad historical range", zap.Error(err))
	} else if ok {
		go func() {
			for _, slug := range orc.Series() {
				if err := orc.Backfill(ctx, slug, from, to); err != nil {
					logger.Error("backfill failed", zap.String("series", slug), zap.Error(err))
				}
			}
		}()
	}

	go orc.Run(ctx)

	h := handlers.New(bdb, orc)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())

	e.GET("/healthz", h.Healthz)
	e.GET("/standings", h.Standings)
	e.POST("/sync/:series/:year", h.TriggerSync)

	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server exited", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
