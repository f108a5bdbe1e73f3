package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/SlickRick2121/Ten-K-sub000/internal/config"
	"github.com/SlickRick2121/Ten-K-sub000/internal/httpapi"
	"github.com/SlickRick2121/Ten-K-sub000/internal/registry"
	"github.com/SlickRick2121/Ten-K-sub000/internal/stats"
	"github.com/SlickRick2121/Ten-K-sub000/internal/visitors"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *gorm.DB
	recorder := stats.Recorder(stats.Noop{})
	if cfg.DatabaseURL != "" {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			logger.Fatal("open database", zap.Error(err))
		}
		store, err := stats.New(db, logger)
		if err != nil {
			logger.Fatal("init stats store", zap.Error(err))
		}
		recorder = store
	} else {
		logger.Info("no DATABASE_URL, game results will not be persisted")
	}

	tracker, err := visitors.New(db, cfg.BlockedCIDRs, logger)
	if err != nil {
		logger.Fatal("init visitor tracker", zap.Error(err))
	}

	reg := registry.New(ctx, registry.Config{
		BustDelay: cfg.BustDelay,
		Recorder:  recorder,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(reg, recorder, tracker, cfg.StaticDir, logger),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
