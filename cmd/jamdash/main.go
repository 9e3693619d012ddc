package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"jamdash/internal/config"
	"jamdash/internal/database"
	"jamdash/internal/progress"
	"jamdash/internal/server"
	"jamdash/internal/services/collections"
	"jamdash/internal/services/merge"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := database.Seed(db, cfg.SeedDemoData); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	hub := progress.NewHub()
	mergeSvc := merge.NewService(db, hub, cfg.MergeBatch, cfg.TaskRetention)
	collectionsSvc := collections.NewService(db)

	if err := mergeSvc.RecoverStaleTasks(); err != nil {
		log.Fatalf("Failed to recover stale tasks: %v", err)
	}

	mergeSvc.StartJanitor()
	defer mergeSvc.StopJanitor()

	srv := server.New(collectionsSvc, mergeSvc, hub)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.ListenAddr).Info("Server listening")
		if err := srv.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
