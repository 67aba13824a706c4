package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"deepsight-be/internal/bootstrap"
	"deepsight-be/internal/config"
	"deepsight-be/internal/server"
	"deepsight-be/internal/tracer"
	"deepsight-be/pkg/database"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (optional for the file-backed corpus)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.Open(cfg.Database.Connection, cfg.Database.Verbose)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, gormDB, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer container.Close()

	shutdownTracer := tracer.InitTracer(container.Logger)
	defer shutdownTracer(context.Background())

	srv := server.New(cfg, container)

	// 4. Run everything under one group; the first failure stops the rest.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return container.ConsumerService.Consume(gctx)
	})
	g.Go(func() error {
		return container.AnalyticsService.Start(gctx)
	})
	g.Go(func() error {
		container.WebSocketHub.Run()
		return nil
	})
	g.Go(func() error {
		return srv.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		container.WebSocketHub.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		container.Logger.Error("MAIN", "Server stopped with error", map[string]interface{}{"error": err.Error()})
	}
}
