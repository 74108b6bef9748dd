package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"freight-broker-be/internal/bootstrap"
	"freight-broker-be/internal/config"
	"freight-broker-be/internal/model"
	"freight-broker-be/internal/pkg/logger"
	"freight-broker-be/internal/server"
	"freight-broker-be/internal/tracer"
	"freight-broker-be/pkg/database"

	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Initialize Database
	gormDB, err := database.NewGormDB(database.GormConfig{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.Connection,
		LogLevel: cfg.Database.LogLevel,
	})
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if cfg.Database.Driver == database.DriverSQLite {
		if err := database.AutoMigrate(gormDB, model.All()...); err != nil {
			log.Panicf("Unable to migrate SQLite DB: %v", err)
		}
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Panicf("Unable to build container: %v", err)
	}
	defer container.Close()

	shutdownTracer := tracer.InitTracer(config.OtelEnabled(), container.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Panicf("Unable to start alert consumer: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()
		container.Logger.Info(logger.ModuleHTTP, "Shutting down", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			container.Logger.Warn(logger.ModuleHTTP, "Tracer shutdown failed", map[string]interface{}{"error": err.Error()})
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		container.Logger.Error(logger.ModuleHTTP, "Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
