package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/chessvault/internal/api"
	"github.com/vytor/chessvault/internal/config"
	"github.com/vytor/chessvault/internal/db"
	"github.com/vytor/chessvault/internal/jobs"
	"github.com/vytor/chessvault/internal/lichess"
	"github.com/vytor/chessvault/internal/logger"
	"github.com/vytor/chessvault/internal/repository/sqlite"
	"github.com/vytor/chessvault/internal/services"
	"github.com/vytor/chessvault/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("ChessVault Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("lichess_base_url=%s", cfg.LichessBaseURL)
	log.Debug("requests_per_second=%v", cfg.RequestsPerSecond)
	log.Debug("import_worker_count=%d", cfg.ImportWorkerCount)
	log.Debug("import_queue_size=%d", cfg.ImportQueueSize)
	log.Debug("import_batch_size=%d", cfg.ImportBatchSize)
	log.Debug("profile_max_age=%v", cfg.ProfileMaxAge)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	gameRepo := sqlite.NewGameRepository(database.DB)
	sessionRepo := sqlite.NewSessionRepository(database.DB)
	profileRepo := sqlite.NewProfileRepository(database.DB)
	statsRepo := sqlite.NewStatsRepository(database.DB)

	client := lichess.New(cfg.LichessBaseURL, cfg.UserAgent, cfg.RequestTimeout,
		lichess.WithRateLimit(cfg.RequestsPerSecond),
	)

	importPool := worker.NewPool(cfg.ImportWorkerCount, cfg.ImportQueueSize)
	queue := jobs.NewWorkerQueue(importPool, gameRepo, sessionRepo, client, cfg.ImportBatchSize)

	srv := &api.Server{
		DB:       database.DB,
		Imports:  services.NewImportService(sessionRepo, queue),
		Games:    services.NewGameService(gameRepo),
		Stats:    services.NewStatsService(statsRepo),
		Profiles: services.NewProfileService(profileRepo, client, cfg.ProfileMaxAge),
	}

	ctx, cancel := context.WithCancel(context.Background())
	importPool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping worker pool")
	cancel()
	importPool.Stop()

	log.Info("===========================================")
	log.Info("ChessVault Server Stopped")
	log.Info("===========================================")
}
