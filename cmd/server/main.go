package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/lingoflash/internal/api"
	"github.com/vytor/lingoflash/internal/config"
	"github.com/vytor/lingoflash/internal/db"
	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/jobs"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/repository/sqlite"
	"github.com/vytor/lingoflash/internal/services"
	"github.com/vytor/lingoflash/internal/worker"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithFormat(cfg.Format()),
		logger.WithColors(cfg.Format() == logger.FormatText),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("LingoFlash Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("persist_worker_count=%d", cfg.PersistWorkerCount)
	log.Debug("persist_queue_size=%d", cfg.PersistQueueSize)
	log.Debug("session_ttl=%v", cfg.SessionTTL)
	log.Debug("order_by_urgency=%t", cfg.OrderByUrgency)
	log.Debug("session_card_limit=%d", cfg.SessionCardLimit)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	wordRepo := sqlite.NewWordRepository(database.DB)
	activityRepo := sqlite.NewActivityRepository(database.DB)

	// Reviews are written in the background by the persistence pool
	persistPool := worker.NewPool(cfg.PersistWorkerCount, cfg.PersistQueueSize, log)
	queue := jobs.NewWorkerQueue(persistPool, wordRepo)

	// Initialize services
	clock := flashcard.Clock(time.Now)
	progressService := services.NewProgressService(wordRepo, activityRepo, clock)
	vocabularyService := services.NewVocabularyService(wordRepo, flashcard.NewScheduler(clock))
	studyService := services.NewStudyService(wordRepo, progressService, services.NewPoolSink(queue), clock, services.StudyConfig{
		OrderByUrgency: cfg.OrderByUrgency,
		CardLimit:      cfg.SessionCardLimit,
		TTL:            cfg.SessionTTL,
	})

	srv := api.NewServer(vocabularyService, studyService, progressService, database, log)

	ctx, cancel := context.WithCancel(context.Background())
	persistPool.Start(ctx)
	go studyService.Run(logger.NewContext(ctx, log.WithPrefix("sessions")), time.Minute)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop accepting requests before draining pending review writes
	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping persistence pool")
	persistPool.Stop()
	cancel()

	log.Info("===========================================")
	log.Info("LingoFlash Server Stopped")
	log.Info("===========================================")
}
