package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/stemsi/cyberassess-backend/internal/app"
	"github.com/stemsi/cyberassess-backend/internal/config"
	"github.com/stemsi/cyberassess-backend/internal/database"
	"github.com/stemsi/cyberassess-backend/internal/handler"
	"github.com/stemsi/cyberassess-backend/internal/logger"
	"github.com/stemsi/cyberassess-backend/internal/metrics"
	"github.com/stemsi/cyberassess-backend/internal/router"
	"github.com/stemsi/cyberassess-backend/internal/service"
	"github.com/stemsi/cyberassess-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, "cyberassess")
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("storage", cfg.StorageDriver).
		Msg("Starting Cybersecurity Assessment Backend")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Metrics ───────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNewMetrics(reg)

	// ─── Connect to Storage ────────────────────────────────────────────
	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to storage")
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := stores.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("Storage close error")
		}
	}()
	if err := stores.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure indexes")
	}

	// ─── Connect to Redis (optional) ───────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ─── Notifications ─────────────────────────────────────────────────
	notifications := app.NewNotifications(cfg, rdb, m, log)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, stores.Admins)
	submissionService := service.NewSubmissionService(
		stores.Submissions,
		notifications.Dispatcher,
		service.RetryPolicy{
			MaxAttempts:     cfg.SubmitMaxAttempts,
			InitialInterval: cfg.SubmitInitialBackoff,
			MaxInterval:     cfg.SubmitMaxBackoff,
		},
		log,
		service.WithMetrics(m),
	)
	assessmentService := service.NewAssessmentService(stores.Submissions, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Submission:   handler.NewSubmissionHandler(submissionService, log),
		Assessment:   handler.NewAssessmentHandler(assessmentService, log),
		Report:       handler.NewReportHandler(submissionService, assessmentService, log),
		Auth:         handler.NewAuthHandler(authService, log),
		Notification: handler.NewNotificationHandler(notifications.Mailer, cfg.NotifyTimeout, log),
		Health:       handler.NewHealthHandler(stores.Driver, notifications.Queue.Name(), notifications.Mailer.Enabled()),
	}
	if rdb != nil {
		handlers.Feed = handler.NewFeedHandler(rdb, config.CacheKey.SubmissionFeedChannel(), log, cfg.AllowedOrigins)
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		notifications.Worker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, reg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Let in-flight dispatches reach the queue, then drain it.
	notifications.Dispatcher.Wait()
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
