package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/2202030400009/maggic-mock-sub000/internal/config"
	"github.com/2202030400009/maggic-mock-sub000/internal/database"
	"github.com/2202030400009/maggic-mock-sub000/internal/handler"
	"github.com/2202030400009/maggic-mock-sub000/internal/logger"
	"github.com/2202030400009/maggic-mock-sub000/internal/messaging"
	"github.com/2202030400009/maggic-mock-sub000/internal/middleware"
	"github.com/2202030400009/maggic-mock-sub000/internal/repository"
	"github.com/2202030400009/maggic-mock-sub000/internal/router"
	"github.com/2202030400009/maggic-mock-sub000/internal/service"
	"github.com/2202030400009/maggic-mock-sub000/internal/validator"
	"github.com/2202030400009/maggic-mock-sub000/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("review_policy", cfg.ReviewFlagPolicy).
		Msg("Starting GATE mock-test backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Connect to RabbitMQ (optional) ────────────────────────────────
	// A nil interface, never a nil *RabbitMQClient, disables events.
	var events service.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := messaging.NewRabbitMQClient(cfg.RabbitMQURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
		defer mq.Close()
		events = mq
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, result events disabled")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	questionRepo := repository.NewCachedQuestionRepository(
		repository.NewQuestionRepository(pool), rdb, cfg.QuestionCacheTTL, log)
	resultRepo := repository.NewResultRepository(pool)
	statsRepo := repository.NewSubjectStatsRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	questionService := service.NewQuestionService(questionRepo)
	sessionService := service.NewTestSessionService(
		questionService, resultRepo, rdb, events, service.SessionOptionsFromConfig(cfg), log)
	resultService := service.NewResultService(resultRepo, statsRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		TestSession: handler.NewTestSessionHandler(questionService, sessionService),
		Result:      handler.NewResultHandler(resultService),
		WS:          handler.NewWSHandler(sessionService, cfg.TickInterval, log, cfg.AllowedOrigins),
		System:      handler.NewSystemHandler(rdb, sessionService, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	analyticsWorker := worker.NewAnalyticsWorker(pool, rdb, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		analyticsWorker.Start(workerCtx)
	}()

	startLimiter := middleware.NewRateLimiter(5, time.Minute)
	go startLimiter.RunCleanup(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, startLimiter, cfg, log)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Live sessions cannot outlive the process; stop their timers.
	sessionService.Shutdown()

	// 3. Stop the worker and let it flush its batch.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
