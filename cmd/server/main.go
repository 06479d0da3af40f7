package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/smartquizzer/quizzer-backend/internal/cache"
	"github.com/smartquizzer/quizzer-backend/internal/config"
	"github.com/smartquizzer/quizzer-backend/internal/database"
	"github.com/smartquizzer/quizzer-backend/internal/event"
	"github.com/smartquizzer/quizzer-backend/internal/generator"
	"github.com/smartquizzer/quizzer-backend/internal/handler"
	"github.com/smartquizzer/quizzer-backend/internal/logger"
	"github.com/smartquizzer/quizzer-backend/internal/repository"
	"github.com/smartquizzer/quizzer-backend/internal/router"
	"github.com/smartquizzer/quizzer-backend/internal/service"
	"github.com/smartquizzer/quizzer-backend/internal/validator"
	"github.com/smartquizzer/quizzer-backend/internal/worker"
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
		Msg("Starting Quizzer Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
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
	// The cache degrades to misses when Redis is down, so a failed ping
	// is not fatal.
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if rdb == nil {
		log.Fatal().Err(err).Msg("Invalid Redis configuration")
	}
	if err != nil {
		log.Warn().Err(err).Msg("Redis unreachable, continuing without cache")
	}
	defer rdb.Close()

	// ─── Connect to RabbitMQ ───────────────────────────────────────────
	publisher, err := event.NewPublisher(cfg.AMQPURL, log)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ unreachable, event publishing is disabled")
		publisher, _ = event.NewPublisher("", log)
	}
	defer publisher.Close()

	// ─── Initialize Question Generator ─────────────────────────────────
	var gen service.QuestionGenerator = generator.Disabled{}
	if cfg.LLMAPIKey != "" {
		llmGen, err := generator.NewOpenAICompatible(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTemperature, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create LLM client")
		}
		gen = llmGen
		log.Info().Str("model", cfg.LLMModel).Msg("Question generator ready")
	} else {
		log.Warn().Msg("LLM_API_KEY is empty, only cached question sets can be served")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	contentRepo := repository.NewContentRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	questionCache := cache.New(rdb, log)
	authService := service.NewAuthService(cfg, userRepo)
	userService := service.NewUserService(userRepo, questionCache, log)
	contentService := service.NewContentService(contentRepo, questionCache, log)
	analyticsService := service.NewAnalyticsService(userRepo, quizRepo, questionCache, cfg, log)

	completionWorker := worker.NewCompletionWorker(analyticsService, publisher, cfg.InvalidationQueueSize, log)
	quizService := service.NewQuizService(contentRepo, questionRepo, quizRepo, questionCache, gen, completionWorker, cfg, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Content:   handler.NewContentHandler(contentService),
		Quiz:      handler.NewQuizHandler(quizService),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		User:      handler.NewUserHandler(userService),
		WS:        handler.NewWSHandler(quizService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(ctx)
	go completionWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, cfg, log)

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

	// 2. Stop the completion worker and wait for its queue to drain.
	workerCancel()
	select {
	case <-completionWorker.Done():
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Completion worker did not drain in time")
	}

	// Deferred: publisher, Redis, then the pool.
	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
