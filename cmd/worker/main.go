package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"worker/internal/adapter/repo"
	"worker/internal/generate"
	"worker/internal/http/handlers"
	httpapi "worker/internal/http/httpapi"
	"worker/internal/infra"
	"worker/internal/providers/llm"
	"worker/internal/providers/tts"
	"worker/internal/storage"
	"worker/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	fileStore, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	llmClient, err := llm.NewClient(llm.Options{
		APIKey:         cfg.OpenAIAPIKey,
		Model:          cfg.OpenAIModel,
		BaseURL:        cfg.OpenAIBaseURL,
		Organization:   cfg.OpenAIOrg,
		RequestTimeout: cfg.OpenAITimeout,
		Logger:         &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure llm client")
	}

	ttsClient := tts.NewClient(tts.Options{
		APIKey:         cfg.MinimaxAPIKey,
		VoiceID:        cfg.MinimaxVoiceID,
		GroupID:        cfg.MinimaxGroupID,
		BaseURL:        cfg.MinimaxBaseURL,
		RequestTimeout: cfg.MinimaxTimeout,
		Logger:         &logger,
	})
	if !ttsClient.Configured() {
		logger.Warn().Msg("worker: tts not configured, forecasts will be text-only")
	}

	generator := generate.NewGenerator(llmClient, &logger)

	jobs := repo.NewJobRepository(runner)
	profiles := repo.NewProfileRepository(runner)
	prompts := repo.NewPromptRepository(runner)
	readings := repo.NewReadingRepository(runner)
	forecasts := repo.NewForecastRepository(runner)
	subs := repo.NewSubscriptionRepository(runner)

	engine := worker.NewEngine(worker.Options{
		Jobs:        jobs,
		Profiles:    profiles,
		Prompts:     prompts,
		Readings:    readings,
		Forecasts:   forecasts,
		Generator:   generator,
		Synthesizer: ttsClient,
		Store:       fileStore,
		Logger:      logger,
		Model:       llmClient.Model(),
		ClaimLimit:  cfg.JobClaimLimit,
	})

	triggers := worker.NewTriggers(worker.TriggerOptions{
		Jobs:      jobs,
		Subs:      subs,
		Forecasts: forecasts,
		Store:     fileStore,
		Logger:    logger,
	})

	scheduler, err := worker.NewScheduler(ctx, engine, triggers, cfg.PollInterval, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure scheduler")
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := handlers.NewApp(engine, triggers, logger)
	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app))

	go func() {
		logger.Info().Str("port", cfg.Port).Dur("poll_interval", cfg.PollInterval).Msg("worker: started")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("worker: http server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("worker: http shutdown failed")
	}
	logger.Info().Msg("worker: stopped")
}
