package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"worker/internal/domain"
	"worker/internal/infra"
)

// Cron expressions for the calendar triggers (5-field, local time).
const (
	weeklyCronSpec  = "0 0 * * 0" // Sunday midnight
	monthlyCronSpec = "0 0 1 * *" // first of the month
	yearlyCronSpec  = "0 0 1 1 *" // January 1st
	cleanupCronSpec = "0 3 * * *" // daily at 03:00
)

// Scheduler drives the worker: a fixed-interval poll that sweeps
// subscriptions and processes one batch, plus the calendar forecast and
// cleanup triggers.
type Scheduler struct {
	cron   *cron.Cron
	logger infra.Logger
}

// NewScheduler registers all periodic entries. The poll interval comes from
// configuration; calendar triggers are fixed cron expressions.
func NewScheduler(ctx context.Context, engine *Engine, triggers *Triggers, pollInterval time.Duration, logger infra.Logger) (*Scheduler, error) {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	c := cron.New()

	entries := []struct {
		spec string
		name string
		run  func()
	}{
		{
			spec: fmt.Sprintf("@every %s", pollInterval),
			name: "poll",
			run: func() {
				triggers.SweepSubscriptions(ctx)
				if count := engine.ProcessBatch(ctx); count > 0 {
					logger.Info().Int("processed", count).Msg("scheduler: poll run complete")
				}
			},
		},
		{
			spec: weeklyCronSpec,
			name: "forecast_weekly",
			run:  func() { triggers.EnqueueForecasts(ctx, domain.ForecastWeekly) },
		},
		{
			spec: monthlyCronSpec,
			name: "forecast_monthly",
			run:  func() { triggers.EnqueueForecasts(ctx, domain.ForecastMonthly) },
		},
		{
			spec: yearlyCronSpec,
			name: "forecast_yearly",
			run:  func() { triggers.EnqueueForecasts(ctx, domain.ForecastYearly) },
		},
		{
			spec: cleanupCronSpec,
			name: "cleanup_expired",
			run:  func() { triggers.CleanupExpired(ctx) },
		},
	}

	for _, entry := range entries {
		name := entry.name
		run := entry.run
		if _, err := c.AddFunc(entry.spec, func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error().Str("entry", name).Msgf("scheduler: entry panicked: %v", r)
				}
			}()
			run()
		}); err != nil {
			return nil, fmt.Errorf("scheduler: register %s: %w", name, err)
		}
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

// Start launches the cron loop.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("scheduler: started")
}

// Stop halts scheduling and waits for running entries to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info().Msg("scheduler: stopped")
}
