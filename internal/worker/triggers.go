package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"worker/internal/domain"
	"worker/internal/domain/genjson"
	"worker/internal/infra"
	"worker/internal/storage"
)

// Triggers owns the scheduled enqueue logic: the subscription sweep, the
// calendar forecast triggers and the expiration cleanup.
type Triggers struct {
	jobs      domain.JobRepository
	subs      domain.SubscriptionRepository
	forecasts domain.ForecastRepository
	store     storage.Store
	logger    infra.Logger
	now       func() time.Time
	newID     func() string
}

// TriggerOptions wires Triggers.
type TriggerOptions struct {
	Jobs      domain.JobRepository
	Subs      domain.SubscriptionRepository
	Forecasts domain.ForecastRepository
	Store     storage.Store
	Logger    infra.Logger
	Now       func() time.Time
	NewID     func() string
}

// NewTriggers constructs the scheduled triggers.
func NewTriggers(opts TriggerOptions) *Triggers {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Triggers{
		jobs:      opts.Jobs,
		subs:      opts.Subs,
		forecasts: opts.Forecasts,
		store:     opts.Store,
		logger:    opts.Logger,
		now:       now,
		newID:     newID,
	}
}

// SweepSubscriptions enqueues the reading job set for every active
// subscription that has no jobs yet. Returns the number of users enqueued.
// Store failures are logged and treated as nothing to do.
func (t *Triggers) SweepSubscriptions(ctx context.Context) int {
	userIDs, err := t.subs.ActiveUserIDs(ctx)
	if err != nil {
		t.logger.Error().Err(err).Msg("triggers: list active subscriptions failed")
		return 0
	}

	enqueued := 0
	for _, userID := range userIDs {
		hasJobs, err := t.jobs.HasJobs(ctx, userID)
		if err != nil {
			t.logger.Error().Err(err).Str("user_id", maskID(userID)).Msg("triggers: job lookup failed")
			continue
		}
		if hasJobs {
			continue
		}
		t.enqueueReadingJobs(ctx, userID)
		enqueued++
	}
	if enqueued > 0 {
		t.logger.Info().Int("count", enqueued).Msg("triggers: subscriptions processed")
	}
	return enqueued
}

// enqueueReadingJobs inserts one reading job per content section with a
// deterministic idempotency key, so re-running the sweep is a no-op for
// users already enqueued.
func (t *Triggers) enqueueReadingJobs(ctx context.Context, userID string) int {
	created := 0
	for _, section := range domain.ReadingSections {
		job := &domain.Job{
			ID:             t.newID(),
			UserID:         userID,
			Type:           domain.JobTypeGenerateReading,
			Payload:        genjson.MustMarshal(domain.ReadingJobPayload{Section: section}),
			IdempotencyKey: fmt.Sprintf("%s:%s:v1", userID, section),
		}
		if err := t.jobs.Insert(ctx, job); err != nil {
			if errors.Is(err, domain.ErrDuplicateKey) {
				t.logger.Debug().Str("section", string(section)).Msg("triggers: job already exists")
			} else {
				t.logger.Error().Err(err).Str("section", string(section)).Msg("triggers: enqueue failed")
			}
			continue
		}
		created++
		t.logger.Info().Str("user_id", maskID(userID)).Str("section", string(section)).Msg("triggers: job enqueued")
	}
	return created
}

// EnqueueForecasts enqueues one forecast job of the given type for every
// active subscription, covering the period containing now. Returns the
// number of jobs created.
func (t *Triggers) EnqueueForecasts(ctx context.Context, ft domain.ForecastType) int {
	userIDs, err := t.subs.ActiveUserIDs(ctx)
	if err != nil {
		t.logger.Error().Err(err).Msg("triggers: list active subscriptions failed")
		return 0
	}

	periodStart, periodEnd := ForecastPeriod(ft, t.now())
	payload := genjson.MustMarshal(domain.ForecastJobPayload{
		ForecastType: ft,
		PeriodStart:  periodStart.Format(payloadDateLayout),
		PeriodEnd:    periodEnd.Format(payloadDateLayout),
	})

	created := 0
	for _, userID := range userIDs {
		job := &domain.Job{
			ID:             t.newID(),
			UserID:         userID,
			Type:           domain.JobTypeGenerateForecast,
			Payload:        payload,
			IdempotencyKey: fmt.Sprintf("%s:%s:%s", userID, ft, periodStart.Format(payloadDateLayout)),
		}
		if err := t.jobs.Insert(ctx, job); err != nil {
			if errors.Is(err, domain.ErrDuplicateKey) {
				t.logger.Debug().Str("user_id", maskID(userID)).Str("forecast_type", string(ft)).Msg("triggers: forecast job already exists")
			} else {
				t.logger.Error().Err(err).Str("user_id", maskID(userID)).Msg("triggers: forecast enqueue failed")
			}
			continue
		}
		created++
	}
	if created > 0 {
		t.logger.Info().
			Int("count", created).
			Str("forecast_type", string(ft)).
			Str("period_start", periodStart.Format(payloadDateLayout)).
			Msg("triggers: forecast jobs enqueued")
	}
	return created
}

// CleanupExpired deletes forecasts past their expires_at, removing stored
// audio best-effort first. Storage failures never block row deletion.
// Returns the number of rows deleted.
func (t *Triggers) CleanupExpired(ctx context.Context) int {
	expired, err := t.forecasts.Expired(ctx, t.now())
	if err != nil {
		t.logger.Error().Err(err).Msg("triggers: expired lookup failed")
		return 0
	}
	if len(expired) == 0 {
		return 0
	}

	deleted := 0
	for _, f := range expired {
		if f.AudioURL != "" && t.store != nil {
			if key := t.store.KeyFromURL(f.AudioURL); key != "" {
				if err := t.store.Remove(ctx, key); err != nil {
					t.logger.Warn().Err(err).Str("forecast_id", maskID(f.ID)).Msg("triggers: audio removal failed")
				}
			}
		}
		if err := t.forecasts.Delete(ctx, f.ID); err != nil {
			t.logger.Error().Err(err).Str("forecast_id", maskID(f.ID)).Msg("triggers: forecast delete failed")
			continue
		}
		deleted++
	}
	t.logger.Info().Int("count", deleted).Msg("triggers: expired forecasts removed")
	return deleted
}

// ForecastPeriod computes the period window containing (or, for weekly, next
// following) the reference time: the upcoming Sunday-start week, the current
// calendar month, or the current calendar year.
func ForecastPeriod(ft domain.ForecastType, ref time.Time) (time.Time, time.Time) {
	ref = ref.UTC()
	today := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)

	switch ft {
	case domain.ForecastWeekly:
		offset := (7 - int(today.Weekday())) % 7
		start := today.AddDate(0, 0, offset)
		return start, start.AddDate(0, 0, 6)
	case domain.ForecastMonthly:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	default:
		start := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return start, time.Date(today.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
	}
}
