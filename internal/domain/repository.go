package domain

import (
	"context"
	"encoding/json"
	"time"
)

// JobRepository defines persistence for job entities. ClaimPending must be
// atomic: two concurrent callers can never receive the same job.
type JobRepository interface {
	// ClaimPending flips up to limit due pending jobs to processing,
	// increments their attempts and returns them.
	ClaimPending(ctx context.Context, limit int) ([]Job, error)
	// Insert enqueues a job, returning ErrDuplicateKey when the idempotency
	// key already exists.
	Insert(ctx context.Context, job *Job) error
	// MarkCompleted records a terminal success with its result payload.
	MarkCompleted(ctx context.Context, id string, result json.RawMessage) error
	// MarkFailed records a terminal failure.
	MarkFailed(ctx context.Context, id string, lastError string) error
	// ScheduleRetry returns the job to pending with a future scheduled_at
	// and clears started_at.
	ScheduleRetry(ctx context.Context, id string, lastError string, retryAt time.Time) error
	// HasJobs reports whether any job exists for the user.
	HasJobs(ctx context.Context, userID string) (bool, error)
}

// ProfileRepository fetches user profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, userID string) (*Profile, error)
}

// PromptRepository fetches the active prompt per section.
type PromptRepository interface {
	Active(ctx context.Context, section Section) (*Prompt, error)
}

// ReadingRepository persists readings keyed on (user_id, section).
type ReadingRepository interface {
	Upsert(ctx context.Context, reading *Reading) error
}

// ForecastRepository persists forecasts keyed on (user_id, type, period_start).
type ForecastRepository interface {
	Upsert(ctx context.Context, forecast *Forecast) error
	Expired(ctx context.Context, now time.Time) ([]ExpiredForecast, error)
	Delete(ctx context.Context, id string) error
}

// SubscriptionRepository lists users with an active subscription.
type SubscriptionRepository interface {
	ActiveUserIDs(ctx context.Context) ([]string, error)
}
