package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"worker/internal/domain"
	"worker/internal/infra"
	"worker/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobRepository on PostgreSQL.
type JobRepositoryPG struct {
	runner infra.SQLExecutor
}

// NewJobRepository creates a job repository over a SQL executor.
func NewJobRepository(runner infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{runner: runner}
}

// ClaimPending atomically claims up to limit due jobs. The claim query
// increments attempts and stamps started_at in the same statement.
func (r *JobRepositoryPG) ClaimPending(ctx context.Context, limit int) ([]domain.Job, error) {
	rows, err := r.runner.Query(ctx, sqlinline.QClaimPendingJobs, limit)
	if err != nil {
		return nil, domain.Ef(domain.KindStore, "claim pending jobs: %v", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		var job domain.Job
		if err := rows.Scan(
			&job.ID,
			&job.UserID,
			&job.Type,
			&job.Payload,
			&job.Status,
			&job.Attempts,
			&job.IdempotencyKey,
			&job.LastError,
			&job.ScheduledAt,
			&job.StartedAt,
			&job.CreatedAt,
		); err != nil {
			return nil, domain.Ef(domain.KindStore, "scan claimed job: %v", err)
		}
		// Ensure payload bytes are not aliased across scans.
		job.Payload = append(json.RawMessage(nil), job.Payload...)
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Ef(domain.KindStore, "claim rows: %v", err)
	}
	return jobs, nil
}

// Insert enqueues a job, mapping unique violations on the idempotency key to
// domain.ErrDuplicateKey.
func (r *JobRepositoryPG) Insert(ctx context.Context, job *domain.Job) error {
	payload := job.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}
	_, err := r.runner.Exec(ctx, sqlinline.QInsertJob,
		job.ID,
		job.UserID,
		job.Type,
		payload,
		job.IdempotencyKey,
	)
	if err != nil {
		if infra.IsDuplicateKey(err) {
			return fmt.Errorf("insert job %s: %w", job.IdempotencyKey, domain.ErrDuplicateKey)
		}
		return domain.Ef(domain.KindStore, "insert job: %v", err)
	}
	return nil
}

// MarkCompleted records a terminal success.
func (r *JobRepositoryPG) MarkCompleted(ctx context.Context, id string, result json.RawMessage) error {
	if _, err := r.runner.Exec(ctx, sqlinline.QMarkJobCompleted, id, result); err != nil {
		return domain.Ef(domain.KindStore, "mark job completed: %v", err)
	}
	return nil
}

// MarkFailed records a terminal failure.
func (r *JobRepositoryPG) MarkFailed(ctx context.Context, id string, lastError string) error {
	if _, err := r.runner.Exec(ctx, sqlinline.QMarkJobFailed, id, lastError); err != nil {
		return domain.Ef(domain.KindStore, "mark job failed: %v", err)
	}
	return nil
}

// ScheduleRetry returns the job to pending with a future scheduled_at.
func (r *JobRepositoryPG) ScheduleRetry(ctx context.Context, id string, lastError string, retryAt time.Time) error {
	if _, err := r.runner.Exec(ctx, sqlinline.QScheduleJobRetry, id, lastError, retryAt); err != nil {
		return domain.Ef(domain.KindStore, "schedule job retry: %v", err)
	}
	return nil
}

// HasJobs reports whether any job exists for the user.
func (r *JobRepositoryPG) HasJobs(ctx context.Context, userID string) (bool, error) {
	var exists bool
	if err := r.runner.QueryRow(ctx, sqlinline.QUserHasJobs, userID).Scan(&exists); err != nil {
		return false, domain.Ef(domain.KindStore, "has jobs: %v", err)
	}
	return exists, nil
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
