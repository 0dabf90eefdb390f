package repo

import (
	"context"

	"worker/internal/domain"
	"worker/internal/infra"
	"worker/internal/sqlinline"
)

// ReadingRepositoryPG implements domain.ReadingRepository.
type ReadingRepositoryPG struct {
	runner infra.SQLExecutor
}

// NewReadingRepository creates a reading repository over a SQL executor.
func NewReadingRepository(runner infra.SQLExecutor) *ReadingRepositoryPG {
	return &ReadingRepositoryPG{runner: runner}
}

// Upsert overwrites the reading stored for (user_id, section).
func (r *ReadingRepositoryPG) Upsert(ctx context.Context, reading *domain.Reading) error {
	_, err := r.runner.Exec(ctx, sqlinline.QUpsertReading,
		reading.UserID,
		reading.Section,
		reading.Content,
		reading.PromptVersion,
		reading.ModelUsed,
	)
	if err != nil {
		return domain.Ef(domain.KindStore, "upsert reading: %v", err)
	}
	return nil
}

var _ domain.ReadingRepository = (*ReadingRepositoryPG)(nil)
