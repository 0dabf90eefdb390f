package repo

import (
	"context"
	"time"

	"worker/internal/domain"
	"worker/internal/infra"
	"worker/internal/sqlinline"
)

// ForecastRepositoryPG implements domain.ForecastRepository.
type ForecastRepositoryPG struct {
	runner infra.SQLExecutor
}

// NewForecastRepository creates a forecast repository over a SQL executor.
func NewForecastRepository(runner infra.SQLExecutor) *ForecastRepositoryPG {
	return &ForecastRepositoryPG{runner: runner}
}

// Upsert overwrites the forecast stored for (user_id, type, period_start).
func (r *ForecastRepositoryPG) Upsert(ctx context.Context, forecast *domain.Forecast) error {
	var audioDuration *int
	if forecast.AudioDurationSeconds > 0 {
		audioDuration = &forecast.AudioDurationSeconds
	}
	_, err := r.runner.Exec(ctx, sqlinline.QUpsertForecast,
		forecast.ID,
		forecast.UserID,
		forecast.Type,
		forecast.PeriodStart,
		forecast.PeriodEnd,
		forecast.Title,
		forecast.Content,
		forecast.Summary,
		forecast.AudioURL,
		audioDuration,
		forecast.PromptVersion,
		forecast.ModelUsed,
		forecast.CalculationBase,
		forecast.ExpiresAt,
	)
	if err != nil {
		return domain.Ef(domain.KindStore, "upsert forecast: %v", err)
	}
	return nil
}

// Expired returns forecasts whose expires_at lies strictly before now.
func (r *ForecastRepositoryPG) Expired(ctx context.Context, now time.Time) ([]domain.ExpiredForecast, error) {
	rows, err := r.runner.Query(ctx, sqlinline.QExpiredForecasts, now)
	if err != nil {
		return nil, domain.Ef(domain.KindStore, "select expired forecasts: %v", err)
	}
	defer rows.Close()

	var expired []domain.ExpiredForecast
	for rows.Next() {
		var f domain.ExpiredForecast
		if err := rows.Scan(&f.ID, &f.AudioURL); err != nil {
			return nil, domain.Ef(domain.KindStore, "scan expired forecast: %v", err)
		}
		expired = append(expired, f)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Ef(domain.KindStore, "expired rows: %v", err)
	}
	return expired, nil
}

// Delete removes a forecast row.
func (r *ForecastRepositoryPG) Delete(ctx context.Context, id string) error {
	if _, err := r.runner.Exec(ctx, sqlinline.QDeleteForecast, id); err != nil {
		return domain.Ef(domain.KindStore, "delete forecast: %v", err)
	}
	return nil
}

var _ domain.ForecastRepository = (*ForecastRepositoryPG)(nil)
