package repo

import (
	"context"
	"errors"

	"worker/internal/domain"
	"worker/internal/infra"
	"worker/internal/sqlinline"
)

// ProfileRepositoryPG implements domain.ProfileRepository.
type ProfileRepositoryPG struct {
	runner infra.SQLExecutor
}

// NewProfileRepository creates a profile repository over a SQL executor.
func NewProfileRepository(runner infra.SQLExecutor) *ProfileRepositoryPG {
	return &ProfileRepositoryPG{runner: runner}
}

// GetByID fetches a profile, returning domain.ErrNotFound when absent.
func (r *ProfileRepositoryPG) GetByID(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.runner.QueryRow(ctx, sqlinline.QGetProfile, userID).Scan(
		&profile.ID,
		&profile.FullName,
		&profile.Birthdate,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, errors.Join(domain.ErrNotFound, errors.New("profile "+userID))
		}
		return nil, domain.Ef(domain.KindStore, "get profile: %v", err)
	}
	return &profile, nil
}

// PromptRepositoryPG implements domain.PromptRepository.
type PromptRepositoryPG struct {
	runner infra.SQLExecutor
}

// NewPromptRepository creates a prompt repository over a SQL executor.
func NewPromptRepository(runner infra.SQLExecutor) *PromptRepositoryPG {
	return &PromptRepositoryPG{runner: runner}
}

// Active fetches the active prompt for a section, returning
// domain.ErrNotFound when none is active.
func (r *PromptRepositoryPG) Active(ctx context.Context, section domain.Section) (*domain.Prompt, error) {
	var prompt domain.Prompt
	err := r.runner.QueryRow(ctx, sqlinline.QActivePrompt, section).Scan(
		&prompt.ID,
		&prompt.Section,
		&prompt.Template,
		&prompt.Version,
		&prompt.IsActive,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, errors.Join(domain.ErrNotFound, errors.New("active prompt for "+string(section)))
		}
		return nil, domain.Ef(domain.KindStore, "get active prompt: %v", err)
	}
	return &prompt, nil
}

// SubscriptionRepositoryPG implements domain.SubscriptionRepository.
type SubscriptionRepositoryPG struct {
	runner infra.SQLExecutor
}

// NewSubscriptionRepository creates a subscription repository over a SQL executor.
func NewSubscriptionRepository(runner infra.SQLExecutor) *SubscriptionRepositoryPG {
	return &SubscriptionRepositoryPG{runner: runner}
}

// ActiveUserIDs lists the user ids holding an active subscription.
func (r *SubscriptionRepositoryPG) ActiveUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.runner.Query(ctx, sqlinline.QActiveSubscriptions)
	if err != nil {
		return nil, domain.Ef(domain.KindStore, "select active subscriptions: %v", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, domain.Ef(domain.KindStore, "scan subscription: %v", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Ef(domain.KindStore, "subscription rows: %v", err)
	}
	return userIDs, nil
}

var (
	_ domain.ProfileRepository      = (*ProfileRepositoryPG)(nil)
	_ domain.PromptRepository       = (*PromptRepositoryPG)(nil)
	_ domain.SubscriptionRepository = (*SubscriptionRepositoryPG)(nil)
)
