package worker

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	"worker/internal/domain"
	"worker/internal/domain/genjson"
	"worker/internal/infra"
	"worker/internal/numerology"
	"worker/internal/storage"
)

// ContentGenerator is the generation surface the engine dispatches to.
type ContentGenerator interface {
	Reading(ctx context.Context, template string, vars map[string]string) (*genjson.ReadingContent, error)
	Forecast(ctx context.Context, template string, vars map[string]string) (*genjson.ForecastContent, error)
}

// SpeechSynthesizer is the optional audio surface. A nil synthesizer or one
// reporting Configured() == false disables the audio step.
type SpeechSynthesizer interface {
	Configured() bool
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Options wires an Engine.
type Options struct {
	Jobs          domain.JobRepository
	Profiles      domain.ProfileRepository
	Prompts       domain.PromptRepository
	Readings      domain.ReadingRepository
	Forecasts     domain.ForecastRepository
	Generator     ContentGenerator
	Synthesizer   SpeechSynthesizer
	Store         storage.Store
	Logger        infra.Logger
	Model         string
	ClaimLimit    int
	Now           func() time.Time
	NewForecastID func() string
}

// Engine claims batches of jobs, dispatches them by type and applies the
// shared retry policy. It is the sole owner of job state transitions.
type Engine struct {
	jobs          domain.JobRepository
	profiles      domain.ProfileRepository
	prompts       domain.PromptRepository
	readings      domain.ReadingRepository
	forecasts     domain.ForecastRepository
	generator     ContentGenerator
	synthesizer   SpeechSynthesizer
	store         storage.Store
	logger        infra.Logger
	model         string
	claimLimit    int
	now           func() time.Time
	newForecastID func() string
}

type readingResult struct {
	Success    bool  `json:"success"`
	DurationMS int64 `json:"duration_ms"`
}

type forecastResult struct {
	Success    bool  `json:"success"`
	DurationMS int64 `json:"duration_ms"`
	HasAudio   bool  `json:"has_audio"`
}

// NewEngine constructs the engine.
func NewEngine(opts Options) *Engine {
	claimLimit := opts.ClaimLimit
	if claimLimit < 1 {
		claimLimit = 10
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newForecastID := opts.NewForecastID
	if newForecastID == nil {
		newForecastID = uuid.NewString
	}
	return &Engine{
		jobs:          opts.Jobs,
		profiles:      opts.Profiles,
		prompts:       opts.Prompts,
		readings:      opts.Readings,
		forecasts:     opts.Forecasts,
		generator:     opts.Generator,
		synthesizer:   opts.Synthesizer,
		store:         opts.Store,
		logger:        opts.Logger,
		model:         opts.Model,
		claimLimit:    claimLimit,
		now:           now,
		newForecastID: newForecastID,
	}
}

// ProcessBatch claims one batch of due jobs and processes them sequentially.
// A store failure during the claim yields an empty batch. Returns the number
// of jobs claimed.
func (e *Engine) ProcessBatch(ctx context.Context) int {
	jobs, err := e.jobs.ClaimPending(ctx, e.claimLimit)
	if err != nil {
		e.logger.Error().Err(err).Msg("engine: claim failed")
		return 0
	}
	if len(jobs) == 0 {
		return 0
	}
	e.logger.Info().Int("count", len(jobs)).Msg("engine: jobs claimed")

	for i := range jobs {
		e.runJob(ctx, &jobs[i])
	}
	return len(jobs)
}

// runJob isolates one job: a panic or failure never aborts the batch.
func (e *Engine) runJob(ctx context.Context, job *domain.Job) {
	defer func() {
		if r := recover(); r != nil {
			err := domain.Ef(domain.KindInternal, "panic: %v", r)
			e.logger.Error().Str("job_id", maskID(job.ID)).Msgf("engine: job panicked: %v", r)
			e.failJob(ctx, job, err)
		}
	}()

	start := e.now()
	e.logger.Info().
		Str("job_id", maskID(job.ID)).
		Str("type", string(job.Type)).
		Int("attempt", job.Attempts).
		Msg("engine: job started")

	if err := e.process(ctx, job); err != nil {
		e.logger.Error().
			Err(err).
			Str("job_id", maskID(job.ID)).
			Str("error_kind", string(domain.KindOf(err))).
			Dur("elapsed", e.now().Sub(start)).
			Msg("engine: job failed")
		e.failJob(ctx, job, err)
		return
	}
	e.logger.Info().
		Str("job_id", maskID(job.ID)).
		Dur("elapsed", e.now().Sub(start)).
		Msg("engine: job completed")
}

// process dispatches on job type. New job types are added here as new
// variants with their own payload schema.
func (e *Engine) process(ctx context.Context, job *domain.Job) error {
	switch job.Type {
	case domain.JobTypeGenerateReading:
		return e.processReading(ctx, job)
	case domain.JobTypeGenerateForecast:
		return e.processForecast(ctx, job)
	default:
		return domain.Ef(domain.KindValidation, "unsupported job type %q", job.Type)
	}
}

func (e *Engine) processReading(ctx context.Context, job *domain.Job) error {
	start := e.now()

	payload := domain.ReadingJobPayload{Section: domain.SectionSoulMission}
	if len(job.Payload) > 0 {
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return domain.Ef(domain.KindValidation, "decode reading payload: %v", err)
		}
	}
	if payload.Section == "" {
		payload.Section = domain.SectionSoulMission
	}

	profile, err := e.loadProfile(ctx, job.UserID)
	if err != nil {
		return err
	}

	prompt, err := e.loadActivePrompt(ctx, payload.Section)
	if err != nil {
		return err
	}

	valor, arcano := numerology.SectionReading(profile.Birthdate, payload.Section)

	content, err := e.generator.Reading(ctx, prompt.Template, map[string]string{
		"nome":        profile.FullName,
		"ponto_nome":  payload.Section.DisplayName(),
		"ponto_valor": strconv.Itoa(valor),
		"arcano":      arcano,
	})
	if err != nil {
		return err
	}

	if err := e.readings.Upsert(ctx, &domain.Reading{
		UserID:        job.UserID,
		Section:       payload.Section,
		Content:       genjson.MustMarshal(content),
		PromptVersion: prompt.Version,
		ModelUsed:     e.model,
	}); err != nil {
		return err
	}
	e.logger.Info().
		Str("user_id", maskID(job.UserID)).
		Str("section", string(payload.Section)).
		Msg("engine: reading upserted")

	return e.completeJob(ctx, job, genjson.MustMarshal(readingResult{
		Success:    true,
		DurationMS: e.now().Sub(start).Milliseconds(),
	}))
}

func (e *Engine) loadProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := e.profiles.GetByID(ctx, userID)
	if err != nil {
		if domain.KindOf(err) == domain.KindStore {
			return nil, err
		}
		return nil, domain.Ef(domain.KindValidation, "profile not found")
	}
	if profile.Birthdate.IsZero() || profile.Birthdate.Year() <= 1 {
		return nil, domain.Ef(domain.KindValidation, "user has no birthdate")
	}
	if profile.FullName == "" {
		return nil, domain.Ef(domain.KindValidation, "user has no name")
	}
	return profile, nil
}

func (e *Engine) loadActivePrompt(ctx context.Context, section domain.Section) (*domain.Prompt, error) {
	prompt, err := e.prompts.Active(ctx, section)
	if err != nil {
		if domain.KindOf(err) == domain.KindStore {
			return nil, err
		}
		return nil, domain.Ef(domain.KindValidation, "no active prompt for section %s", section)
	}
	return prompt, nil
}

func (e *Engine) completeJob(ctx context.Context, job *domain.Job, result json.RawMessage) error {
	if err := e.jobs.MarkCompleted(ctx, job.ID, result); err != nil {
		return err
	}
	return nil
}

// failJob funnels every processing failure through the shared retry policy.
func (e *Engine) failJob(ctx context.Context, job *domain.Job, jobErr error) {
	msg := formatJobError(jobErr)
	decision := DecideRetry(job.Attempts, e.now())
	if decision.Terminal {
		if err := e.jobs.MarkFailed(ctx, job.ID, msg); err != nil {
			e.logger.Error().Err(err).Str("job_id", maskID(job.ID)).Msg("engine: mark failed errored")
		}
		e.logger.Info().
			Str("job_id", maskID(job.ID)).
			Int("attempts", job.Attempts).
			Msg("engine: job terminal")
		return
	}
	if err := e.jobs.ScheduleRetry(ctx, job.ID, msg, decision.RetryAt); err != nil {
		e.logger.Error().Err(err).Str("job_id", maskID(job.ID)).Msg("engine: schedule retry errored")
		return
	}
	e.logger.Info().
		Str("job_id", maskID(job.ID)).
		Int("attempts", job.Attempts).
		Time("retry_at", decision.RetryAt).
		Msg("engine: job rescheduled")
}

// maskID shortens identifiers for log output.
func maskID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
