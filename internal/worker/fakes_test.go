package worker

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"worker/internal/domain"
	"worker/internal/domain/genjson"
	"worker/internal/infra"
)

func testLogger() infra.Logger {
	return infra.Logger(zerolog.New(io.Discard))
}

type retryCall struct {
	lastError string
	retryAt   time.Time
}

type fakeJobs struct {
	claimQueue [][]domain.Job
	claimErr   error
	inserted   []*domain.Job
	seenKeys   map[string]bool
	completed  map[string]json.RawMessage
	failed     map[string]string
	retried    map[string]retryCall
	hasJobs    map[string]bool
	hasJobsErr error
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{
		seenKeys:  map[string]bool{},
		completed: map[string]json.RawMessage{},
		failed:    map[string]string{},
		retried:   map[string]retryCall{},
		hasJobs:   map[string]bool{},
	}
}

func (f *fakeJobs) ClaimPending(ctx context.Context, limit int) ([]domain.Job, error) {
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	if len(f.claimQueue) == 0 {
		return nil, nil
	}
	batch := f.claimQueue[0]
	f.claimQueue = f.claimQueue[1:]
	if len(batch) > limit {
		batch = batch[:limit]
	}
	return batch, nil
}

func (f *fakeJobs) Insert(ctx context.Context, job *domain.Job) error {
	if f.seenKeys[job.IdempotencyKey] {
		return domain.ErrDuplicateKey
	}
	f.seenKeys[job.IdempotencyKey] = true
	f.inserted = append(f.inserted, job)
	f.hasJobs[job.UserID] = true
	return nil
}

func (f *fakeJobs) MarkCompleted(ctx context.Context, id string, result json.RawMessage) error {
	f.completed[id] = result
	return nil
}

func (f *fakeJobs) MarkFailed(ctx context.Context, id string, lastError string) error {
	f.failed[id] = lastError
	return nil
}

func (f *fakeJobs) ScheduleRetry(ctx context.Context, id string, lastError string, retryAt time.Time) error {
	f.retried[id] = retryCall{lastError: lastError, retryAt: retryAt}
	return nil
}

func (f *fakeJobs) HasJobs(ctx context.Context, userID string) (bool, error) {
	if f.hasJobsErr != nil {
		return false, f.hasJobsErr
	}
	return f.hasJobs[userID], nil
}

type fakeProfiles struct {
	profiles map[string]*domain.Profile
	err      error
}

func (f *fakeProfiles) GetByID(ctx context.Context, userID string) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return profile, nil
}

type fakePrompts struct {
	prompts map[domain.Section]*domain.Prompt
	err     error
}

func (f *fakePrompts) Active(ctx context.Context, section domain.Section) (*domain.Prompt, error) {
	if f.err != nil {
		return nil, f.err
	}
	prompt, ok := f.prompts[section]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return prompt, nil
}

type fakeReadings struct {
	upserts []*domain.Reading
	err     error
}

func (f *fakeReadings) Upsert(ctx context.Context, reading *domain.Reading) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, reading)
	return nil
}

type fakeForecasts struct {
	upserts    []*domain.Forecast
	upsertErr  error
	expired    []domain.ExpiredForecast
	expiredErr error
	deleted    []string
	deleteErr  map[string]error
}

func (f *fakeForecasts) Upsert(ctx context.Context, forecast *domain.Forecast) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, forecast)
	return nil
}

func (f *fakeForecasts) Expired(ctx context.Context, now time.Time) ([]domain.ExpiredForecast, error) {
	if f.expiredErr != nil {
		return nil, f.expiredErr
	}
	return f.expired, nil
}

func (f *fakeForecasts) Delete(ctx context.Context, id string) error {
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeSubs struct {
	ids []string
	err error
}

func (f *fakeSubs) ActiveUserIDs(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ids, nil
}

type fakeGenerator struct {
	reading     *genjson.ReadingContent
	readingErr  error
	forecast    *genjson.ForecastContent
	forecastErr error
	panicOn     bool
	templates   []string
	vars        []map[string]string
}

func (f *fakeGenerator) Reading(ctx context.Context, template string, vars map[string]string) (*genjson.ReadingContent, error) {
	if f.panicOn {
		panic("generator exploded")
	}
	f.templates = append(f.templates, template)
	f.vars = append(f.vars, vars)
	return f.reading, f.readingErr
}

func (f *fakeGenerator) Forecast(ctx context.Context, template string, vars map[string]string) (*genjson.ForecastContent, error) {
	if f.panicOn {
		panic("generator exploded")
	}
	f.templates = append(f.templates, template)
	f.vars = append(f.vars, vars)
	return f.forecast, f.forecastErr
}

type fakeSynth struct {
	configured bool
	audio      []byte
	err        error
	calls      int
}

func (f *fakeSynth) Configured() bool { return f.configured }

func (f *fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.calls++
	return f.audio, f.err
}

type fakeStore struct {
	files    map[string][]byte
	writeErr error
	removed  []string
	baseURL  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: map[string][]byte{}, baseURL: "https://cdn.test"}
}

func (f *fakeStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.files[key] = data
	return key, nil
}

func (f *fakeStore) Remove(ctx context.Context, key string) error {
	f.removed = append(f.removed, key)
	delete(f.files, key)
	return nil
}

func (f *fakeStore) PublicURL(key string) string {
	return f.baseURL + "/" + key
}

func (f *fakeStore) KeyFromURL(url string) string {
	if strings.HasPrefix(url, f.baseURL+"/") {
		return strings.TrimPrefix(url, f.baseURL+"/")
	}
	return ""
}
