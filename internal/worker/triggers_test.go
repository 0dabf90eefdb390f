package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"worker/internal/domain"
)

func newTestTriggers(jobs *fakeJobs, subs *fakeSubs, forecasts *fakeForecasts, store *fakeStore) *Triggers {
	var counter int
	return NewTriggers(TriggerOptions{
		Jobs:      jobs,
		Subs:      subs,
		Forecasts: forecasts,
		Store:     store,
		Logger:    testLogger(),
		Now:       func() time.Time { return testNow },
		NewID: func() string {
			counter++
			return fmt.Sprintf("id-%d", counter)
		},
	})
}

func TestSweepSubscriptionsEnqueuesAllSections(t *testing.T) {
	t.Parallel()
	jobs := newFakeJobs()
	triggers := newTestTriggers(jobs, &fakeSubs{ids: []string{"user-1"}}, &fakeForecasts{}, newFakeStore())

	if got := triggers.SweepSubscriptions(context.Background()); got != 1 {
		t.Fatalf("SweepSubscriptions = %d, want 1", got)
	}
	if len(jobs.inserted) != len(domain.ReadingSections) {
		t.Fatalf("inserted = %d, want %d", len(jobs.inserted), len(domain.ReadingSections))
	}
	for i, section := range domain.ReadingSections {
		job := jobs.inserted[i]
		if job.Type != domain.JobTypeGenerateReading {
			t.Fatalf("job type = %q", job.Type)
		}
		if want := fmt.Sprintf("user-1:%s:v1", section); job.IdempotencyKey != want {
			t.Fatalf("idempotency key = %q, want %q", job.IdempotencyKey, want)
		}
	}
}

func TestSweepSubscriptionsSkipsUsersWithJobs(t *testing.T) {
	t.Parallel()
	jobs := newFakeJobs()
	jobs.hasJobs["user-2"] = true
	triggers := newTestTriggers(jobs, &fakeSubs{ids: []string{"user-1", "user-2"}}, &fakeForecasts{}, newFakeStore())

	if got := triggers.SweepSubscriptions(context.Background()); got != 1 {
		t.Fatalf("SweepSubscriptions = %d, want 1", got)
	}
	if len(jobs.inserted) != len(domain.ReadingSections) {
		t.Fatalf("inserted = %d, want only user-1's jobs", len(jobs.inserted))
	}
}

func TestSweepSubscriptionsIsIdempotent(t *testing.T) {
	t.Parallel()
	jobs := newFakeJobs()
	triggers := newTestTriggers(jobs, &fakeSubs{ids: []string{"user-1"}}, &fakeForecasts{}, newFakeStore())

	triggers.SweepSubscriptions(context.Background())
	// Second sweep: HasJobs now reports true, nothing is re-enqueued.
	if got := triggers.SweepSubscriptions(context.Background()); got != 0 {
		t.Fatalf("second sweep = %d, want 0", got)
	}
	if len(jobs.inserted) != len(domain.ReadingSections) {
		t.Fatalf("inserted = %d, want %d", len(jobs.inserted), len(domain.ReadingSections))
	}
}

func TestSweepSubscriptionsStoreFailure(t *testing.T) {
	t.Parallel()
	jobs := newFakeJobs()
	triggers := newTestTriggers(jobs, &fakeSubs{err: errors.New("db down")}, &fakeForecasts{}, newFakeStore())

	if got := triggers.SweepSubscriptions(context.Background()); got != 0 {
		t.Fatalf("SweepSubscriptions = %d, want 0", got)
	}
}

func TestEnqueueForecasts(t *testing.T) {
	t.Parallel()
	jobs := newFakeJobs()
	triggers := newTestTriggers(jobs, &fakeSubs{ids: []string{"user-1", "user-2"}}, &fakeForecasts{}, newFakeStore())

	if got := triggers.EnqueueForecasts(context.Background(), domain.ForecastWeekly); got != 2 {
		t.Fatalf("EnqueueForecasts = %d, want 2", got)
	}
	job := jobs.inserted[0]
	if job.Type != domain.JobTypeGenerateForecast {
		t.Fatalf("job type = %q", job.Type)
	}
	// testNow is Monday 2025-03-10; the covered week starts the next Sunday.
	if want := "user-1:weekly:2025-03-16"; job.IdempotencyKey != want {
		t.Fatalf("idempotency key = %q, want %q", job.IdempotencyKey, want)
	}

	// Re-running within the same period is a no-op.
	if got := triggers.EnqueueForecasts(context.Background(), domain.ForecastWeekly); got != 0 {
		t.Fatalf("second enqueue = %d, want 0", got)
	}
	if len(jobs.inserted) != 2 {
		t.Fatalf("inserted = %d, want 2", len(jobs.inserted))
	}
}

func TestForecastPeriod(t *testing.T) {
	t.Parallel()
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	cases := []struct {
		name      string
		ft        domain.ForecastType
		ref       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name: "weekly_from_monday",
			ft:   domain.ForecastWeekly,
			ref:  day(2025, time.March, 10),
			// next Sunday
			wantStart: day(2025, time.March, 16),
			wantEnd:   day(2025, time.March, 22),
		},
		{
			name:      "weekly_on_sunday_is_current_week",
			ft:        domain.ForecastWeekly,
			ref:       day(2025, time.March, 16),
			wantStart: day(2025, time.March, 16),
			wantEnd:   day(2025, time.March, 22),
		},
		{
			name:      "monthly_february",
			ft:        domain.ForecastMonthly,
			ref:       day(2025, time.February, 14),
			wantStart: day(2025, time.February, 1),
			wantEnd:   day(2025, time.February, 28),
		},
		{
			name:      "monthly_leap_february",
			ft:        domain.ForecastMonthly,
			ref:       day(2024, time.February, 14),
			wantStart: day(2024, time.February, 1),
			wantEnd:   day(2024, time.February, 29),
		},
		{
			name:      "yearly",
			ft:        domain.ForecastYearly,
			ref:       day(2025, time.June, 20),
			wantStart: day(2025, time.January, 1),
			wantEnd:   day(2025, time.December, 31),
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			start, end := ForecastPeriod(tc.ft, tc.ref)
			if !start.Equal(tc.wantStart) || !end.Equal(tc.wantEnd) {
				t.Fatalf("period = %v..%v, want %v..%v", start, end, tc.wantStart, tc.wantEnd)
			}
		})
	}
}

func TestCleanupExpired(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	forecasts := &fakeForecasts{expired: []domain.ExpiredForecast{
		{ID: "f1", AudioURL: "https://cdn.test/forecasts-audio/u1/f1.mp3"},
		{ID: "f2"},
	}}
	triggers := newTestTriggers(newFakeJobs(), &fakeSubs{}, forecasts, store)

	if got := triggers.CleanupExpired(context.Background()); got != 2 {
		t.Fatalf("CleanupExpired = %d, want 2", got)
	}
	if len(store.removed) != 1 || store.removed[0] != "forecasts-audio/u1/f1.mp3" {
		t.Fatalf("removed = %v", store.removed)
	}
	if len(forecasts.deleted) != 2 {
		t.Fatalf("deleted = %v", forecasts.deleted)
	}
}

func TestCleanupExpiredDeleteFailureSkipsRow(t *testing.T) {
	t.Parallel()
	forecasts := &fakeForecasts{
		expired:   []domain.ExpiredForecast{{ID: "f1"}, {ID: "f2"}},
		deleteErr: map[string]error{"f1": errors.New("locked")},
	}
	triggers := newTestTriggers(newFakeJobs(), &fakeSubs{}, forecasts, newFakeStore())

	if got := triggers.CleanupExpired(context.Background()); got != 1 {
		t.Fatalf("CleanupExpired = %d, want 1", got)
	}
}

func TestCleanupExpiredNothingToDo(t *testing.T) {
	t.Parallel()
	triggers := newTestTriggers(newFakeJobs(), &fakeSubs{}, &fakeForecasts{}, newFakeStore())
	if got := triggers.CleanupExpired(context.Background()); got != 0 {
		t.Fatalf("CleanupExpired = %d, want 0", got)
	}
}
