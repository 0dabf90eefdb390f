package worker

import (
	"strings"
	"time"

	"worker/internal/domain"
)

// MaxAttempts is the attempt count at which a failing job becomes terminal.
const MaxAttempts = 3

// maxErrorLength bounds stored last_error text.
const maxErrorLength = 500

// BackoffIntervals drives retry scheduling: attempt 1 waits 30s, attempt 2
// waits 60s, later attempts wait 120s. Shared by every job type.
var BackoffIntervals = []time.Duration{30 * time.Second, 60 * time.Second, 120 * time.Second}

// RetryDecision is the outcome of the shared retry policy.
type RetryDecision struct {
	Terminal bool
	RetryAt  time.Time
}

// DecideRetry maps the current attempt count to either a terminal failure or
// a backoff-scheduled retry. Pure function of (attempts, now).
func DecideRetry(attempts int, now time.Time) RetryDecision {
	if attempts >= MaxAttempts {
		return RetryDecision{Terminal: true}
	}
	idx := attempts - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(BackoffIntervals) {
		idx = len(BackoffIntervals) - 1
	}
	return RetryDecision{RetryAt: now.Add(BackoffIntervals[idx])}
}

// formatJobError renders an error as "Kind: message", truncated to the
// stored last_error bound.
func formatJobError(err error) string {
	kind := string(domain.KindOf(err))
	msg := err.Error()
	if !strings.HasPrefix(msg, kind+": ") {
		msg = kind + ": " + msg
	}
	if runes := []rune(msg); len(runes) > maxErrorLength {
		msg = string(runes[:maxErrorLength])
	}
	return msg
}
