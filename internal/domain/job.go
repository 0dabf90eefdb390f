package domain

import (
	"encoding/json"
	"time"
)

// JobType enumerates supported generation job categories.
type JobType string

const (
	JobTypeGenerateReading  JobType = "generate_reading"
	JobTypeGenerateForecast JobType = "generate_forecast"
)

// JobStatus enumerates job lifecycle states. Completed and failed are
// terminal; a terminal job is never re-claimed.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is a unit of work claimed from the store and processed to a terminal
// or retry-scheduled state. Attempts reflects the number of processing
// attempts including the current one; the atomic claim increments it.
type Job struct {
	ID             string
	UserID         string
	Type           JobType
	Payload        json.RawMessage
	Status         JobStatus
	Attempts       int
	IdempotencyKey string
	LastError      string
	ScheduledAt    time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
	Result         json.RawMessage
	CreatedAt      time.Time
}

// ReadingJobPayload is the payload carried by generate_reading jobs.
type ReadingJobPayload struct {
	Section Section `json:"section"`
}

// ForecastJobPayload is the payload carried by generate_forecast jobs.
// Dates use the 2006-01-02 form.
type ForecastJobPayload struct {
	ForecastType ForecastType `json:"forecast_type"`
	PeriodStart  string       `json:"period_start"`
	PeriodEnd    string       `json:"period_end"`
}
