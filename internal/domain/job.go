// Package domain provides domain models used across the application.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a crawl job.
type JobStatus string

const (
	// JobStatusPending indicates the job has been created but not started.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the crawl is in progress.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the crawl finished normally.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the crawl aborted with an error.
	JobStatusFailed JobStatus = "failed"
	// JobStatusCancelled indicates the crawl was cancelled by an operator.
	JobStatusCancelled JobStatus = "cancelled"
)

// Job represents one crawl run over a single site.
type Job struct {
	ID           string     `db:"id"            json:"id"`
	URL          string     `db:"url"           json:"url"`
	Status       JobStatus  `db:"status"        json:"status"`
	MaxDepth     int        `db:"max_depth"     json:"max_depth"`
	TotalPages   int        `db:"total_pages"   json:"total_pages"` // page cap for the run
	PagesCrawled int        `db:"pages_crawled" json:"pages_crawled"`
	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`
	StartedAt    *time.Time `db:"started_at"    json:"started_at,omitempty"`
	CompletedAt  *time.Time `db:"completed_at"  json:"completed_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"    json:"updated_at"`
}

// NewJob creates a pending job for the given seed URL and limits.
func NewJob(url string, maxDepth, totalPages int) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:         uuid.New().String(),
		URL:        url,
		Status:     JobStatusPending,
		MaxDepth:   maxDepth,
		TotalPages: totalPages,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsTerminal reports whether the status is a final state.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// CanCancel reports whether a job in this status may be cancelled.
func (s JobStatus) CanCancel() bool {
	return s == JobStatusPending || s == JobStatusRunning
}
