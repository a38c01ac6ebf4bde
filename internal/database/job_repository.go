package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/proofcrawl/internal/domain"
)

// JobRepository handles database operations for crawl jobs.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository creates a new job repository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, url, status, max_depth, total_pages, pages_crawled,
       error_message, started_at, completed_at, created_at, updated_at`

// Create inserts a new job.
func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (id, url, status, max_depth, total_pages, pages_crawled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.URL,
		job.Status,
		job.MaxDepth,
		job.TotalPages,
		job.PagesCrawled,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// GetByID retrieves a job by its id.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// List retrieves jobs, newest first, optionally filtered by status.
func (r *JobRepository) List(ctx context.Context, status string, limit, offset int) ([]*domain.Job, error) {
	var jobs []*domain.Job
	var query string
	var args []any

	if status != "" {
		query = `SELECT ` + jobColumns + ` FROM jobs WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = []any{status, limit, offset}
	} else {
		query = `SELECT ` + jobColumns + ` FROM jobs ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = []any{limit, offset}
	}

	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	if jobs == nil {
		jobs = []*domain.Job{}
	}

	return jobs, nil
}

// MarkRunning transitions a pending job to running and stamps started_at.
func (r *JobRepository) MarkRunning(ctx context.Context, id string) error {
	query := `
		UPDATE jobs
		SET status = $1, started_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, domain.JobStatusRunning, id, domain.JobStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}
	return execRequireRows(result, nil, fmt.Errorf("job %s is not pending: %w", id, domain.ErrInvalidTransition))
}

// Complete transitions a running job to completed.
func (r *JobRepository) Complete(ctx context.Context, id string) error {
	query := `
		UPDATE jobs
		SET status = $1, completed_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, domain.JobStatusCompleted, id, domain.JobStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return execRequireRows(result, nil, fmt.Errorf("job %s is not running: %w", id, domain.ErrInvalidTransition))
}

// Fail transitions a pending or running job to failed with a message.
func (r *JobRepository) Fail(ctx context.Context, id, message string) error {
	query := `
		UPDATE jobs
		SET status = $1, error_message = $2, completed_at = NOW(), updated_at = NOW()
		WHERE id = $3 AND status IN ($4, $5)
	`

	result, err := r.db.ExecContext(
		ctx, query,
		domain.JobStatusFailed, message, id,
		domain.JobStatusPending, domain.JobStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to fail job: %w", err)
	}
	return execRequireRows(result, nil, fmt.Errorf("job %s is already terminal: %w", id, domain.ErrInvalidTransition))
}

// Cancel transitions a pending or running job to cancelled. It reports
// ErrNotFound for unknown ids and ErrInvalidTransition for terminal jobs.
func (r *JobRepository) Cancel(ctx context.Context, id string) error {
	query := `
		UPDATE jobs
		SET status = $1, completed_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND status IN ($3, $4)
	`

	result, err := r.db.ExecContext(
		ctx, query,
		domain.JobStatusCancelled, id,
		domain.JobStatusPending, domain.JobStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel job: %w", err)
	}

	updated, err := execRowsAffected(result, nil)
	if err != nil {
		return fmt.Errorf("failed to cancel job: %w", err)
	}
	if updated {
		return nil
	}

	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return getErr
	}
	return fmt.Errorf("job %s is already terminal: %w", id, domain.ErrInvalidTransition)
}

// RecordPageTx increments the job's crawled-page counter within the
// caller's page transaction.
func (r *JobRepository) RecordPageTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	query := `UPDATE jobs SET pages_crawled = pages_crawled + 1, updated_at = NOW() WHERE id = $1`

	result, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to record crawled page: %w", err)
	}
	return execRequireRows(result, nil, fmt.Errorf("job %s: %w", id, domain.ErrNotFound))
}

// CountByStatus returns job counts grouped by status.
func (r *JobRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan job count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job counts: %w", err)
	}

	return counts, nil
}

// FailStuck marks running jobs last touched before the cutoff as failed and
// returns their ids. The sweeper uses it to recover from crashed runs.
func (r *JobRepository) FailStuck(ctx context.Context, cutoff time.Time, message string) ([]string, error) {
	query := `
		UPDATE jobs
		SET status = $1, error_message = $2, completed_at = NOW(), updated_at = NOW()
		WHERE status = $3 AND updated_at < $4
		RETURNING id
	`

	rows, err := r.db.QueryContext(ctx, query, domain.JobStatusFailed, message, domain.JobStatusRunning, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to fail stuck jobs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan stuck job id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stuck jobs: %w", err)
	}

	return ids, nil
}
