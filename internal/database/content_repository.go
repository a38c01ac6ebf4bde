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

// ContentRepository handles database operations for crawled page content.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository creates a new content repository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

const contentColumns = `id, url, title, original_text, cleaned_text, language,
       status, created_at, updated_at`

// CreateTx inserts a content row within the caller's transaction. URLs are
// unique across jobs; re-crawling a known URL is a no-op and CreateTx
// reports false so the caller can skip the bookkeeping for that page.
func (r *ContentRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, content *domain.Content) (bool, error) {
	query := `
		INSERT INTO contents (id, url, title, original_text, cleaned_text, language, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (url) DO NOTHING
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		content.ID,
		content.URL,
		content.Title,
		content.OriginalText,
		content.CleanedText,
		content.Language,
		content.Status,
		content.CreatedAt,
		content.UpdatedAt,
	)
	inserted, err := execRowsAffected(result, err)
	if err != nil {
		return false, fmt.Errorf("failed to create content: %w", err)
	}

	return inserted, nil
}

// GetByID retrieves a content row by its id.
func (r *ContentRepository) GetByID(ctx context.Context, id string) (*domain.Content, error) {
	var content domain.Content
	query := `SELECT ` + contentColumns + ` FROM contents WHERE id = $1`

	if err := r.db.GetContext(ctx, &content, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get content: %w", err)
	}

	return &content, nil
}

// GetByIDForUpdateTx retrieves a content row and locks it for the duration
// of the caller's transaction. Used by the apply path so a concurrent apply
// against the same page cannot splice stale text.
func (r *ContentRepository) GetByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Content, error) {
	var content domain.Content
	query := `SELECT ` + contentColumns + ` FROM contents WHERE id = $1 FOR UPDATE`

	if err := tx.GetContext(ctx, &content, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get content: %w", err)
	}

	return &content, nil
}

// List retrieves content rows, newest first, optionally filtered by status.
func (r *ContentRepository) List(ctx context.Context, status string, limit, offset int) ([]*domain.Content, error) {
	var contents []*domain.Content
	var query string
	var args []any

	if status != "" {
		query = `SELECT ` + contentColumns + ` FROM contents WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = []any{status, limit, offset}
	} else {
		query = `SELECT ` + contentColumns + ` FROM contents ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = []any{limit, offset}
	}

	if err := r.db.SelectContext(ctx, &contents, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list contents: %w", err)
	}

	if contents == nil {
		contents = []*domain.Content{}
	}

	return contents, nil
}

// Search finds content rows whose title or URL matches the query,
// case-insensitively, newest first.
func (r *ContentRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Content, error) {
	var contents []*domain.Content
	pattern := "%" + query + "%"
	stmt := `
		SELECT ` + contentColumns + `
		FROM contents
		WHERE title ILIKE $1 OR url ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	if err := r.db.SelectContext(ctx, &contents, stmt, pattern, limit); err != nil {
		return nil, fmt.Errorf("failed to search contents: %w", err)
	}

	if contents == nil {
		contents = []*domain.Content{}
	}

	return contents, nil
}

// UpdateStatus sets the analysis status of a content row.
func (r *ContentRepository) UpdateStatus(ctx context.Context, id string, status domain.ContentStatus) error {
	query := `UPDATE contents SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update content status: %w", err)
	}
	return execRequireRows(result, nil, fmt.Errorf("content %s: %w", id, domain.ErrNotFound))
}

// UpdateStatusTx sets the analysis status within the caller's transaction.
func (r *ContentRepository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id string, status domain.ContentStatus) error {
	query := `UPDATE contents SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := tx.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update content status: %w", err)
	}
	return execRequireRows(result, nil, fmt.Errorf("content %s: %w", id, domain.ErrNotFound))
}

// UpdateCleanedTextTx replaces the editable text within the caller's
// transaction. OriginalText is never rewritten.
func (r *ContentRepository) UpdateCleanedTextTx(ctx context.Context, tx *sqlx.Tx, id, cleanedText string) error {
	query := `UPDATE contents SET cleaned_text = $1, updated_at = NOW() WHERE id = $2`

	result, err := tx.ExecContext(ctx, query, cleanedText, id)
	if err != nil {
		return fmt.Errorf("failed to update cleaned text: %w", err)
	}
	return execRequireRows(result, nil, fmt.Errorf("content %s: %w", id, domain.ErrNotFound))
}

// Delete removes a content row. Suggestions and audit entries cascade.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	return execRequireRows(result, nil, fmt.Errorf("content %s: %w", id, domain.ErrNotFound))
}

// Count returns the total number of content rows.
func (r *ContentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM contents`); err != nil {
		return 0, fmt.Errorf("failed to count contents: %w", err)
	}
	return count, nil
}

// CountByStatus returns content counts grouped by status.
func (r *ContentRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM contents GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count contents: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan content count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content counts: %w", err)
	}

	return counts, nil
}

// ListStalePending returns pending content rows created before the cutoff,
// oldest first. The sweeper re-queues these for analysis.
func (r *ContentRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Content, error) {
	var contents []*domain.Content
	query := `
		SELECT ` + contentColumns + `
		FROM contents
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3
	`

	if err := r.db.SelectContext(ctx, &contents, query, domain.ContentStatusPending, cutoff, limit); err != nil {
		return nil, fmt.Errorf("failed to list stale pending contents: %w", err)
	}

	return contents, nil
}
