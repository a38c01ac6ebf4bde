package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/proofcrawl/internal/domain"
)

// SuggestionRepository handles database operations for proofreading
// suggestions.
type SuggestionRepository struct {
	db *sqlx.DB
}

// NewSuggestionRepository creates a new suggestion repository.
func NewSuggestionRepository(db *sqlx.DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

const suggestionColumns = `id, content_id, original_text, suggested_text, error_type,
       explanation, confidence_score, start_position, end_position, status, created_at`

// SuggestionFilter narrows List results. Zero values mean "no filter".
type SuggestionFilter struct {
	ContentID     string
	Status        string
	ErrorType     string
	MinConfidence float64
	Limit         int
	Offset        int
}

// PerformanceStats summarizes how the review pipeline is performing.
// SuccessRate is the percentage of reviewed suggestions that were approved
// or applied; it is zero when nothing has been reviewed yet.
type PerformanceStats struct {
	AvgSuggestionsPerContent float64 `db:"avg_suggestions_per_content" json:"avg_suggestions_per_content"`
	AvgConfidenceScore       float64 `db:"avg_confidence_score"        json:"avg_confidence_score"`
	SuccessRate              float64 `db:"success_rate"                json:"suggestion_success_rate"`
}

// ErrorTypeStat aggregates the suggestions sharing an error type.
type ErrorTypeStat struct {
	ErrorType     string  `db:"error_type"     json:"error_type"`
	Count         int     `db:"count"          json:"count"`
	AvgConfidence float64 `db:"avg_confidence" json:"avg_confidence"`
}

// InsertBatchTx inserts suggestions within the caller's transaction.
func (r *SuggestionRepository) InsertBatchTx(ctx context.Context, tx *sqlx.Tx, suggestions []*domain.Suggestion) error {
	query := `
		INSERT INTO suggestions (id, content_id, original_text, suggested_text, error_type,
		                         explanation, confidence_score, start_position, end_position, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, s := range suggestions {
		_, err := tx.ExecContext(
			ctx,
			query,
			s.ID,
			s.ContentID,
			s.OriginalText,
			s.SuggestedText,
			s.ErrorType,
			s.Explanation,
			s.ConfidenceScore,
			s.StartPosition,
			s.EndPosition,
			s.Status,
			s.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert suggestion: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a suggestion by its id.
func (r *SuggestionRepository) GetByID(ctx context.Context, id string) (*domain.Suggestion, error) {
	var suggestion domain.Suggestion
	query := `SELECT ` + suggestionColumns + ` FROM suggestions WHERE id = $1`

	if err := r.db.GetContext(ctx, &suggestion, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}

	return &suggestion, nil
}

// GetByIDForUpdateTx retrieves a suggestion and locks it for the duration of
// the caller's transaction.
func (r *SuggestionRepository) GetByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Suggestion, error) {
	var suggestion domain.Suggestion
	query := `SELECT ` + suggestionColumns + ` FROM suggestions WHERE id = $1 FOR UPDATE`

	if err := tx.GetContext(ctx, &suggestion, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}

	return &suggestion, nil
}

// ListByContent retrieves all suggestions for a content row, highest
// confidence first.
func (r *SuggestionRepository) ListByContent(ctx context.Context, contentID string) ([]*domain.Suggestion, error) {
	var suggestions []*domain.Suggestion
	query := `SELECT ` + suggestionColumns + ` FROM suggestions WHERE content_id = $1 ORDER BY confidence_score DESC, created_at ASC`

	if err := r.db.SelectContext(ctx, &suggestions, query, contentID); err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}

	if suggestions == nil {
		suggestions = []*domain.Suggestion{}
	}

	return suggestions, nil
}

// List retrieves suggestions matching the filter, newest first.
func (r *SuggestionRepository) List(ctx context.Context, filter SuggestionFilter) ([]*domain.Suggestion, error) {
	query := `SELECT ` + suggestionColumns + ` FROM suggestions`

	var clauses []string
	var args []any

	if filter.ContentID != "" {
		args = append(args, filter.ContentID)
		clauses = append(clauses, fmt.Sprintf("content_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.ErrorType != "" {
		args = append(args, filter.ErrorType)
		clauses = append(clauses, fmt.Sprintf("error_type = $%d", len(args)))
	}
	if filter.MinConfidence > 0 {
		args = append(args, filter.MinConfidence)
		clauses = append(clauses, fmt.Sprintf("confidence_score >= $%d", len(args)))
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var suggestions []*domain.Suggestion
	if err := r.db.SelectContext(ctx, &suggestions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}

	if suggestions == nil {
		suggestions = []*domain.Suggestion{}
	}

	return suggestions, nil
}

// TransitionStatus moves a suggestion from one of the given statuses to the
// target status and reports whether a row was updated. A false return means
// the suggestion is missing or not in an allowed source status.
func (r *SuggestionRepository) TransitionStatus(ctx context.Context, id string, to domain.SuggestionStatus, from ...domain.SuggestionStatus) (bool, error) {
	return transitionSuggestion(ctx, r.db, id, to, from...)
}

// TransitionStatusTx is TransitionStatus within the caller's transaction.
func (r *SuggestionRepository) TransitionStatusTx(ctx context.Context, tx *sqlx.Tx, id string, to domain.SuggestionStatus, from ...domain.SuggestionStatus) (bool, error) {
	return transitionSuggestion(ctx, tx, id, to, from...)
}

func transitionSuggestion(ctx context.Context, e sqlx.ExtContext, id string, to domain.SuggestionStatus, from ...domain.SuggestionStatus) (bool, error) {
	placeholders := make([]string, len(from))
	args := []any{to, id}
	for i, status := range from {
		args = append(args, status)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	query := fmt.Sprintf(
		`UPDATE suggestions SET status = $1 WHERE id = $2 AND status IN (%s)`,
		strings.Join(placeholders, ", "),
	)

	result, err := e.ExecContext(ctx, query, args...)
	updated, err := execRowsAffected(result, err)
	if err != nil {
		return false, fmt.Errorf("failed to transition suggestion: %w", err)
	}

	return updated, nil
}

// Count returns the total number of suggestions.
func (r *SuggestionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM suggestions`); err != nil {
		return 0, fmt.Errorf("failed to count suggestions: %w", err)
	}
	return count, nil
}

// CountByStatus returns suggestion counts grouped by status.
func (r *SuggestionRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	return r.countGrouped(ctx, `SELECT status, COUNT(*) FROM suggestions GROUP BY status`)
}

// StatsByErrorType returns per-error-type suggestion counts with the mean
// confidence score, most frequent type first.
func (r *SuggestionRepository) StatsByErrorType(ctx context.Context) ([]*ErrorTypeStat, error) {
	var stats []*ErrorTypeStat
	query := `
		SELECT error_type, COUNT(*) AS count, ROUND(AVG(confidence_score)::numeric, 2)::float AS avg_confidence
		FROM suggestions
		GROUP BY error_type
		ORDER BY count DESC
	`

	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to compute error type stats: %w", err)
	}

	if stats == nil {
		stats = []*ErrorTypeStat{}
	}

	return stats, nil
}

func (r *SuggestionRepository) countGrouped(ctx context.Context, query string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count suggestions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion count: %w", err)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate suggestion counts: %w", err)
	}

	return counts, nil
}

// HighConfidencePending returns pending suggestions at or above the
// confidence floor, most confident first. The dashboard surfaces these as
// review candidates.
func (r *SuggestionRepository) HighConfidencePending(ctx context.Context, minConfidence float64, limit int) ([]*domain.Suggestion, error) {
	var suggestions []*domain.Suggestion
	query := `
		SELECT ` + suggestionColumns + `
		FROM suggestions
		WHERE status = $1 AND confidence_score >= $2
		ORDER BY confidence_score DESC
		LIMIT $3
	`

	if err := r.db.SelectContext(ctx, &suggestions, query, domain.SuggestionStatusPending, minConfidence, limit); err != nil {
		return nil, fmt.Errorf("failed to list high confidence suggestions: %w", err)
	}

	if suggestions == nil {
		suggestions = []*domain.Suggestion{}
	}

	return suggestions, nil
}

// Performance computes aggregate review metrics across all suggestions.
func (r *SuggestionRepository) Performance(ctx context.Context) (*PerformanceStats, error) {
	var stats PerformanceStats
	query := `
		SELECT
			COALESCE((SELECT AVG(per.cnt)::float
			          FROM (SELECT COUNT(*) AS cnt FROM suggestions GROUP BY content_id) per), 0) AS avg_suggestions_per_content,
			COALESCE((SELECT AVG(confidence_score) FROM suggestions), 0) AS avg_confidence_score,
			COALESCE((SELECT CASE
			              WHEN COUNT(*) FILTER (WHERE status IN ('approved', 'rejected', 'applied')) = 0 THEN 0
			              ELSE COUNT(*) FILTER (WHERE status IN ('approved', 'applied'))::float * 100
			                   / COUNT(*) FILTER (WHERE status IN ('approved', 'rejected', 'applied'))
			          END
			          FROM suggestions), 0) AS success_rate
	`

	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to compute suggestion performance: %w", err)
	}

	return &stats, nil
}
