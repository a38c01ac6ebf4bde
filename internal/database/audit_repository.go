package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/proofcrawl/internal/domain"
)

// AuditRepository handles the append-only audit trail. Entries are written
// inside the same transaction as the change they describe so the trail can
// never drift from the data.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// AuditEntry is an audit row joined with the URL of the content it touched,
// for activity feeds.
type AuditEntry struct {
	domain.AuditLog
	ContentURL *string `db:"content_url" json:"content_url,omitempty"`
}

const insertAuditQuery = `
	INSERT INTO audit_logs (id, content_id, action, details, user_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
`

// Insert appends an audit entry.
func (r *AuditRepository) Insert(ctx context.Context, entry *domain.AuditLog) error {
	_, err := r.db.ExecContext(
		ctx,
		insertAuditQuery,
		entry.ID,
		entry.ContentID,
		entry.Action,
		entry.Details,
		entry.UserID,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// InsertTx appends an audit entry within the caller's transaction.
func (r *AuditRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, entry *domain.AuditLog) error {
	_, err := tx.ExecContext(
		ctx,
		insertAuditQuery,
		entry.ID,
		entry.ContentID,
		entry.Action,
		entry.Details,
		entry.UserID,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// Recent returns the latest audit entries with their content URLs, newest
// first.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]*AuditEntry, error) {
	var entries []*AuditEntry
	query := `
		SELECT a.id, a.content_id, a.action, a.details, a.user_id, a.created_at,
		       c.url AS content_url
		FROM audit_logs a
		LEFT JOIN contents c ON c.id = a.content_id
		ORDER BY a.created_at DESC
		LIMIT $1
	`

	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	if entries == nil {
		entries = []*AuditEntry{}
	}

	return entries, nil
}

// ListByContent returns the audit history for one content row, oldest first.
func (r *AuditRepository) ListByContent(ctx context.Context, contentID string) ([]*domain.AuditLog, error) {
	var entries []*domain.AuditLog
	query := `
		SELECT id, content_id, action, details, user_id, created_at
		FROM audit_logs
		WHERE content_id = $1
		ORDER BY created_at ASC
	`

	if err := r.db.SelectContext(ctx, &entries, query, contentID); err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	if entries == nil {
		entries = []*domain.AuditLog{}
	}

	return entries, nil
}
