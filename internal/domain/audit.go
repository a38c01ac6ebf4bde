package domain

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the pipeline.
const (
	// AuditActionCrawled is written when a page is persisted by the crawler.
	AuditActionCrawled = "crawled"
	// AuditActionAnalyzed is written when suggestions are generated.
	AuditActionAnalyzed = "analyzed"
	// AuditActionSuggestionApplied is written when an edit is spliced in.
	AuditActionSuggestionApplied = "suggestion_applied"
)

// AuditLog is an append-only event record. Rows are never mutated.
type AuditLog struct {
	ID        string    `db:"id"         json:"id"`
	ContentID *string   `db:"content_id" json:"content_id,omitempty"`
	Action    string    `db:"action"     json:"action"`
	Details   string    `db:"details"    json:"details"`
	UserID    *string   `db:"user_id"    json:"user_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NewAuditLog creates an audit entry tied to a content row.
func NewAuditLog(contentID, action, details string) *AuditLog {
	return &AuditLog{
		ID:        uuid.New().String(),
		ContentID: &contentID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
}

// WithUser attaches the acting user to the entry.
func (a *AuditLog) WithUser(userID string) *AuditLog {
	if userID != "" {
		a.UserID = &userID
	}
	return a
}
