package crawler

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/proofcrawl/internal/database"
	"github.com/jonesrussell/proofcrawl/internal/domain"
)

// Store persists one crawled page atomically: the content row, its audit
// entry, and the job's page counter land in a single transaction so a crash
// can never leave them disagreeing.
type Store struct {
	db       *sqlx.DB
	contents *database.ContentRepository
	jobs     *database.JobRepository
	audits   *database.AuditRepository
}

// NewStore creates a page store over the given repositories.
func NewStore(db *sqlx.DB, contents *database.ContentRepository, jobs *database.JobRepository, audits *database.AuditRepository) *Store {
	return &Store{db: db, contents: contents, jobs: jobs, audits: audits}
}

// SavePage records a crawled page for a job. It reports false without error
// when the URL is already ingested by an earlier job; the caller skips that
// branch without counting the page.
func (s *Store) SavePage(ctx context.Context, jobID string, content *domain.Content) (bool, error) {
	var inserted bool

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var txErr error
		inserted, txErr = s.contents.CreateTx(ctx, tx, content)
		if txErr != nil {
			return txErr
		}
		if !inserted {
			return nil
		}

		entry := domain.NewAuditLog(content.ID, domain.AuditActionCrawled, "Successfully crawled "+content.URL)
		if txErr := s.audits.InsertTx(ctx, tx, entry); txErr != nil {
			return txErr
		}

		return s.jobs.RecordPageTx(ctx, tx, jobID)
	})
	if err != nil {
		return false, fmt.Errorf("failed to save page %s: %w", content.URL, err)
	}

	return inserted, nil
}
