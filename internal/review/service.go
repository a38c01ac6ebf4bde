// Package review drives the suggestion lifecycle: approving, rejecting, and
// applying proposed edits to stored content.
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/proofcrawl/internal/database"
	"github.com/jonesrussell/proofcrawl/internal/domain"
	"github.com/jonesrussell/proofcrawl/internal/logger"
)

// errApplyConflict aborts an apply transaction that must report false
// without an error: unknown id, terminal status, or drifted text.
var errApplyConflict = errors.New("apply conflict")

// Service enforces the suggestion state machine and performs the text
// splice for applied suggestions.
type Service struct {
	db          *sqlx.DB
	suggestions *database.SuggestionRepository
	contents    *database.ContentRepository
	audits      *database.AuditRepository
	logger      logger.Interface
}

// NewService creates a review service.
func NewService(
	db *sqlx.DB,
	suggestions *database.SuggestionRepository,
	contents *database.ContentRepository,
	audits *database.AuditRepository,
	log logger.Interface,
) *Service {
	return &Service{
		db:          db,
		suggestions: suggestions,
		contents:    contents,
		audits:      audits,
		logger:      log,
	}
}

// Approve moves a pending suggestion to approved. Unknown ids report
// ErrNotFound; any other status reports ErrInvalidTransition.
func (s *Service) Approve(ctx context.Context, id string) error {
	updated, err := s.suggestions.TransitionStatus(ctx, id, domain.SuggestionStatusApproved, domain.SuggestionStatusPending)
	if err != nil {
		return err
	}
	if updated {
		s.logger.Info("suggestion approved", logger.String("suggestion_id", id))
		return nil
	}

	if _, err := s.suggestions.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("suggestion %s cannot be approved: %w", id, domain.ErrInvalidTransition)
}

// Reject moves a pending or approved suggestion to rejected.
func (s *Service) Reject(ctx context.Context, id string) error {
	updated, err := s.suggestions.TransitionStatus(
		ctx, id, domain.SuggestionStatusRejected,
		domain.SuggestionStatusPending, domain.SuggestionStatusApproved,
	)
	if err != nil {
		return err
	}
	if updated {
		s.logger.Info("suggestion rejected", logger.String("suggestion_id", id))
		return nil
	}

	if _, err := s.suggestions.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("suggestion %s cannot be rejected: %w", id, domain.ErrInvalidTransition)
}

// Apply splices an accepted edit into its content's cleaned text. It
// reports false without an error when nothing was applied: the suggestion
// does not exist, is already settled, or its recorded text no longer
// matches the content. The suggestion flip, the splice, and the audit entry
// commit atomically; the suggestion's offsets are verified against the
// locked row inside the same transaction, so a stale proposal can never
// corrupt the text.
func (s *Service) Apply(ctx context.Context, id, userID string) (bool, error) {
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		suggestion, err := s.suggestions.GetByIDForUpdateTx(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errApplyConflict
			}
			return err
		}
		if !suggestion.Status.CanApply() {
			return errApplyConflict
		}

		content, err := s.contents.GetByIDForUpdateTx(ctx, tx, suggestion.ContentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errApplyConflict
			}
			return err
		}

		newText, ok := spliceText(content.CleanedText, suggestion.StartPosition, suggestion.EndPosition, suggestion.SuggestedText)
		if !ok || content.CleanedText[suggestion.StartPosition:suggestion.EndPosition] != suggestion.OriginalText {
			s.logger.Warn("suggestion no longer matches its content",
				logger.String("suggestion_id", id),
				logger.String("content_id", suggestion.ContentID))
			return errApplyConflict
		}

		updated, err := s.suggestions.TransitionStatusTx(
			ctx, tx, id, domain.SuggestionStatusApplied,
			domain.SuggestionStatusPending, domain.SuggestionStatusApproved,
		)
		if err != nil {
			return err
		}
		if !updated {
			return errApplyConflict
		}

		if err := s.contents.UpdateCleanedTextTx(ctx, tx, content.ID, newText); err != nil {
			return err
		}

		entry := domain.NewAuditLog(content.ID, domain.AuditActionSuggestionApplied, fmt.Sprintf("Applied suggestion %s", id)).
			WithUser(userID)
		return s.audits.InsertTx(ctx, tx, entry)
	})
	if errors.Is(err, errApplyConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.logger.Info("suggestion applied", logger.String("suggestion_id", id))
	return true, nil
}

// spliceText replaces text[start:end] with replacement. ok is false when
// the half-open range does not address valid byte offsets.
func spliceText(text string, start, end int, replacement string) (string, bool) {
	if start < 0 || end < start || end > len(text) {
		return "", false
	}
	return text[:start] + replacement + text[end:], true
}
