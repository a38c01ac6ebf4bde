package analyzer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/proofcrawl/internal/config"
	"github.com/jonesrussell/proofcrawl/internal/database"
	"github.com/jonesrussell/proofcrawl/internal/domain"
	"github.com/jonesrussell/proofcrawl/internal/logger"
)

// Result summarizes one analysis run.
type Result struct {
	ContentID       string               `json:"content_id"`
	Backend         string               `json:"backend"`
	Suggestions     []*domain.Suggestion `json:"suggestions"`
	AlreadyAnalyzed bool                 `json:"already_analyzed"`
}

// Engine runs content through a backend and persists the accepted proposals.
// Suggestions, the content status flip, and the audit entry commit in one
// transaction; a failure leaves the content untouched and retryable.
type Engine struct {
	db          *sqlx.DB
	contents    *database.ContentRepository
	suggestions *database.SuggestionRepository
	audits      *database.AuditRepository
	primary     Backend
	fallback    Backend
	chunkSize   int
	logger      logger.Interface
}

// NewEngine creates an analysis engine. fallback may be nil when the
// primary backend is already the rules backend.
func NewEngine(
	db *sqlx.DB,
	contents *database.ContentRepository,
	suggestions *database.SuggestionRepository,
	audits *database.AuditRepository,
	primary, fallback Backend,
	chunkSize int,
	log logger.Interface,
) *Engine {
	return &Engine{
		db:          db,
		contents:    contents,
		suggestions: suggestions,
		audits:      audits,
		primary:     primary,
		fallback:    fallback,
		chunkSize:   chunkSize,
		logger:      log,
	}
}

// SelectBackends picks the primary and fallback backends from configuration.
// Auto means OpenAI when an API key is present, rules otherwise; the rules
// backend needs no fallback of its own.
func SelectBackends(cfg config.AnalyzerConfig, log logger.Interface) (Backend, Backend) {
	rules := NewRulesBackend()

	switch cfg.Backend {
	case config.BackendRules:
		return rules, nil
	case config.BackendOpenAI:
		return NewOpenAIBackend(cfg.OpenAI, log), rules
	default:
		if cfg.OpenAI.APIKey != "" {
			return NewOpenAIBackend(cfg.OpenAI, log), rules
		}
		log.Warn("no OpenAI API key configured, falling back to basic rules")
		return rules, nil
	}
}

// Analyze generates and stores suggestions for a content row, returning the
// stored set. A primary backend outage restarts the chunk walk on the
// fallback so one run never mixes backends.
func (e *Engine) Analyze(ctx context.Context, contentID string) (*Result, error) {
	content, err := e.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}

	chunks := SplitChunks(content.CleanedText, e.chunkSize)

	backend := e.primary
	suggestions, err := e.collect(ctx, backend, content, chunks)
	if errors.Is(err, domain.ErrBackendUnavailable) && e.fallback != nil {
		e.logger.Warn("analysis backend unavailable, falling back",
			logger.String("content_id", contentID),
			logger.String("backend", backend.Name()),
			logger.Error(err))
		backend = e.fallback
		suggestions, err = e.collect(ctx, backend, content, chunks)
	}
	if err != nil {
		return nil, err
	}

	err = database.WithTx(ctx, e.db, func(tx *sqlx.Tx) error {
		if txErr := e.suggestions.InsertBatchTx(ctx, tx, suggestions); txErr != nil {
			return txErr
		}
		if txErr := e.contents.UpdateStatusTx(ctx, tx, contentID, domain.ContentStatusAnalyzed); txErr != nil {
			return txErr
		}
		details := fmt.Sprintf("Generated %d suggestions using %s", len(suggestions), backend.Name())
		return e.audits.InsertTx(ctx, tx, domain.NewAuditLog(contentID, domain.AuditActionAnalyzed, details))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err)
	}

	e.logger.Info("content analyzed",
		logger.String("content_id", contentID),
		logger.String("backend", backend.Name()),
		logger.Int("suggestions", len(suggestions)))

	return &Result{
		ContentID:   contentID,
		Backend:     backend.Name(),
		Suggestions: suggestions,
	}, nil
}

// AnalyzeIfNeeded analyzes a content row unless it already was. force
// resets the row to pending and re-runs, adding to any existing
// suggestions.
func (e *Engine) AnalyzeIfNeeded(ctx context.Context, contentID string, force bool) (*Result, error) {
	content, err := e.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}

	if content.Status != domain.ContentStatusPending {
		if !force {
			return &Result{
				ContentID:       contentID,
				AlreadyAnalyzed: true,
			}, nil
		}
		if err := e.contents.UpdateStatus(ctx, contentID, domain.ContentStatusPending); err != nil {
			return nil, err
		}
	}

	return e.Analyze(ctx, contentID)
}

// collect walks the chunks through one backend, validates the proposals,
// and re-bases their offsets into full-text coordinates.
func (e *Engine) collect(ctx context.Context, backend Backend, content *domain.Content, chunks []Chunk) ([]*domain.Suggestion, error) {
	suggestions := []*domain.Suggestion{}

	for _, chunk := range chunks {
		raws, err := backend.Propose(ctx, chunk.Text)
		if err != nil {
			if errors.Is(err, domain.ErrMalformedBackendResponse) {
				e.logger.Warn("skipping chunk with malformed backend response",
					logger.String("content_id", content.ID),
					logger.Int("chunk_offset", chunk.Offset),
					logger.Error(err))
				continue
			}
			return nil, err
		}

		for i := range raws {
			raw := &raws[i]
			if !raw.Complete() {
				e.logger.Warn("skipping incomplete suggestion",
					logger.String("content_id", content.ID),
					logger.Int("chunk_offset", chunk.Offset))
				continue
			}

			s := domain.NewSuggestion(content.ID)
			s.OriginalText = *raw.OriginalText
			s.SuggestedText = *raw.SuggestedText
			s.ErrorType = *raw.ErrorType
			s.Explanation = *raw.Explanation
			s.ConfidenceScore = *raw.ConfidenceScore
			s.StartPosition = *raw.StartPosition + chunk.Offset
			s.EndPosition = *raw.EndPosition + chunk.Offset
			suggestions = append(suggestions, s)
		}
	}

	return suggestions, nil
}
