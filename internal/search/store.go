package search

import (
	"context"
	"fmt"

	"github.com/jonesrussell/proofcrawl/internal/database"
	"github.com/jonesrussell/proofcrawl/internal/domain"
)

// StoreIndex serves search queries straight from the contents table. It is
// the fallback when Elasticsearch is not configured.
type StoreIndex struct {
	contents *database.ContentRepository
}

// NewStoreIndex creates a database-backed search index.
func NewStoreIndex(contents *database.ContentRepository) *StoreIndex {
	return &StoreIndex{contents: contents}
}

// IndexContent is a no-op. Content rows are queryable as soon as the
// crawler commits them.
func (s *StoreIndex) IndexContent(_ context.Context, _ *domain.Content) error {
	return nil
}

// Search matches the query against content titles and URLs. Scores are
// zero; the database does not rank matches.
func (s *StoreIndex) Search(ctx context.Context, query string, limit int) ([]ContentHit, error) {
	contents, err := s.contents.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search contents: %w", err)
	}

	hits := make([]ContentHit, 0, len(contents))
	for _, c := range contents {
		hits = append(hits, ContentHit{
			ID:     c.ID,
			URL:    c.URL,
			Title:  c.Title,
			Status: string(c.Status),
		})
	}

	return hits, nil
}

// Available always reports true; the database is a hard dependency.
func (s *StoreIndex) Available() bool {
	return true
}
