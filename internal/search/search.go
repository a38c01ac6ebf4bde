// Package search indexes crawled content for full-text queries. An
// Elasticsearch index serves queries when one is configured; otherwise they
// fall back to the database.
package search

import (
	"context"

	"github.com/jonesrussell/proofcrawl/internal/domain"
)

// ContentHit is a single search result.
type ContentHit struct {
	ID     string  `json:"id"`
	URL    string  `json:"url"`
	Title  string  `json:"title"`
	Status string  `json:"status"`
	Score  float64 `json:"score"`
}

// Index is the search surface used by the API and the crawler.
type Index interface {
	// IndexContent adds or replaces a content document.
	IndexContent(ctx context.Context, content *domain.Content) error
	// Search returns the best matches for the query, most relevant first.
	Search(ctx context.Context, query string, limit int) ([]ContentHit, error)
	// Available reports whether the backing index can serve queries.
	Available() bool
}
