package common

import (
	"context"

	"github.com/jonesrussell/proofcrawl/internal/config"
	"github.com/jonesrussell/proofcrawl/internal/database"
	"github.com/jonesrussell/proofcrawl/internal/logger"
	"github.com/jonesrussell/proofcrawl/internal/search"
)

// NewSearchIndex selects the content index implementation: Elasticsearch
// when enabled and reachable, the Postgres-backed fallback otherwise. The
// fallback keeps crawling and search usable without an Elasticsearch
// cluster, just with plainer matching.
func NewSearchIndex(
	ctx context.Context,
	cfg config.SearchConfig,
	contents *database.ContentRepository,
	log logger.Interface,
) search.Index {
	if !cfg.Enabled {
		return search.NewStoreIndex(contents)
	}

	elastic, err := search.NewElastic(cfg, log)
	if err != nil {
		log.Warn("search cluster unavailable, falling back to database queries",
			logger.Error(err))
		return search.NewStoreIndex(contents)
	}

	if err := elastic.EnsureIndex(ctx); err != nil {
		log.Warn("search index setup failed, falling back to database queries",
			logger.Error(err))
		return search.NewStoreIndex(contents)
	}

	return elastic
}
