package serve

import (
	"context"

	"github.com/jmoiron/sqlx"

	cmdcommon "github.com/jonesrussell/proofcrawl/cmd/common"
	"github.com/jonesrussell/proofcrawl/internal/analyzer"
	"github.com/jonesrussell/proofcrawl/internal/api"
	"github.com/jonesrussell/proofcrawl/internal/crawler"
	"github.com/jonesrussell/proofcrawl/internal/review"
	"github.com/jonesrussell/proofcrawl/internal/sweep"
)

// application bundles the wired services whose lifecycle the serve
// command manages.
type application struct {
	db           *sqlx.DB
	handlers     *api.Handlers
	crawlService *crawler.Service
	sweeper      *sweep.Sweeper
}

// close releases resources held by the application.
func (a *application) close() {
	if a.db != nil {
		a.db.Close()
	}
}

// buildApplication wires repositories, pipeline services, and HTTP
// handlers over a single database pool.
func buildApplication(ctx context.Context, deps cmdcommon.CommandDeps) (*application, error) {
	cfg := deps.Config
	log := deps.Logger

	db, err := cmdcommon.OpenDatabase(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	repos := cmdcommon.NewRepositories(db)

	index := cmdcommon.NewSearchIndex(ctx, cfg.Search, repos.Contents, log)

	// Crawl pipeline
	fetcher := crawler.NewFetcher(cfg.Crawler.UserAgent, cfg.Crawler.RequestTimeout, cfg.Crawler.MaxBodySize)
	store := crawler.NewStore(db, repos.Contents, repos.Jobs, repos.Audits)
	engine := crawler.NewEngine(fetcher, crawler.NewExtractor(), store, index, log, crawler.EngineConfig{
		Delay:           cfg.Crawler.Delay,
		MaxLinksPerPage: cfg.Crawler.MaxLinksPerPage,
	})
	crawlService := crawler.NewService(engine, repos.Jobs, log, cfg.Crawler)

	// Analysis and review
	primary, fallback := analyzer.SelectBackends(cfg.Analyzer, log)
	analysisEngine := analyzer.NewEngine(
		db, repos.Contents, repos.Suggestions, repos.Audits,
		primary, fallback, cfg.Analyzer.ChunkSize, log)
	reviewService := review.NewService(db, repos.Suggestions, repos.Contents, repos.Audits, log)

	// Scheduled maintenance
	var sweeper *sweep.Sweeper
	if cfg.Sweeper.Enabled {
		var contentAnalyzer sweep.ContentAnalyzer
		if cfg.Sweeper.AnalyzePending {
			contentAnalyzer = analysisEngine
		}
		sweeper = sweep.NewSweeper(repos.Jobs, repos.Contents, contentAnalyzer, cfg.Sweeper, log)
	}

	handlers := &api.Handlers{
		Crawl:       api.NewCrawlHandler(crawlService, repos.Jobs),
		Content:     api.NewContentHandler(repos.Contents, analysisEngine, index),
		Suggestions: api.NewSuggestionsHandler(repos.Suggestions, reviewService),
		Dashboard:   api.NewDashboardHandler(repos.Jobs, repos.Contents, repos.Suggestions, repos.Audits),
		DB:          db,
	}

	return &application{
		db:           db,
		handlers:     handlers,
		crawlService: crawlService,
		sweeper:      sweeper,
	}, nil
}
