package crawler

import (
	"bytes"
	"context"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/proofcrawl/internal/domain"
	"github.com/jonesrussell/proofcrawl/internal/logger"
)

// PageFetcher retrieves page bodies.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// PageSaver persists crawled pages. It reports false when the URL was
// already ingested.
type PageSaver interface {
	SavePage(ctx context.Context, jobID string, content *domain.Content) (bool, error)
}

// ContentIndexer mirrors crawled pages into a search index. Indexing is
// best-effort and never fails a crawl.
type ContentIndexer interface {
	IndexContent(ctx context.Context, content *domain.Content) error
}

// EngineConfig carries the crawl politeness and branching knobs.
type EngineConfig struct {
	Delay           time.Duration
	MaxLinksPerPage int
}

// Engine walks one site breadth-first within a job's depth and page bounds.
// Per-URL failures are logged and absorbed; only context cancellation stops
// a run early.
type Engine struct {
	fetcher   PageFetcher
	extractor *Extractor
	store     PageSaver
	index     ContentIndexer
	logger    logger.Interface
	cfg       EngineConfig
}

// NewEngine creates a crawl engine. index may be nil when no search mirror
// is configured.
func NewEngine(fetcher PageFetcher, extractor *Extractor, store PageSaver, index ContentIndexer, log logger.Interface, cfg EngineConfig) *Engine {
	return &Engine{
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		index:     index,
		logger:    log,
		cfg:       cfg,
	}
}

type queueItem struct {
	url   string
	depth int
}

// Crawl runs the job to completion and returns the number of pages stored.
// The walk is FIFO over (url, depth) pairs seeded with the job URL, so pages
// are visited breadth-first and the page cap favors shallow pages.
func (e *Engine) Crawl(ctx context.Context, job *domain.Job) (int, error) {
	queue := []queueItem{{url: job.URL, depth: 0}}
	visited := make(map[string]struct{})
	pages := 0
	failures := 0
	fetchedAny := false
	start := time.Now()

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return pages, ctx.Err()
		default:
		}

		item := queue[0]
		queue = queue[1:]

		if pages >= job.TotalPages {
			break
		}
		if item.depth > job.MaxDepth {
			continue
		}
		if _, ok := visited[item.url]; ok {
			continue
		}
		visited[item.url] = struct{}{}

		// Politeness pause between requests, never before the first one.
		if fetchedAny {
			if err := sleepContext(ctx, e.cfg.Delay); err != nil {
				return pages, err
			}
		}
		fetchedAny = true

		body, err := e.fetcher.Fetch(ctx, item.url)
		if err != nil {
			if ctx.Err() != nil {
				return pages, ctx.Err()
			}
			failures++
			e.logger.Warn("failed to fetch page",
				logger.String("job_id", job.ID),
				logger.String("url", item.url),
				logger.Error(err))
			continue
		}

		extraction, err := e.extractor.Extract(body, item.url)
		if err != nil {
			failures++
			e.logger.Warn("failed to extract content",
				logger.String("job_id", job.ID),
				logger.String("url", item.url),
				logger.Error(err))
			continue
		}

		content := domain.NewContent(item.url, extraction.Title, extraction.OriginalText, extraction.CleanedText)

		inserted, err := e.store.SavePage(ctx, job.ID, content)
		if err != nil {
			if ctx.Err() != nil {
				return pages, ctx.Err()
			}
			failures++
			e.logger.Error("failed to save page",
				logger.String("job_id", job.ID),
				logger.String("url", item.url),
				logger.Error(err))
			continue
		}
		if !inserted {
			e.logger.Debug("url already ingested, skipping",
				logger.String("job_id", job.ID),
				logger.String("url", item.url))
			continue
		}

		pages++
		e.logger.Info("crawled page",
			logger.String("job_id", job.ID),
			logger.String("url", item.url),
			logger.Int("depth", item.depth),
			logger.Int("pages", pages))

		e.indexPage(ctx, content)

		if item.depth < job.MaxDepth {
			queue = append(queue, e.expand(body, item)...)
		}
	}

	e.logger.Info("crawl finished",
		logger.String("job_id", job.ID),
		logger.String("url", job.URL),
		logger.Int("pages_crawled", pages),
		logger.Int("pages_failed", failures),
		logger.Duration("duration", time.Since(start)))

	return pages, nil
}

// expand parses the page for same-host links and returns the next queue
// items, capped at MaxLinksPerPage.
func (e *Engine) expand(body []byte, item queueItem) []queueItem {
	base, err := url.Parse(item.url)
	if err != nil {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	links := SelectLinks(doc, base)
	if len(links) > e.cfg.MaxLinksPerPage {
		links = links[:e.cfg.MaxLinksPerPage]
	}

	items := make([]queueItem, 0, len(links))
	for _, link := range links {
		items = append(items, queueItem{url: link, depth: item.depth + 1})
	}

	return items
}

func (e *Engine) indexPage(ctx context.Context, content *domain.Content) {
	if e.index == nil {
		return
	}
	if err := e.index.IndexContent(ctx, content); err != nil {
		e.logger.Warn("failed to index page",
			logger.String("url", content.URL),
			logger.Error(err))
	}
}

// sleepContext pauses for d unless the context ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
