package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/jonesrussell/proofcrawl/internal/config"
	"github.com/jonesrussell/proofcrawl/internal/database"
	"github.com/jonesrussell/proofcrawl/internal/domain"
	"github.com/jonesrussell/proofcrawl/internal/logger"
)

// statusUpdateTimeout bounds the final job status write after a run ends.
// Runs finish on their own detached context, which may already be cancelled.
const statusUpdateTimeout = 10 * time.Second

// ErrInvalidSeedURL reports a seed that is not an absolute http(s) URL.
var ErrInvalidSeedURL = errors.New("invalid seed url")

// runHandle tracks one in-flight crawl so it can be cancelled and awaited.
type runHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Service owns the crawl job lifecycle: creating job rows, launching runs on
// detached contexts, cancelling them, and recording their final status.
type Service struct {
	engine *Engine
	jobs   *database.JobRepository
	logger logger.Interface
	cfg    config.CrawlerConfig

	mu      sync.Mutex
	running map[string]*runHandle

	baseCtx    context.Context
	cancelBase context.CancelFunc
	wg         sync.WaitGroup
}

// NewService creates a crawl service. Runs launched by StartJob live until
// they finish, are cancelled, or Stop is called.
func NewService(engine *Engine, jobs *database.JobRepository, log logger.Interface, cfg config.CrawlerConfig) *Service {
	baseCtx, cancelBase := context.WithCancel(context.Background())
	return &Service{
		engine:     engine,
		jobs:       jobs,
		logger:     log,
		cfg:        cfg,
		running:    make(map[string]*runHandle),
		baseCtx:    baseCtx,
		cancelBase: cancelBase,
	}
}

// StartJob creates a pending job for the seed URL and launches its run in
// the background, detached from the caller's context. Non-positive limits
// fall back to the configured defaults.
func (s *Service) StartJob(ctx context.Context, seedURL string, maxDepth, maxPages int) (string, error) {
	if err := validateSeedURL(seedURL); err != nil {
		return "", err
	}
	if maxDepth <= 0 {
		maxDepth = s.cfg.MaxDepth
	}
	if maxPages <= 0 {
		maxPages = s.cfg.MaxPages
	}

	job := domain.NewJob(seedURL, maxDepth, maxPages)
	if err := s.jobs.Create(ctx, job); err != nil {
		return "", err
	}

	runCtx, cancel := context.WithCancel(s.baseCtx)
	handle := &runHandle{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	s.running[job.ID] = handle
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(runCtx, job, handle)

	s.logger.Info("crawl job started",
		logger.String("job_id", job.ID),
		logger.String("url", seedURL),
		logger.Int("max_depth", maxDepth),
		logger.Int("max_pages", maxPages))

	return job.ID, nil
}

// Cancel stops a pending or running job. Terminal jobs report
// ErrInvalidTransition and unknown ids ErrNotFound.
func (s *Service) Cancel(ctx context.Context, jobID string) error {
	if err := s.jobs.Cancel(ctx, jobID); err != nil {
		return err
	}

	s.mu.Lock()
	handle, ok := s.running[jobID]
	s.mu.Unlock()
	if ok {
		handle.cancel()
	}

	return nil
}

// Wait blocks until the job's run goroutine finishes or the context ends.
// It returns immediately for jobs this service is not running.
func (s *Service) Wait(ctx context.Context, jobID string) error {
	s.mu.Lock()
	handle, ok := s.running[jobID]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-handle.done:
		return nil
	}
}

// Stop cancels every in-flight run and waits for them to wind down.
func (s *Service) Stop() {
	s.cancelBase()
	s.wg.Wait()
}

func (s *Service) run(ctx context.Context, job *domain.Job, handle *runHandle) {
	defer s.wg.Done()
	defer close(handle.done)
	defer func() {
		s.mu.Lock()
		delete(s.running, job.ID)
		s.mu.Unlock()
		handle.cancel()
	}()

	if err := s.jobs.MarkRunning(ctx, job.ID); err != nil {
		// Cancelled while still pending, or the row vanished. Either way
		// there is nothing to crawl.
		s.logger.Warn("job did not start",
			logger.String("job_id", job.ID),
			logger.Error(err))
		return
	}

	pages, err := s.engine.Crawl(ctx, job)

	finishCtx, cancelFinish := context.WithTimeout(context.Background(), statusUpdateTimeout)
	defer cancelFinish()

	switch {
	case err == nil:
		if cErr := s.jobs.Complete(finishCtx, job.ID); cErr != nil {
			s.logger.Error("failed to mark job completed",
				logger.String("job_id", job.ID),
				logger.Error(cErr))
			return
		}
		s.logger.Info("crawl job completed",
			logger.String("job_id", job.ID),
			logger.Int("pages_crawled", pages))

	case errors.Is(err, context.Canceled):
		// Cancel() usually flips the row before firing the context; this
		// covers runs stopped by Stop() during shutdown.
		if cErr := s.jobs.Cancel(finishCtx, job.ID); cErr != nil && !errors.Is(cErr, domain.ErrInvalidTransition) {
			s.logger.Error("failed to mark job cancelled",
				logger.String("job_id", job.ID),
				logger.Error(cErr))
		}
		s.logger.Info("crawl job cancelled",
			logger.String("job_id", job.ID),
			logger.Int("pages_crawled", pages))

	default:
		if fErr := s.jobs.Fail(finishCtx, job.ID, err.Error()); fErr != nil {
			s.logger.Error("failed to mark job failed",
				logger.String("job_id", job.ID),
				logger.Error(fErr))
		}
		s.logger.Error("crawl job failed",
			logger.String("job_id", job.ID),
			logger.Int("pages_crawled", pages),
			logger.Error(err))
	}
}

// validateSeedURL requires an absolute http(s) URL as the crawl seed.
func validateSeedURL(seedURL string) error {
	parsed, err := url.Parse(seedURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSeedURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: %q must be absolute http(s)", ErrInvalidSeedURL, seedURL)
	}
	return nil
}
