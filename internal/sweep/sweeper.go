// Package sweep runs scheduled maintenance: failing abandoned jobs and
// re-queuing content that never got analyzed.
package sweep

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/proofcrawl/internal/analyzer"
	"github.com/jonesrussell/proofcrawl/internal/config"
	"github.com/jonesrussell/proofcrawl/internal/database"
	"github.com/jonesrussell/proofcrawl/internal/logger"
)

const (
	// sweepTimeout bounds a single sweep run.
	sweepTimeout = 5 * time.Minute
	// pendingRetryAge is how old a pending content row must be before the
	// sweeper re-queues it for analysis.
	pendingRetryAge = 10 * time.Minute
	// pendingRetryLimit caps how many rows one sweep re-queues.
	pendingRetryLimit = 20
)

// ContentAnalyzer generates suggestions for content that has none yet.
type ContentAnalyzer interface {
	AnalyzeIfNeeded(ctx context.Context, contentID string, force bool) (*analyzer.Result, error)
}

// Sweeper periodically fails stuck jobs and retries stale analysis.
type Sweeper struct {
	cron     *cron.Cron
	jobs     *database.JobRepository
	contents *database.ContentRepository
	analyzer ContentAnalyzer
	cfg      config.SweeperConfig
	logger   logger.Interface
}

// NewSweeper creates a sweeper. The analyzer may be nil when pending
// retries are disabled.
func NewSweeper(
	jobs *database.JobRepository,
	contents *database.ContentRepository,
	contentAnalyzer ContentAnalyzer,
	cfg config.SweeperConfig,
	log logger.Interface,
) *Sweeper {
	if cfg.Schedule == "" {
		cfg.Schedule = config.DefaultSweepSchedule
	}

	return &Sweeper{
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		jobs:     jobs,
		contents: contents,
		analyzer: contentAnalyzer,
		cfg:      cfg,
		logger:   log,
	}
}

// Start registers the sweep on its schedule and starts the cron loop.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.Sweep); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("sweeper started", logger.String("schedule", s.cfg.Schedule))
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("sweeper stopped")
}

// Sweep runs one maintenance pass.
func (s *Sweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	s.failStuckJobs(ctx)

	if s.cfg.AnalyzePending && s.analyzer != nil {
		s.retryPendingContent(ctx)
	}
}

// failStuckJobs marks running jobs that have not progressed within the job
// timeout as failed. This recovers jobs abandoned by a crashed process.
func (s *Sweeper) failStuckJobs(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.cfg.JobTimeout)

	ids, err := s.jobs.FailStuck(ctx, cutoff, "job timed out")
	if err != nil {
		s.logger.Error("failed to sweep stuck jobs", logger.Error(err))
		return
	}

	for _, id := range ids {
		s.logger.Warn("marked stuck job as failed",
			logger.String("job_id", id),
			logger.Duration("job_timeout", s.cfg.JobTimeout))
	}
}

// retryPendingContent re-queues old pending content for analysis.
func (s *Sweeper) retryPendingContent(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-pendingRetryAge)

	contents, err := s.contents.ListStalePending(ctx, cutoff, pendingRetryLimit)
	if err != nil {
		s.logger.Error("failed to list stale pending contents", logger.Error(err))
		return
	}

	for _, content := range contents {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.analyzer.AnalyzeIfNeeded(ctx, content.ID, false); err != nil {
			s.logger.Warn("failed to analyze stale content",
				logger.String("content_id", content.ID),
				logger.Error(err))
		}
	}
}
