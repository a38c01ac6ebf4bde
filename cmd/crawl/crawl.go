// Package crawl implements the crawl command for fetching proofreadable
// content from a website in one shot.
package crawl

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/proofcrawl/cmd/common"
	"github.com/jonesrussell/proofcrawl/internal/crawler"
)

// Command returns the crawl command for use in the root command.
func Command() *cobra.Command {
	var (
		maxDepth int
		maxPages int
	)

	cmd := &cobra.Command{
		Use:   "crawl [url]",
		Short: "Crawl a website for content to proofread",
		Long: `This command crawls a website starting from the given URL, extracts the
readable text from every page, and stores it for analysis. Only pages on
the seed's host are followed.

The --depth and --pages flags override the crawler defaults from the
configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps(cmd)
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			return runCrawl(cmd.Context(), deps, args[0], maxDepth, maxPages)
		},
	}

	cmd.Flags().IntVar(&maxDepth, "depth", 0,
		"Override the crawler.max_depth setting (0 means use the configured default)")
	cmd.Flags().IntVar(&maxPages, "pages", 0,
		"Override the crawler.max_pages setting (0 means use the configured default)")

	return cmd
}

// runCrawl wires the crawl pipeline, starts one job, and waits for it to
// reach a terminal state.
func runCrawl(ctx context.Context, deps cmdcommon.CommandDeps, seedURL string, maxDepth, maxPages int) error {
	cfg := deps.Config
	log := deps.Logger

	db, err := cmdcommon.OpenDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()
	repos := cmdcommon.NewRepositories(db)

	index := cmdcommon.NewSearchIndex(ctx, cfg.Search, repos.Contents, log)

	fetcher := crawler.NewFetcher(cfg.Crawler.UserAgent, cfg.Crawler.RequestTimeout, cfg.Crawler.MaxBodySize)
	store := crawler.NewStore(db, repos.Contents, repos.Jobs, repos.Audits)
	engine := crawler.NewEngine(fetcher, crawler.NewExtractor(), store, index, log, crawler.EngineConfig{
		Delay:           cfg.Crawler.Delay,
		MaxLinksPerPage: cfg.Crawler.MaxLinksPerPage,
	})
	service := crawler.NewService(engine, repos.Jobs, log, cfg.Crawler)
	defer service.Stop()

	jobID, err := service.StartJob(ctx, seedURL, maxDepth, maxPages)
	if err != nil {
		return fmt.Errorf("failed to start crawl job: %w", err)
	}
	fmt.Printf("Started crawl job %s\n", jobID)

	if err := service.Wait(ctx, jobID); err != nil {
		return fmt.Errorf("failed waiting for crawl job: %w", err)
	}

	job, err := repos.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load crawl job: %w", err)
	}

	fmt.Printf("Crawl %s: %d pages stored\n", job.Status, job.PagesCrawled)
	if job.ErrorMessage != nil {
		fmt.Printf("Error: %s\n", *job.ErrorMessage)
	}
	return nil
}
