// Package jobs implements the command-line interface for inspecting and
// managing crawl jobs.
package jobs

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/proofcrawl/cmd/common"
)

const defaultListLimit = 20

var (
	listStatus string
	listLimit  int
	listOffset int
)

// Command returns the jobs command for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage crawl jobs",
		Long:  `Inspect and manage crawl jobs stored in the database`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(createListCmd(), createShowCmd(), createCancelCmd())
	return cmd
}

// createListCmd creates the list command
func createListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List crawl jobs, newest first",
		RunE:  runListCmd,
	}
	cmd.Flags().StringVar(&listStatus, "status", "", "Only show jobs with this status")
	cmd.Flags().IntVar(&listLimit, "limit", defaultListLimit, "Maximum number of jobs to show")
	cmd.Flags().IntVar(&listOffset, "offset", 0, "Number of jobs to skip")
	return cmd
}

// createShowCmd creates the show command
func createShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [job-id]",
		Short: "Show one crawl job in detail",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCmd,
	}
}

// createCancelCmd creates the cancel command
func createCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [job-id]",
		Short: "Cancel a pending or running crawl job",
		Args:  cobra.ExactArgs(1),
		RunE:  runCancelCmd,
	}
}

// runListCmd executes the list command
func runListCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	deps, err := cmdcommon.NewCommandDeps(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	db, err := cmdcommon.OpenDatabase(ctx, deps.Config.Database, deps.Logger)
	if err != nil {
		return err
	}
	defer db.Close()
	repos := cmdcommon.NewRepositories(db)

	jobs, err := repos.Jobs.List(ctx, listStatus, listLimit, listOffset)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}
	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	t := cmdcommon.NewTableWriter(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Status", "URL", "Depth", "Pages", "Created"})
	for _, job := range jobs {
		t.AppendRow(table.Row{
			job.ID,
			job.Status,
			job.URL,
			job.MaxDepth,
			fmt.Sprintf("%d/%d", job.PagesCrawled, job.TotalPages),
			job.CreatedAt.Format(time.RFC3339),
		})
	}
	t.Render()

	return nil
}

// runShowCmd executes the show command
func runShowCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	deps, err := cmdcommon.NewCommandDeps(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	db, err := cmdcommon.OpenDatabase(ctx, deps.Config.Database, deps.Logger)
	if err != nil {
		return err
	}
	defer db.Close()
	repos := cmdcommon.NewRepositories(db)

	job, err := repos.Jobs.GetByID(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}

	fmt.Printf("ID:        %s\n", job.ID)
	fmt.Printf("URL:       %s\n", job.URL)
	fmt.Printf("Status:    %s\n", job.Status)
	fmt.Printf("Max depth: %d\n", job.MaxDepth)
	fmt.Printf("Pages:     %d of %d\n", job.PagesCrawled, job.TotalPages)
	fmt.Printf("Created:   %s\n", job.CreatedAt.Format(time.RFC3339))
	if job.StartedAt != nil {
		fmt.Printf("Started:   %s\n", job.StartedAt.Format(time.RFC3339))
	}
	if job.CompletedAt != nil {
		fmt.Printf("Completed: %s\n", job.CompletedAt.Format(time.RFC3339))
	}
	if job.ErrorMessage != nil {
		fmt.Printf("Error:     %s\n", *job.ErrorMessage)
	}

	return nil
}

// runCancelCmd executes the cancel command
func runCancelCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	deps, err := cmdcommon.NewCommandDeps(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	db, err := cmdcommon.OpenDatabase(ctx, deps.Config.Database, deps.Logger)
	if err != nil {
		return err
	}
	defer db.Close()
	repos := cmdcommon.NewRepositories(db)

	if err := repos.Jobs.Cancel(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to cancel job: %w", err)
	}

	fmt.Printf("Cancelled job %s\n", args[0])
	return nil
}
