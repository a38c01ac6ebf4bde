// Package analyze implements the analyze command for generating
// proofreading suggestions for stored content.
package analyze

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/proofcrawl/cmd/common"
	"github.com/jonesrussell/proofcrawl/internal/analyzer"
)

// maxCellWidth bounds the text columns so one long sentence does not
// wreck the table layout.
const maxCellWidth = 40

// Command returns the analyze command for use in the root command.
func Command() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "analyze [content-id]",
		Short: "Generate proofreading suggestions for stored content",
		Long: `This command runs the configured analysis backend against one stored
content record and prints the suggestions it produced. Content that was
already analyzed is skipped unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps(cmd)
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			return runAnalyze(cmd.Context(), deps, args[0], force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-analyze content that was already analyzed")

	return cmd
}

func runAnalyze(ctx context.Context, deps cmdcommon.CommandDeps, contentID string, force bool) error {
	cfg := deps.Config
	log := deps.Logger

	db, err := cmdcommon.OpenDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()
	repos := cmdcommon.NewRepositories(db)

	primary, fallback := analyzer.SelectBackends(cfg.Analyzer, log)
	engine := analyzer.NewEngine(
		db, repos.Contents, repos.Suggestions, repos.Audits,
		primary, fallback, cfg.Analyzer.ChunkSize, log)

	result, err := engine.AnalyzeIfNeeded(ctx, contentID, force)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if result.AlreadyAnalyzed {
		fmt.Printf("Content %s was already analyzed; use --force to re-run\n", result.ContentID)
		return nil
	}

	fmt.Printf("Backend %s produced %d suggestions\n", result.Backend, len(result.Suggestions))
	if len(result.Suggestions) == 0 {
		return nil
	}

	t := cmdcommon.NewTableWriter(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Type", "Original", "Suggested", "Confidence"})
	for _, s := range result.Suggestions {
		t.AppendRow(table.Row{
			s.ID,
			s.ErrorType,
			truncate(s.OriginalText, maxCellWidth),
			truncate(s.SuggestedText, maxCellWidth),
			fmt.Sprintf("%.2f", s.ConfidenceScore),
		})
	}
	t.Render()

	return nil
}

// truncate shortens s to at most max runes, marking the cut with an
// ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
