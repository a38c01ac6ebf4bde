// Package suggestions implements the command-line interface for reviewing
// proofreading suggestions.
package suggestions

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/proofcrawl/cmd/common"
	"github.com/jonesrussell/proofcrawl/internal/database"
	"github.com/jonesrussell/proofcrawl/internal/review"
)

const (
	defaultListLimit = 20
	maxCellWidth     = 40
)

var (
	listStatus        string
	listErrorType     string
	listContentID     string
	listMinConfidence float64
	listLimit         int
	listOffset        int

	applyUserID string
)

// Command returns the suggestions command for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggestions",
		Short: "Review proofreading suggestions",
		Long:  `List, approve, reject, and apply proofreading suggestions`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(createListCmd(), createApproveCmd(), createRejectCmd(), createApplyCmd())
	return cmd
}

// createListCmd creates the list command
func createListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List suggestions, newest first",
		RunE:  runListCmd,
	}
	cmd.Flags().StringVar(&listStatus, "status", "", "Only show suggestions with this status")
	cmd.Flags().StringVar(&listErrorType, "error-type", "", "Only show suggestions of this error type")
	cmd.Flags().StringVar(&listContentID, "content", "", "Only show suggestions for this content id")
	cmd.Flags().Float64Var(&listMinConfidence, "min-confidence", 0, "Only show suggestions at or above this confidence")
	cmd.Flags().IntVar(&listLimit, "limit", defaultListLimit, "Maximum number of suggestions to show")
	cmd.Flags().IntVar(&listOffset, "offset", 0, "Number of suggestions to skip")
	return cmd
}

// createApproveCmd creates the approve command
func createApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve [suggestion-id]",
		Short: "Approve a pending suggestion",
		Args:  cobra.ExactArgs(1),
		RunE:  runApproveCmd,
	}
}

// createRejectCmd creates the reject command
func createRejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject [suggestion-id]",
		Short: "Reject a pending suggestion",
		Args:  cobra.ExactArgs(1),
		RunE:  runRejectCmd,
	}
}

// createApplyCmd creates the apply command
func createApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply [suggestion-id]",
		Short: "Apply an approved suggestion to its content",
		Args:  cobra.ExactArgs(1),
		RunE:  runApplyCmd,
	}
	cmd.Flags().StringVar(&applyUserID, "user", "", "User recorded in the audit trail")
	return cmd
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

	suggestions, err := repos.Suggestions.List(ctx, database.SuggestionFilter{
		ContentID:     listContentID,
		Status:        listStatus,
		ErrorType:     listErrorType,
		MinConfidence: listMinConfidence,
		Limit:         listLimit,
		Offset:        listOffset,
	})
	if err != nil {
		return fmt.Errorf("failed to list suggestions: %w", err)
	}
	if len(suggestions) == 0 {
		fmt.Println("No suggestions found")
		return nil
	}

	t := cmdcommon.NewTableWriter(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Status", "Type", "Original", "Suggested", "Confidence"})
	for _, s := range suggestions {
		t.AppendRow(table.Row{
			s.ID,
			s.Status,
			s.ErrorType,
			truncate(s.OriginalText, maxCellWidth),
			truncate(s.SuggestedText, maxCellWidth),
			fmt.Sprintf("%.2f", s.ConfidenceScore),
		})
	}
	t.Render()

	return nil
}

// runApproveCmd executes the approve command
func runApproveCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	service, db, err := newReviewService(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := service.Approve(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to approve suggestion: %w", err)
	}

	fmt.Printf("Suggestion %s approved\n", args[0])
	return nil
}

// runRejectCmd executes the reject command
func runRejectCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	service, db, err := newReviewService(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := service.Reject(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to reject suggestion: %w", err)
	}

	fmt.Printf("Suggestion %s rejected\n", args[0])
	return nil
}

// runApplyCmd executes the apply command
func runApplyCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	service, db, err := newReviewService(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := service.Apply(ctx, args[0], applyUserID)
	if err != nil {
		return fmt.Errorf("failed to apply suggestion: %w", err)
	}
	if !applied {
		return fmt.Errorf("suggestion %s no longer matches the content text", args[0])
	}

	fmt.Printf("Applied suggestion %s\n", args[0])
	return nil
}

// newReviewService opens the database and builds the review service over
// it. Callers own the returned pool and must close it.
func newReviewService(cmd *cobra.Command) (*review.Service, *sqlx.DB, error) {
	deps, err := cmdcommon.NewCommandDeps(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	db, err := cmdcommon.OpenDatabase(cmd.Context(), deps.Config.Database, deps.Logger)
	if err != nil {
		return nil, nil, err
	}
	repos := cmdcommon.NewRepositories(db)

	service := review.NewService(db, repos.Suggestions, repos.Contents, repos.Audits, deps.Logger)
	return service, db, nil
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
