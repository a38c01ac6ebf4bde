// Package cmd implements the command-line interface for proofcrawl.
// It provides the root command and subcommands for crawling websites,
// analyzing stored content, and reviewing proofreading suggestions.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/proofcrawl/cmd/analyze"
	"github.com/jonesrussell/proofcrawl/cmd/crawl"
	cmdjobs "github.com/jonesrussell/proofcrawl/cmd/jobs"
	"github.com/jonesrussell/proofcrawl/cmd/serve"
	cmdsuggestions "github.com/jonesrussell/proofcrawl/cmd/suggestions"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	// rootCmd represents the root command for the proofcrawl CLI.
	rootCmd = &cobra.Command{
		Use:   "proofcrawl",
		Short: "A content crawler and proofreading pipeline",
		Long: `A web crawler and proofreading pipeline built with Go. It crawls
websites, extracts readable text, and generates reviewable correction
suggestions for it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command. The context it hands down is cancelled
// on SIGINT and SIGTERM so one-shot commands stop cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// init initializes the root command and its subcommands.
func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("proofcrawl version %s\n", "1.0.0")
		},
	})

	// Add subcommands
	rootCmd.AddCommand(serve.Command())
	rootCmd.AddCommand(crawl.Command())
	rootCmd.AddCommand(analyze.Command())
	rootCmd.AddCommand(cmdjobs.Command())
	rootCmd.AddCommand(cmdsuggestions.Command())
}
