// Package serve implements the serve command that runs the HTTP API
// server with the full crawl and analysis pipeline wired behind it.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/proofcrawl/cmd/common"
	"github.com/jonesrussell/proofcrawl/internal/api"
	"github.com/jonesrussell/proofcrawl/internal/logger"
)

const (
	signalChannelBufferSize = 1
	errorChannelBufferSize  = 1
)

// Start initializes the application and runs the HTTP server. It blocks
// until an interrupt arrives or the server fails.
func Start(cmd *cobra.Command) error {
	// Phase 1: Initialize dependencies
	deps, err := cmdcommon.NewCommandDeps(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	log := deps.Logger

	// Phase 2: Wire the application services
	app, err := buildApplication(cmd.Context(), deps)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer app.close()

	// Phase 3: Start the HTTP server
	server := api.StartHTTPServer(log, app.handlers, deps.Config.Server)
	errChan := make(chan error, errorChannelBufferSize)
	go func() {
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()
	log.Info("http server started", logger.String("address", deps.Config.Server.Address))

	// Phase 4: Start the sweeper
	if app.sweeper != nil {
		if sweepErr := app.sweeper.Start(); sweepErr != nil {
			return fmt.Errorf("failed to start sweeper: %w", sweepErr)
		}
	}

	// Phase 5: Wait for a shutdown signal or a server error
	sigChan := make(chan os.Signal, signalChannelBufferSize)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case serveErr := <-errChan:
		log.Error("server failed", logger.Error(serveErr))
		return serveErr
	case sig := <-sigChan:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	}

	return shutdownServer(server, app, deps)
}

// shutdownServer stops background work first so no new writes race the
// drain, then shuts the HTTP server down within the configured timeout.
func shutdownServer(server *http.Server, app *application, deps cmdcommon.CommandDeps) error {
	log := deps.Logger

	app.crawlService.Stop()
	if app.sweeper != nil {
		app.sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), deps.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down server gracefully", logger.Error(err))
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// Command returns the serve command for use in the root command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server exposing the crawl, content, suggestion, and
dashboard endpoints. The server runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Start(cmd)
		},
	}
}
