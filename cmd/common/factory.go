package common

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/proofcrawl/internal/config"
	"github.com/jonesrussell/proofcrawl/internal/logger"
)

// NewCommandDeps creates CommandDeps by loading config and creating the
// logger. The config path and debug toggle come from the root command's
// persistent flags.
func NewCommandDeps(cmd *cobra.Command) (CommandDeps, error) {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return CommandDeps{}, fmt.Errorf("read config flag: %w", err)
	}
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return CommandDeps{}, fmt.Errorf("read debug flag: %w", err)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return CommandDeps{}, fmt.Errorf("load config: %w", err)
	}

	// The debug flag wins over whatever the config file set.
	if debug {
		cfg.App.Debug = true
		cfg.Logger.Level = "debug"
	}
	if cfg.App.Environment == "development" {
		cfg.Logger.Development = true
		cfg.Logger.Encoding = "console"
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return CommandDeps{}, fmt.Errorf("create logger: %w", err)
	}

	deps := CommandDeps{
		Logger: log,
		Config: cfg,
	}

	if validateErr := deps.Validate(); validateErr != nil {
		return CommandDeps{}, fmt.Errorf("validate deps: %w", validateErr)
	}

	return deps, nil
}
