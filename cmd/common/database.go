package common

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/proofcrawl/internal/config"
	"github.com/jonesrussell/proofcrawl/internal/database"
	"github.com/jonesrussell/proofcrawl/internal/logger"
)

// Repositories holds the repository set commands work with.
// This consolidates the common pattern used across all commands.
type Repositories struct {
	Jobs        *database.JobRepository
	Contents    *database.ContentRepository
	Suggestions *database.SuggestionRepository
	Audits      *database.AuditRepository
}

// OpenDatabase connects to Postgres and ensures the schema exists.
// Callers own the returned pool and must close it.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig, log logger.Interface) (*sqlx.DB, error) {
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := database.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	log.Debug("database ready",
		logger.String("host", cfg.Host),
		logger.String("database", cfg.Name))

	return db, nil
}

// NewRepositories creates the repository set over one connection pool.
func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Jobs:        database.NewJobRepository(db),
		Contents:    database.NewContentRepository(db),
		Suggestions: database.NewSuggestionRepository(db),
		Audits:      database.NewAuditRepository(db),
	}
}
