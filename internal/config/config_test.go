package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/proofcrawl/internal/config"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfigFile(t, "app:\n  environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, config.DefaultServerAddress, cfg.Server.Address)
	assert.Equal(t, config.DefaultMaxDepth, cfg.Crawler.MaxDepth)
	assert.Equal(t, config.DefaultMaxPages, cfg.Crawler.MaxPages)
	assert.Equal(t, config.DefaultCrawlDelay, cfg.Crawler.Delay)
	assert.Equal(t, config.DefaultMaxLinksPerPage, cfg.Crawler.MaxLinksPerPage)
	assert.Equal(t, config.BackendAuto, cfg.Analyzer.Backend)
	assert.Equal(t, config.DefaultChunkSize, cfg.Analyzer.ChunkSize)
	assert.Equal(t, config.DefaultOpenAIModel, cfg.Analyzer.OpenAI.Model)
	assert.Equal(t, config.DefaultOpenAITemperature, cfg.Analyzer.OpenAI.Temperature)
	assert.False(t, cfg.Search.Enabled)
	assert.Equal(t, config.DefaultSweepSchedule, cfg.Sweeper.Schedule)
}

func TestLoadFileValues(t *testing.T) {
	path := writeConfigFile(t, `
crawler:
  max_depth: 5
  max_pages: 10
  delay: 250ms
analyzer:
  backend: rules
  chunk_size: 500
server:
  address: ":9090"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Crawler.MaxDepth)
	assert.Equal(t, 10, cfg.Crawler.MaxPages)
	assert.Equal(t, 250*time.Millisecond, cfg.Crawler.Delay)
	assert.Equal(t, config.BackendRules, cfg.Analyzer.Backend)
	assert.Equal(t, 500, cfg.Analyzer.ChunkSize)
	assert.Equal(t, ":9090", cfg.Server.Address)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app:secret@db:5432/proofcrawl?sslmode=disable")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CRAWLER_MAX_DEPTH", "7")

	cfg, err := config.Load(writeConfigFile(t, "app:\n  environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://app:secret@db:5432/proofcrawl?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, cfg.Database.URL, cfg.Database.DSN())
	assert.Equal(t, "sk-test", cfg.Analyzer.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Analyzer.OpenAI.Model)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 7, cfg.Crawler.MaxDepth)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDatabaseDSNFromParts(t *testing.T) {
	t.Parallel()

	dsn := config.DatabaseConfig{
		Host:    "localhost",
		Port:    5432,
		User:    "postgres",
		Name:    "proofcrawl",
		SSLMode: "disable",
	}.DSN()

	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=proofcrawl sslmode=disable", dsn)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() *config.Config {
		cfg := &config.Config{}
		cfg.Server.Address = ":8080"
		cfg.Crawler.MaxDepth = 3
		cfg.Crawler.MaxPages = 100
		cfg.Crawler.RequestTimeout = time.Second
		cfg.Crawler.MaxBodySize = 1024
		cfg.Crawler.MaxLinksPerPage = 10
		cfg.Analyzer.Backend = config.BackendRules
		cfg.Analyzer.ChunkSize = 2000
		cfg.Analyzer.MinConfidence = 0.7
		cfg.Sweeper.JobTimeout = time.Minute
		return cfg
	}

	require.NoError(t, base().Validate())

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty server address", func(c *config.Config) { c.Server.Address = "" }},
		{"negative depth", func(c *config.Config) { c.Crawler.MaxDepth = -1 }},
		{"zero pages", func(c *config.Config) { c.Crawler.MaxPages = 0 }},
		{"negative delay", func(c *config.Config) { c.Crawler.Delay = -time.Second }},
		{"zero chunk size", func(c *config.Config) { c.Analyzer.ChunkSize = 0 }},
		{"confidence above one", func(c *config.Config) { c.Analyzer.MinConfidence = 1.5 }},
		{"unknown backend", func(c *config.Config) { c.Analyzer.Backend = "languagetool" }},
		{"openai without key", func(c *config.Config) { c.Analyzer.Backend = config.BackendOpenAI }},
		{"search enabled without addresses", func(c *config.Config) { c.Search.Enabled = true }},
		{"sweeper without timeout", func(c *config.Config) { c.Sweeper.JobTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
