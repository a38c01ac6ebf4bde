// Package config provides configuration management for the application.
// Configuration is loaded once at startup from a YAML file, a .env file,
// and environment variables, then passed into components at construction.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jonesrussell/proofcrawl/internal/logger"
)

// Default configuration values.
const (
	DefaultEnvironment     = "development"
	DefaultServerAddress   = ":8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultMaxDepth        = 3
	DefaultMaxPages        = 100
	DefaultCrawlDelay      = 1 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultUserAgent       = "proofcrawl/1.0"
	DefaultMaxBodySize     = 10 * 1024 * 1024 // 10MB
	DefaultMaxLinksPerPage = 10

	DefaultChunkSize     = 2000
	DefaultMinConfidence = 0.7

	DefaultOpenAIBaseURL     = "https://api.openai.com/v1"
	DefaultOpenAIModel       = "gpt-3.5-turbo"
	DefaultOpenAIMaxTokens   = 1500
	DefaultOpenAITemperature = 0.1
	DefaultOpenAITimeout     = 60 * time.Second

	DefaultDatabaseHost    = "localhost"
	DefaultDatabasePort    = 5432
	DefaultDatabaseUser    = "postgres"
	DefaultDatabaseName    = "proofcrawl"
	DefaultDatabaseSSLMode = "disable"
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 5 * time.Minute

	DefaultSearchIndexName = "proofcrawl-content"

	DefaultSweepSchedule = "*/5 * * * *"
	DefaultJobTimeout    = 30 * time.Minute
)

// Analyzer backend selectors.
const (
	BackendAuto   = "auto"
	BackendOpenAI = "openai"
	BackendRules  = "rules"
)

// Config is the root configuration tree.
type Config struct {
	App      AppConfig      `mapstructure:"app"      yaml:"app"`
	Logger   logger.Config  `mapstructure:"logger"   yaml:"logger"`
	Server   ServerConfig   `mapstructure:"server"   yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"  yaml:"crawler"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer" yaml:"analyzer"`
	Search   SearchConfig   `mapstructure:"search"   yaml:"search"`
	Sweeper  SweeperConfig  `mapstructure:"sweeper"  yaml:"sweeper"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Environment string `mapstructure:"environment" yaml:"environment"`
	Debug       bool   `mapstructure:"debug"       yaml:"debug"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address         string        `mapstructure:"address"          yaml:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// DatabaseConfig holds Postgres connection settings. URL, when set, takes
// precedence over the discrete fields.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"               yaml:"url"`
	Host            string        `mapstructure:"host"              yaml:"host"`
	Port            int           `mapstructure:"port"              yaml:"port"`
	User            string        `mapstructure:"user"              yaml:"user"`
	Password        string        `mapstructure:"password"          yaml:"password"`
	Name            string        `mapstructure:"name"              yaml:"name"`
	SSLMode         string        `mapstructure:"sslmode"           yaml:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// DSN returns the connection string for the configured database.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// CrawlerConfig holds crawl limits and politeness settings.
type CrawlerConfig struct {
	// MaxDepth is how many link hops from the seed URL are followed.
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
	// MaxPages caps the number of pages persisted per job.
	MaxPages int `mapstructure:"max_pages" yaml:"max_pages"`
	// Delay is the politeness pause between consecutive fetches.
	Delay time.Duration `mapstructure:"delay" yaml:"delay"`
	// RequestTimeout bounds each page fetch.
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	// UserAgent is sent with every request.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64 `mapstructure:"max_body_size" yaml:"max_body_size"`
	// MaxLinksPerPage caps how many outbound links are followed per page.
	MaxLinksPerPage int `mapstructure:"max_links_per_page" yaml:"max_links_per_page"`
}

// AnalyzerConfig holds suggestion-engine settings.
type AnalyzerConfig struct {
	// Backend selects the analysis backend: auto, openai, or rules.
	// Auto uses OpenAI when an API key is configured, rules otherwise.
	Backend string `mapstructure:"backend" yaml:"backend"`
	// ChunkSize is the maximum text length sent to the backend per call.
	ChunkSize int `mapstructure:"chunk_size" yaml:"chunk_size"`
	// MinConfidence is the dashboard threshold for quick-review queues.
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
	// OpenAI configures the remote backend.
	OpenAI OpenAIConfig `mapstructure:"openai" yaml:"openai"`
}

// OpenAIConfig holds settings for the OpenAI-compatible backend.
type OpenAIConfig struct {
	BaseURL     string        `mapstructure:"base_url"    yaml:"base_url"`
	APIKey      string        `mapstructure:"api_key"     yaml:"api_key"`
	Model       string        `mapstructure:"model"       yaml:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"  yaml:"max_tokens"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"     yaml:"timeout"`
}

// SearchConfig holds Elasticsearch settings for the optional content index.
type SearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"    yaml:"enabled"`
	Addresses []string `mapstructure:"addresses"  yaml:"addresses"`
	Username  string   `mapstructure:"username"   yaml:"username"`
	Password  string   `mapstructure:"password"   yaml:"password"`
	APIKey    string   `mapstructure:"api_key"    yaml:"api_key"`
	IndexName string   `mapstructure:"index_name" yaml:"index_name"`
}

// SweeperConfig holds scheduled-maintenance settings.
type SweeperConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Schedule is a cron expression for the sweep interval.
	Schedule string `mapstructure:"schedule" yaml:"schedule"`
	// JobTimeout is how long a job may sit in running before the sweeper
	// marks it failed.
	JobTimeout time.Duration `mapstructure:"job_timeout" yaml:"job_timeout"`
	// AnalyzePending re-queues stale pending content for analysis.
	AnalyzePending bool `mapstructure:"analyze_pending" yaml:"analyze_pending"`
}

// Validate checks the configuration for values the application cannot run
// with. It is called once by Load.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return errors.New("server.address must not be empty")
	}
	if c.Crawler.MaxDepth < 0 {
		return errors.New("crawler.max_depth must be non-negative")
	}
	if c.Crawler.MaxPages < 1 {
		return errors.New("crawler.max_pages must be positive")
	}
	if c.Crawler.Delay < 0 {
		return errors.New("crawler.delay must be non-negative")
	}
	if c.Crawler.RequestTimeout <= 0 {
		return errors.New("crawler.request_timeout must be positive")
	}
	if c.Crawler.MaxBodySize < 1 {
		return errors.New("crawler.max_body_size must be positive")
	}
	if c.Crawler.MaxLinksPerPage < 1 {
		return errors.New("crawler.max_links_per_page must be positive")
	}
	if c.Analyzer.ChunkSize < 1 {
		return errors.New("analyzer.chunk_size must be positive")
	}
	if c.Analyzer.MinConfidence < 0 || c.Analyzer.MinConfidence > 1 {
		return errors.New("analyzer.min_confidence must be within [0,1]")
	}
	switch c.Analyzer.Backend {
	case BackendAuto, BackendRules:
	case BackendOpenAI:
		if c.Analyzer.OpenAI.APIKey == "" {
			return errors.New("analyzer.openai.api_key is required when backend is openai")
		}
	default:
		return fmt.Errorf("analyzer.backend must be one of %s, %s, %s", BackendAuto, BackendOpenAI, BackendRules)
	}
	if c.Analyzer.OpenAI.BaseURL != "" {
		if _, err := url.Parse(c.Analyzer.OpenAI.BaseURL); err != nil {
			return fmt.Errorf("analyzer.openai.base_url is invalid: %w", err)
		}
	}
	if c.Search.Enabled && len(c.Search.Addresses) == 0 {
		return errors.New("search.addresses must not be empty when search is enabled")
	}
	if c.Sweeper.Enabled && c.Sweeper.Schedule == "" {
		return errors.New("sweeper.schedule must not be empty when the sweeper is enabled")
	}
	if c.Sweeper.JobTimeout <= 0 {
		return errors.New("sweeper.job_timeout must be positive")
	}
	return nil
}
