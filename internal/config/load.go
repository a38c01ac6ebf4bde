package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from the optional .env file, the YAML config
// file (when cfgFile is empty, ./config.yaml and ./config/config.yaml are
// tried), and environment variables, in increasing precedence. The result
// is validated before being returned.
func Load(cfgFile string) (*Config, error) {
	// Load .env before viper reads the environment. Missing files are fine;
	// deployments usually rely on real environment variables.
	_ = godotenv.Load()

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		// The config file is optional; defaults and environment variables
		// cover every key. An explicitly requested file must exist.
		if cfgFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers a default for every key so viper treats the full
// tree as known, which lets environment-only deployments unmarshal cleanly.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", DefaultEnvironment)
	v.SetDefault("app.debug", false)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.development", false)
	v.SetDefault("logger.output_paths", []string{"stdout"})

	v.SetDefault("server.address", DefaultServerAddress)
	v.SetDefault("server.read_timeout", DefaultReadTimeout)
	v.SetDefault("server.write_timeout", DefaultWriteTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)

	v.SetDefault("database.url", "")
	v.SetDefault("database.host", DefaultDatabaseHost)
	v.SetDefault("database.port", DefaultDatabasePort)
	v.SetDefault("database.user", DefaultDatabaseUser)
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", DefaultDatabaseName)
	v.SetDefault("database.sslmode", DefaultDatabaseSSLMode)
	v.SetDefault("database.max_open_conns", DefaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", DefaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", DefaultConnMaxLifetime)

	v.SetDefault("crawler.max_depth", DefaultMaxDepth)
	v.SetDefault("crawler.max_pages", DefaultMaxPages)
	v.SetDefault("crawler.delay", DefaultCrawlDelay)
	v.SetDefault("crawler.request_timeout", DefaultRequestTimeout)
	v.SetDefault("crawler.user_agent", DefaultUserAgent)
	v.SetDefault("crawler.max_body_size", DefaultMaxBodySize)
	v.SetDefault("crawler.max_links_per_page", DefaultMaxLinksPerPage)

	v.SetDefault("analyzer.backend", BackendAuto)
	v.SetDefault("analyzer.chunk_size", DefaultChunkSize)
	v.SetDefault("analyzer.min_confidence", DefaultMinConfidence)
	v.SetDefault("analyzer.openai.base_url", DefaultOpenAIBaseURL)
	v.SetDefault("analyzer.openai.api_key", "")
	v.SetDefault("analyzer.openai.model", DefaultOpenAIModel)
	v.SetDefault("analyzer.openai.max_tokens", DefaultOpenAIMaxTokens)
	v.SetDefault("analyzer.openai.temperature", DefaultOpenAITemperature)
	v.SetDefault("analyzer.openai.timeout", DefaultOpenAITimeout)

	v.SetDefault("search.enabled", false)
	v.SetDefault("search.addresses", []string{})
	v.SetDefault("search.username", "")
	v.SetDefault("search.password", "")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.index_name", DefaultSearchIndexName)

	v.SetDefault("sweeper.enabled", true)
	v.SetDefault("sweeper.schedule", DefaultSweepSchedule)
	v.SetDefault("sweeper.job_timeout", DefaultJobTimeout)
	v.SetDefault("sweeper.analyze_pending", false)
}

// bindEnvVars maps the operational environment variables onto config keys.
// AutomaticEnv covers the derived names (e.g. CRAWLER_MAX_DEPTH); these are
// the conventional names deployments already use.
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string][]string{
		"app.environment":          {"APP_ENV"},
		"app.debug":                {"APP_DEBUG"},
		"logger.level":             {"LOG_LEVEL"},
		"logger.encoding":          {"LOG_FORMAT"},
		"database.url":             {"DATABASE_URL"},
		"analyzer.openai.api_key":  {"OPENAI_API_KEY"},
		"analyzer.openai.base_url": {"OPENAI_BASE_URL"},
		"analyzer.openai.model":    {"OPENAI_MODEL"},
		"search.addresses": {
			"ELASTICSEARCH_ADDRESSES",
			"ELASTICSEARCH_HOSTS",
		},
		"search.password": {
			"ELASTICSEARCH_PASSWORD",
			"ELASTIC_PASSWORD",
		},
		"search.api_key":    {"ELASTICSEARCH_API_KEY"},
		"search.index_name": {"ELASTICSEARCH_INDEX_NAME"},
	}

	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}
