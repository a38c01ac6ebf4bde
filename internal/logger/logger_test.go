package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/proofcrawl/internal/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     logger.Config
		wantErr bool
	}{
		{
			name: "defaults",
			cfg:  logger.Config{},
		},
		{
			name: "debug console",
			cfg:  logger.Config{Level: "debug", Encoding: "console"},
		},
		{
			name: "development mode",
			cfg:  logger.Config{Level: "warn", Development: true},
		},
		{
			name: "unknown level falls back to info",
			cfg:  logger.Config{Level: "verbose"},
		},
		{
			name:    "unknown encoding",
			cfg:     logger.Config{Encoding: "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			log, err := logger.New(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, log)

			log.Debug("debug message", logger.String("key", "value"))
			log.Info("info message", logger.Int("count", 1))
			log.Warn("warn message", logger.Error(assert.AnError))
		})
	}
}

func TestConfigSetDefaults(t *testing.T) {
	t.Parallel()

	cfg := logger.Config{}
	cfg.SetDefaults()

	assert.Equal(t, logger.DefaultLevel, cfg.Level)
	assert.Equal(t, logger.DefaultEncoding, cfg.Encoding)
	assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)

	cfg = logger.Config{Level: "error", Encoding: "console", OutputPaths: []string{"stderr"}}
	cfg.SetDefaults()

	assert.Equal(t, "error", cfg.Level)
	assert.Equal(t, "console", cfg.Encoding)
	assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)
}

func TestWithAttachesFields(t *testing.T) {
	t.Parallel()

	base, err := logger.New(logger.Config{Level: "debug"})
	require.NoError(t, err)

	child := base.With(logger.String("component", "crawler"))
	require.NotNil(t, child)
	child.Info("scoped message")
}

func TestNewNop(t *testing.T) {
	t.Parallel()

	log := logger.NewNop()
	log.Debug("ignored")
	log.Info("ignored")
	log.Warn("ignored")
	log.Error("ignored")
	log.Fatal("ignored and must not exit")

	assert.Equal(t, log, log.With(logger.Bool("noop", true)))
	assert.NoError(t, log.Sync())
}
