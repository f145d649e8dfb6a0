package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/datamap/pkg/logging"
)

func TestConfigFunctions(t *testing.T) {
	originalLogger := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	defer func() {
		logging.SetDefault(originalLogger)
		zerolog.SetGlobalLevel(originalLevel)
	}()

	t.Run("DefaultConfig returns sensible defaults", func(t *testing.T) {
		cfg := logging.DefaultConfig()
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "auto", cfg.Format)
		assert.Equal(t, "stderr", cfg.Output)
		assert.False(t, cfg.AddCaller)
	})

	t.Run("NewLoggerFromConfig writes json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "debug",
			Format: "json",
			Output: path,
			Fields: map[string]any{"app": "datamap"},
		})
		logger.Info().Str("source", "CKAN").Msg("Source read")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"message":"Source read"`)
		assert.Contains(t, string(content), `"app":"datamap"`)
		assert.Contains(t, string(content), `"source":"CKAN"`)
	})

	t.Run("discard output with auto format", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "warn", Format: "auto", Output: "discard"})
		assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "loud", Output: "discard"})
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})
}

func TestContextFunctions(t *testing.T) {
	t.Run("FromContext falls back to default", func(t *testing.T) {
		assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	})

	t.Run("fields are attached to the context logger", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithRunID(ctx, "run-1")
		ctx = logging.WithSource(ctx, "dcat")
		ctx = logging.WithStage(ctx, "classify")

		logging.Ctx(ctx).Info().Msg("hello")

		require.Equal(t, 1, tl.Count())
		assert.True(t, tl.Contains(`"run_id":"run-1"`))
		assert.True(t, tl.Contains(`"source":"dcat"`))
		assert.True(t, tl.Contains(`"stage":"classify"`))
	})
}

func TestDisableLoggingForTest(t *testing.T) {
	logging.DisableLoggingForTest(t)
	assert.Equal(t, zerolog.Disabled, logging.Default().GetLevel())
}
