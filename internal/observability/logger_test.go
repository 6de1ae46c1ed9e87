// File: internal/observability/logger_test.go
package observability

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/feedpilot/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// resetGlobalLogger resets the package globals between tests.
func resetGlobalLogger() {
	globalLogger.Store(nil)
	once = sync.Once{}
}

// initForTest initializes the logger with an in-memory console writer and
// returns the buffer so assertions can inspect the output.
func initForTest(t *testing.T, cfg config.LoggerConfig) *bytes.Buffer {
	t.Helper()
	resetGlobalLogger()
	buf := &bytes.Buffer{}
	Initialize(cfg, zapcore.AddSync(buf))
	t.Cleanup(resetGlobalLogger)
	return buf
}

func TestInitializeConsoleFormat(t *testing.T) {
	cfg := config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "feedpilot",
		Colors:      config.ColorConfig{Info: "green"},
	}
	buf := initForTest(t, cfg)

	GetLogger().Info("engagement stream started", zap.Int("max_actions", 12))
	require.NoError(t, GetLogger().Sync())

	out := buf.String()
	assert.Contains(t, out, "engagement stream started")
	assert.Contains(t, out, "feedpilot.")
	assert.Contains(t, out, colorGreen, "info level should be colorized")
}

func TestInitializeJSONFormat(t *testing.T) {
	cfg := config.LoggerConfig{
		Level:       "info",
		Format:      "json",
		ServiceName: "feedpilot",
	}
	buf := initForTest(t, cfg)

	GetLogger().Info("post skipped", zap.String("reason", "urn_already_commented"))
	require.NoError(t, GetLogger().Sync())

	out := buf.String()
	assert.Contains(t, out, `"msg":"post skipped"`)
	assert.Contains(t, out, `"reason":"urn_already_commented"`)
	assert.NotContains(t, out, colorReset, "json output must not contain ANSI codes")
}

func TestLevelFiltering(t *testing.T) {
	cfg := config.LoggerConfig{Level: "warn", Format: "json", ServiceName: "feedpilot"}
	buf := initForTest(t, cfg)

	logger := GetLogger()
	logger.Debug("below threshold")
	logger.Info("also below threshold")
	logger.Warn("at threshold")
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "below threshold")
	assert.Contains(t, out, "at threshold")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	cfg := config.LoggerConfig{Level: "bogus", Format: "json", ServiceName: "feedpilot"}
	buf := initForTest(t, cfg)

	logger := GetLogger()
	logger.Debug("should be dropped")
	logger.Info("should be kept")
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "should be dropped")
	assert.Contains(t, out, "should be kept")
}

func TestGetLoggerBeforeInit(t *testing.T) {
	resetGlobalLogger()
	t.Cleanup(resetGlobalLogger)

	logger := GetLogger()
	require.NotNil(t, logger)
	assert.True(t, strings.HasSuffix(logger.Name(), "fallback"))
}

func TestInitializeOnlyOnce(t *testing.T) {
	cfg := config.LoggerConfig{Level: "info", Format: "json", ServiceName: "first"}
	buf := initForTest(t, cfg)

	// A second initialization must be a no-op.
	other := &bytes.Buffer{}
	Initialize(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "second"}, zapcore.AddSync(other))

	GetLogger().Info("routed to first writer")
	require.NoError(t, GetLogger().Sync())

	assert.Contains(t, buf.String(), "routed to first writer")
	assert.Empty(t, other.String())
}
