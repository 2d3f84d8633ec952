package debugctx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"debugctx/internal/config"
	"debugctx/internal/logging"
)

func resetLogging(t *testing.T) {
	t.Helper()
	require.NoError(t, logging.Initialize(logging.Settings{}))
	t.Cleanup(func() { _ = logging.Initialize(logging.Settings{}) })
}

func TestDefaultServiceAppliesLoggingSection(t *testing.T) {
	resetLogging(t)
	dir := t.TempDir()
	logPath := filepath.Join(dir, "debugctx.log")
	cfg := config.DefaultConfig()
	cfg.Logging.DebugMode = true
	cfg.Logging.Level = "debug"
	cfg.Logging.File = logPath
	require.NoError(t, cfg.Save(filepath.Join(dir, config.DefaultFileName)))
	t.Chdir(dir)

	svc := newDefaultService()

	assert.True(t, logging.IsDebugMode())
	assert.True(t, svc.log().Core().Enabled(zapcore.DebugLevel))

	h := svc.Acquire("k", 1)
	h.Release()
	h.Release()
	logging.Sync()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Scope released twice")
}

func TestDefaultServiceLeavesLoggingOffByDefault(t *testing.T) {
	resetLogging(t)
	dir := t.TempDir()
	require.NoError(t, config.DefaultConfig().Save(filepath.Join(dir, config.DefaultFileName)))
	t.Chdir(dir)

	newDefaultService()
	assert.False(t, logging.IsDebugMode())
}

func TestExistingServiceSeesLaterLoggingInit(t *testing.T) {
	resetLogging(t)
	svc := New(config.DefaultDebugContext())
	assert.False(t, svc.log().Core().Enabled(zapcore.ErrorLevel))

	logPath := filepath.Join(t.TempDir(), "debugctx.log")
	require.NoError(t, logging.Initialize(logging.Settings{
		DebugMode:   true,
		Level:       "debug",
		OutputPaths: []string{logPath},
	}))

	h := svc.Acquire()
	h.PopSubScope()
	h.Release()
	logging.Sync()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "PopSubScope without a matching PushSubScope")
	assert.Contains(t, string(data), "Captured stack")
}
