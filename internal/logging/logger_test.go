package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func resetLogging(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		require.NoError(t, Initialize(Settings{}))
	})
}

func TestDebugModeDisabled(t *testing.T) {
	resetLogging(t)
	require.NoError(t, Initialize(Settings{DebugMode: false}))

	assert.False(t, IsDebugMode())
	for _, cat := range []Category{CategoryBoot, CategoryCapture, CategoryScope, CategoryRender, CategoryConfig, CategoryCLI} {
		assert.False(t, IsCategoryEnabled(cat), "category %s", cat)
		assert.False(t, Get(cat).Core().Enabled(zapcore.ErrorLevel), "category %s should be no-op", cat)
	}
}

func TestAllCategoriesLog(t *testing.T) {
	resetLogging(t)
	logPath := filepath.Join(t.TempDir(), "debugctx.log")
	require.NoError(t, Initialize(Settings{DebugMode: true, Level: "debug", OutputPaths: []string{logPath}}))
	require.True(t, IsDebugMode())

	Get(CategoryScope).Info("scope message")
	Get(CategoryRender).Debug("render message")
	Sync()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "debugctx logging initialized")
	assert.Contains(t, content, "scope message")
	assert.Contains(t, content, "render message")
	assert.True(t, strings.Contains(content, "scope") && strings.Contains(content, "render"))
}

func TestCategoryToggle(t *testing.T) {
	resetLogging(t)
	logPath := filepath.Join(t.TempDir(), "debugctx.log")
	require.NoError(t, Initialize(Settings{
		DebugMode:   true,
		Level:       "info",
		Categories:  map[string]bool{"render": false, "scope": true},
		OutputPaths: []string{logPath},
	}))

	assert.True(t, IsCategoryEnabled(CategoryScope))
	assert.False(t, IsCategoryEnabled(CategoryRender))
	assert.True(t, IsCategoryEnabled(CategoryConfig), "unlisted categories default to enabled")

	Get(CategoryRender).Info("hidden")
	Get(CategoryScope).Info("visible")
	Sync()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "visible")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	resetLogging(t)
	logPath := filepath.Join(t.TempDir(), "debugctx.log")
	require.NoError(t, Initialize(Settings{DebugMode: true, Level: "chatty", OutputPaths: []string{logPath}}))

	l := Get(CategoryBoot)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestTimerLogging(t *testing.T) {
	resetLogging(t)
	core, logs := observer.New(zapcore.DebugLevel)
	Use(zap.New(core))

	timer := StartTimer(CategoryRender, "render")
	elapsed := timer.Stop()
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))

	entries := logs.FilterMessage("operation finished").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "render", entries[0].LoggerName)
	assert.Equal(t, "render", entries[0].ContextMap()["operation"])

	slow := StartTimer(CategoryScope, "reconcile")
	slow.start = slow.start.Add(-time.Second)
	slow.StopWithThreshold(time.Millisecond)
	assert.Equal(t, 1, logs.FilterMessage("slow operation").Len())
}
