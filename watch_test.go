package debugctx_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"debugctx/internal/config"
	"debugctx/internal/logging"
)

func TestWatchConfigAppliesChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), config.DefaultFileName)
	require.NoError(t, config.DefaultConfig().Save(path))

	svc := newService(t)
	h := svc.Acquire("k", 1)
	defer h.Release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := svc.WatchConfig(ctx, path)
	require.NoError(t, err)
	defer w.Close()

	cfg := config.DefaultConfig()
	cfg.DebugContext.Enabled = false
	require.NoError(t, cfg.Save(path))

	assert.Eventually(t, func() bool {
		return !svc.Config().Enabled
	}, 5*time.Second, 20*time.Millisecond)
	assert.Zero(t, svc.ScopeCount(), "disabling drops scopes")
}

func TestWatchConfigReappliesLogging(t *testing.T) {
	t.Cleanup(func() { _ = logging.Initialize(logging.Settings{}) })
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultFileName)
	require.NoError(t, config.DefaultConfig().Save(path))

	svc := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := svc.WatchConfig(ctx, path)
	require.NoError(t, err)
	defer w.Close()

	cfg := config.DefaultConfig()
	cfg.Logging.DebugMode = true
	cfg.Logging.File = filepath.Join(dir, "debugctx.log")
	require.NoError(t, cfg.Save(path))

	assert.Eventually(t, logging.IsDebugMode, 5*time.Second, 20*time.Millisecond)
}

func TestWatchConfigMissingDirectory(t *testing.T) {
	svc := newService(t)
	_, err := svc.WatchConfig(context.Background(), filepath.Join(t.TempDir(), "missing", "x.yaml"))
	assert.Error(t, err)
}
