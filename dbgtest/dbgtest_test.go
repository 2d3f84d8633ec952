package dbgtest_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debugctx"
	"debugctx/dbgtest"
	"debugctx/internal/config"
)

// recorder captures what would be reported to the real test.
type recorder struct {
	testing.TB
	messages []string
	stopped  bool
}

func (r *recorder) Helper() {}

func (r *recorder) Error(args ...any) {
	r.messages = append(r.messages, fmt.Sprint(args...))
}

func (r *recorder) Errorf(format string, args ...any) {
	r.messages = append(r.messages, fmt.Sprintf(format, args...))
}

func (r *recorder) FailNow() {
	r.stopped = true
}

func TestFailureMessageCarriesContext(t *testing.T) {
	svc := dbgtest.SetupService(t, debugctx.New(config.DefaultDebugContext()))
	h := svc.Acquire("user", "bob")
	defer h.Release()

	rec := &recorder{TB: t}
	assert.New(dbgtest.WrapService(rec, svc)).Equal(1, 2)

	require.Len(t, rec.messages, 1)
	msg := rec.messages[0]
	assert.Contains(t, msg, "Not equal")

	layers, ok := debugctx.ParseAddedText(msg)
	require.True(t, ok, msg)
	layer, ok := layers.Find("user")
	require.True(t, ok)
	assert.Contains(t, layer.Label, "dbgtest_test.TestFailureMessageCarriesContext [")
	assert.Contains(t, layers[0].Label, "testify/assert.", "the failing assertion call is kept")
}

func TestRequireStopsTest(t *testing.T) {
	svc := dbgtest.SetupService(t, debugctx.New(config.DefaultDebugContext()))
	rec := &recorder{TB: t}

	require.New(dbgtest.WrapService(rec, svc)).True(false)
	assert.True(t, rec.stopped)
	require.Len(t, rec.messages, 1)
	_, ok := debugctx.ExtractAddedText(rec.messages[0])
	assert.True(t, ok)
}

func TestDisabledServiceSaysSo(t *testing.T) {
	svc := dbgtest.SetupService(t, debugctx.New(config.DefaultDebugContext()))
	_, err := svc.SetOption(config.OptionEnabled, false)
	require.NoError(t, err)

	rec := &recorder{TB: t}
	assert.New(dbgtest.WrapService(rec, svc)).Fail("boom")

	require.Len(t, rec.messages, 1)
	text, ok := debugctx.ExtractAddedText(rec.messages[0])
	require.True(t, ok)
	assert.Equal(t, debugctx.DisabledText, text)
}

func TestNotAddingLeavesMessageAlone(t *testing.T) {
	svc := dbgtest.SetupService(t, debugctx.New(config.DefaultDebugContext()))
	_, err := svc.SetOption(config.OptionAddToAssertionMessage, false)
	require.NoError(t, err)

	rec := &recorder{TB: t}
	assert.New(dbgtest.WrapService(rec, svc)).Fail("boom")

	require.Len(t, rec.messages, 1)
	assert.False(t, strings.Contains(rec.messages[0], debugctx.BeginMarker))
}

func TestSetupResetsAndRestores(t *testing.T) {
	svc := debugctx.Default()
	before := svc.Config()

	t.Run("inner", func(t *testing.T) {
		dbgtest.Setup(t)
		svc.Acquire("left", "behind")
		_, err := svc.SetOption(config.OptionOnlyExplicitContext, !before.OnlyExplicitContext)
		require.NoError(t, err)
		assert.Equal(t, 1, svc.ScopeCount())
	})

	assert.Equal(t, before, svc.Config())
	assert.Zero(t, svc.ScopeCount())
}

func TestWrapIsStable(t *testing.T) {
	w := dbgtest.Wrap(t)
	assert.Same(t, w, dbgtest.Wrap(w))
	assert.NotNil(t, dbgtest.Assert(t))
	assert.NotNil(t, dbgtest.Require(t))
}

func TestSetupServiceInParallelTests(t *testing.T) {
	for _, name := range []string{"first", "second", "third"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			svc := dbgtest.SetupService(t, debugctx.New(config.DefaultDebugContext()))
			h := svc.Acquire("test", name)
			defer h.Release()

			layer, ok := svc.ContextsStack().Find("test")
			require.True(t, ok)
			got, _ := layer.Context.Get("test")
			assert.Equal(t, name, got)
			assert.Equal(t, 1, svc.ScopeCount())
		})
	}
}
