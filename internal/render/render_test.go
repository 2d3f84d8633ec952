package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debugctx/internal/scope"
	"debugctx/internal/stackframe"
)

func userFrame(fn string, line int) stackframe.Frame {
	return stackframe.Frame{File: "/repo/app.go", Line: line, Package: "example.com/app", Kind: stackframe.CallStatic, Function: fn}
}

func vendorFrame(file, fn string, line int) stackframe.Frame {
	return stackframe.Frame{File: file, Line: line, Package: "vendored", Kind: stackframe.CallStatic, Function: fn}
}

type fixedNamer map[string][]string

func (n fixedNamer) ArgumentNames(frame stackframe.Frame) []string {
	return n[frame.Function]
}

func contextOf(l Layer) map[string]any {
	out := make(map[string]any)
	for k, v := range l.Context.All() {
		out[k] = v
	}
	return out
}

func TestRenderExplicitOnly(t *testing.T) {
	st := scope.NewStack(nil)
	outer := []stackframe.Frame{userFrame("main", 3), userFrame("run", 10)}
	st.Push(outer, scope.FromPairs("user", "alice"), nil, nil)
	inner := []stackframe.Frame{userFrame("main", 3), userFrame("run", 12), userFrame("step", 40)}
	s := st.Push(inner, scope.FromPairs("step", 1), nil, nil)
	s.PushSubScope(scope.FromPairs("item", "x"))

	layers := Render(st.Scopes(), st.Synced(), Options{OnlyExplicitContext: true, AutoCaptureArgs: true})

	want := []string{
		"Scope 1 out of 2: example.com/app.step [/repo/app.go:40]",
		"Scope 2 out of 2: example.com/app.run [/repo/app.go:12]",
	}
	if diff := cmp.Diff(want, layers.Labels()); diff != "" {
		t.Errorf("Labels() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"step", "item"}, layers[0].Context.Keys())
	assert.Equal(t, map[string]any{"user": "alice"}, contextOf(layers[1]))
}

func TestRenderFullStack(t *testing.T) {
	recv := &struct{ ID int }{ID: 7}
	st := scope.NewStack(nil)
	frames := []stackframe.Frame{userFrame("main", 3), userFrame("run", 10)}
	st.Push(frames, scope.FromPairs("note", "hi"), recv, []any{"a", 2, true})
	current := append(frames[:2:2], userFrame("check", 55))

	layers := Render(st.Scopes(), current, Options{
		AutoCaptureReceiver: true,
		AutoCaptureArgs:     true,
		Namer:               fixedNamer{"run": {"name", "_"}},
	})

	require.Len(t, layers, 3)
	assert.Equal(t, "Scope 1 out of 3: example.com/app.check [/repo/app.go:55]", layers[0].Label)
	assert.Zero(t, layers[0].Context.Len())

	assert.Equal(t, []string{ReceiverKey, "name", "arg #2", "arg #3", "note"}, layers[1].Context.Keys())
	got, _ := layers[1].Context.Get(ReceiverKey)
	assert.Same(t, recv, got)

	assert.Zero(t, layers[2].Context.Len())
}

func TestRenderFullStackWithoutAutoCapture(t *testing.T) {
	st := scope.NewStack(nil)
	frames := []stackframe.Frame{userFrame("main", 3), userFrame("run", 10)}
	st.Push(frames, scope.FromPairs("note", "hi"), "recv", []any{1})

	layers := Render(st.Scopes(), frames, Options{})
	require.Len(t, layers, 2)
	assert.Equal(t, []string{"note"}, layers[0].Context.Keys())
}

func TestRenderNoScopes(t *testing.T) {
	frames := []stackframe.Frame{userFrame("main", 3), userFrame("run", 10)}
	assert.Len(t, Render(nil, frames, Options{}), 2)
	assert.Empty(t, Render(nil, frames, Options{OnlyExplicitContext: true}))
}

func TestRenderTrimVendorFrames(t *testing.T) {
	vendor := &PathVendorMatcher{GOROOT: "/usr/local/go"}
	frames := []stackframe.Frame{
		vendorFrame("/usr/local/go/src/runtime/proc.go", "main", 250),
		vendorFrame("/usr/local/go/src/testing/testing.go", "tRunner", 1690),
		userFrame("TestThing", 20),
		vendorFrame("/usr/local/go/src/sort/sort.go", "Slice", 30),
		userFrame("less", 44),
		vendorFrame("/home/u/go/pkg/mod/github.com/stretchr/testify@v1.9.0/assert/assertions.go", "Equal", 800),
		vendorFrame("/home/u/go/pkg/mod/github.com/stretchr/testify@v1.9.0/assert/assertions.go", "Fail", 330),
	}

	layers := Render(nil, frames, Options{TrimVendorFrames: true, Vendor: vendor})
	want := []string{
		"Scope 1 out of 4: vendored.Equal [/home/u/go/pkg/mod/github.com/stretchr/testify@v1.9.0/assert/assertions.go:800]",
		"Scope 2 out of 4: example.com/app.less [/repo/app.go:44]",
		"Scope 3 out of 4: vendored.Slice [/usr/local/go/src/sort/sort.go:30]",
		"Scope 4 out of 4: example.com/app.TestThing [/repo/app.go:20]",
	}
	if diff := cmp.Diff(want, layers.Labels()); diff != "" {
		t.Errorf("Labels() mismatch (-want +got):\n%s", diff)
	}

	untrimmed := Render(nil, frames, Options{Vendor: vendor})
	assert.Len(t, untrimmed, len(frames))
}

func TestRenderScopeContextFollowsFrameIndex(t *testing.T) {
	vendor := &PathVendorMatcher{GOROOT: "/usr/local/go"}
	frames := []stackframe.Frame{
		vendorFrame("/usr/local/go/src/testing/testing.go", "tRunner", 1690),
		userFrame("TestThing", 20),
	}
	st := scope.NewStack(nil)
	st.Push(frames, scope.FromPairs("k", "v"), nil, nil)

	layers := Render(st.Scopes(), frames, Options{TrimVendorFrames: true, Vendor: vendor})
	require.Len(t, layers, 1)
	assert.Equal(t, map[string]any{"k": "v"}, contextOf(layers[0]))
}

func TestLayersFind(t *testing.T) {
	layers := Layers{
		{Label: "a", Context: scope.FromPairs("x", 1)},
		{Label: "b", Context: scope.FromPairs("y", 2)},
	}
	l, ok := layers.Find("y")
	assert.True(t, ok)
	assert.Equal(t, "b", l.Label)
	_, ok = layers.Find("z")
	assert.False(t, ok)
}
