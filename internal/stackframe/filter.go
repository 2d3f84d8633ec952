package stackframe

import (
	"reflect"
	"slices"
	"strings"
)

// DefaultTrampolines are the generic dispatch helpers that only forward a
// call to a function value.
var DefaultTrampolines = []string{
	"reflect.makeFuncStub",
	"reflect.methodValueCall",
	"reflect.callReflect",
	"reflect.callMethod",
	"runtime.reflectcall",
}

// Filter removes infrastructure frames from a captured stack.
type Filter struct {
	// HidePrefixes match the qualified type or function of frames that
	// belong to the diagnostic system itself.
	HidePrefixes []string
	// HideInternalPrefixes match the function of frames without a source
	// file (runtime and assembly glue).
	HideInternalPrefixes []string
	// Trampolines are fully qualified function names of dispatch helpers.
	Trampolines []string
}

// DefaultFilter hides this module's own packages (but not their external
// test packages) and runtime glue without source.
func DefaultFilter() *Filter {
	root := ModulePath()
	packages := []string{
		"",
		"/dbgtest",
		"/internal/config",
		"/internal/logging",
		"/internal/render",
		"/internal/scope",
		"/internal/stackframe",
	}
	hide := make([]string, 0, len(packages))
	for _, p := range packages {
		hide = append(hide, root+p+".")
	}
	return &Filter{
		HidePrefixes:         hide,
		HideInternalPrefixes: []string{"runtime."},
		Trampolines:          slices.Clone(DefaultTrampolines),
	}
}

// ModulePath returns the import path of the module this package belongs to.
func ModulePath() string {
	pkg := reflect.TypeOf(Frame{}).PkgPath()
	root, _, _ := strings.Cut(pkg, "/internal/")
	return root
}

// Apply filters frames ordered innermost-first. Trampoline frames are held
// back until the next real frame decides their fate: a regular frame keeps
// them, an infrastructure frame drops them together with itself. A run left
// at the end is dropped. With keepInfrastructure the input is returned as is.
func (f *Filter) Apply(frames []Frame, keepInfrastructure bool) []Frame {
	if keepInfrastructure {
		return frames
	}

	out := make([]Frame, 0, len(frames))
	bufferedFrom := -1
	for i, frame := range frames {
		if f.IsTrampoline(frame) {
			if bufferedFrom < 0 {
				bufferedFrom = i
			}
			continue
		}

		if f.IsInfrastructure(frame) {
			bufferedFrom = -1
			continue
		}

		from := i
		if bufferedFrom >= 0 {
			from = bufferedFrom
		}
		out = append(out, frames[from:i+1]...)
		bufferedFrom = -1
	}
	return out
}

// IsTrampoline reports whether frame is a typeless call to a dispatch helper.
func (f *Filter) IsTrampoline(frame Frame) bool {
	if frame.TypeName != "" || frame.Kind == CallMethod {
		return false
	}
	return slices.Contains(f.Trampolines, frame.QualifiedFunction())
}

// IsInfrastructure reports whether frame belongs to the hidden code.
func (f *Filter) IsInfrastructure(frame Frame) bool {
	typ := frame.QualifiedType()
	fn := frame.QualifiedFunction()
	for _, prefix := range f.HidePrefixes {
		if typ != "" && strings.HasPrefix(typ, prefix) {
			return true
		}
		if frame.Function != "" && strings.HasPrefix(fn, prefix) {
			return true
		}
	}
	if frame.Function != "" && frame.File == "" {
		for _, prefix := range f.HideInternalPrefixes {
			if strings.HasPrefix(fn, prefix) {
				return true
			}
		}
	}
	return false
}
