package stackframe

import (
	"runtime"
	"strings"
)

// DefaultMaxDepth bounds how many raw entries a RuntimeWalker collects.
const DefaultMaxDepth = 256

// RawEntry is one entry of a raw stack walk in call-record form: the identity
// of the called routine together with the location of the call site in its
// caller. Raw walks are ordered innermost-first.
type RawEntry struct {
	File     string
	Line     int
	Package  string
	TypeName string
	Kind     CallKind
	Function string
	Receiver any
	Args     []any
}

func (e RawEntry) hasLocation() bool {
	return e.File != ""
}

func (e RawEntry) hasIdentity() bool {
	return e.Function != ""
}

// Walker produces raw stack walks. skip counts entries above the caller of
// Walk, so Walk(0) starts with the routine that called Walk.
type Walker interface {
	Walk(skip int) []RawEntry
}

// RuntimeWalker walks the current goroutine with runtime.Callers.
type RuntimeWalker struct {
	MaxDepth int
}

// Walk implements Walker.
func (w RuntimeWalker) Walk(skip int) []RawEntry {
	depth := w.MaxDepth
	if depth <= 0 {
		depth = DefaultMaxDepth
	}

	pcs := make([]uintptr, depth)
	// +2: runtime.Callers itself and this method
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	var frames []runtime.Frame
	it := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := it.Next()
		frames = append(frames, frame)
		if !more {
			break
		}
	}

	// The runtime reports each routine with its own current position; a call
	// record pairs a routine with the position of its caller instead.
	entries := make([]RawEntry, len(frames))
	for i, frame := range frames {
		pkg, typeName, kind, function := ParseFunction(frame.Function)
		entries[i] = RawEntry{
			Package:  pkg,
			TypeName: typeName,
			Kind:     kind,
			Function: function,
		}
		if i+1 < len(frames) {
			entries[i].File, entries[i].Line = sourceLocation(frames[i+1])
		}
	}
	return entries
}

func sourceLocation(frame runtime.Frame) (string, int) {
	if frame.File == "" || frame.File == "<autogenerated>" || strings.HasSuffix(frame.File, ".s") {
		return "", 0
	}
	return frame.File, frame.Line
}

// SliceWalker replays a fixed raw walk. It is used where the stack has to be
// reproduced exactly, e.g. to re-render a recorded failure.
type SliceWalker []RawEntry

// Walk implements Walker.
func (s SliceWalker) Walk(skip int) []RawEntry {
	if skip >= len(s) {
		return nil
	}
	return s[skip:]
}
