package stackframe

import "slices"

// Capturer snapshots the call stack through a Walker and optionally a Filter.
// The zero value walks the runtime stack and keeps every frame.
type Capturer struct {
	Walker             Walker
	Filter             *Filter
	KeepInfrastructure bool
}

// Capture snapshots the stack of the calling goroutine, outermost frame
// first. skip elides that many innermost frames above the caller of Capture.
// maxFrames <= 0 means no limit; otherwise the innermost maxFrames frames are
// kept. The result is empty when skip exceeds the stack depth.
func Capture(skip, maxFrames int, includeReceiver, includeArgs bool) []Frame {
	return Capturer{}.Capture(skip+1, maxFrames, includeReceiver, includeArgs)
}

// Capture is like the package-level Capture but uses c's walker and filter.
func (c Capturer) Capture(skip, maxFrames int, includeReceiver, includeArgs bool) []Frame {
	walker := c.Walker
	if walker == nil {
		walker = RuntimeWalker{}
	}

	// raw[0] is this method; its call-site location belongs to our caller
	raw := walker.Walk(0)
	start := skip + 1
	if start >= len(raw) {
		return []Frame{}
	}

	frames := Merge(&raw[start-1], raw[start:], includeReceiver, includeArgs)
	if c.Filter != nil {
		frames = c.Filter.Apply(frames, c.KeepInfrastructure)
	}
	if maxFrames > 0 && len(frames) > maxFrames {
		frames = frames[:maxFrames]
	}

	slices.Reverse(frames)
	return frames
}

// Merge turns raw call records (innermost-first) into canonical frames
// (innermost-first). Each frame takes its identity from the current entry
// and its location from the previous one, which recorded the call site
// inside the current routine. With a nil prev the first frame has no
// location; when the last entry still carries a call site, a trailing frame
// with location only is appended for the code that made the outermost call.
func Merge(prev *RawEntry, entries []RawEntry, includeReceiver, includeArgs bool) []Frame {
	frames := make([]Frame, 0, len(entries)+1)
	for i := range entries {
		current := &entries[i]
		var out Frame
		empty := true
		if prev != nil && prev.hasLocation() {
			out.File, out.Line = prev.File, prev.Line
			empty = false
		}
		if current.hasIdentity() {
			out.Package = current.Package
			out.TypeName = current.TypeName
			out.Kind = current.Kind
			out.Function = current.Function
			if includeReceiver {
				out.Receiver = current.Receiver
			}
			if includeArgs {
				out.Args = current.Args
			}
			empty = false
		}
		if !empty {
			frames = append(frames, out)
		}
		prev = current
	}

	if prev != nil && prev.hasLocation() {
		frames = append(frames, Frame{File: prev.File, Line: prev.Line})
	}
	return frames
}
