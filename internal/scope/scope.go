// Package scope keeps the stack of diagnostic-context scopes in sync with the
// real call stack.
//
// A Scope is anchored to the call-stack frame that acquired it. Callers never
// report function returns; instead every read reconciles the remembered
// scopes against a freshly captured stack and discards the ones whose call is
// gone.
package scope

import (
	"slices"

	"debugctx/internal/stackframe"
)

// PoppedKey is the only key left in a scope after it has been popped.
const PoppedKey = "This scope was popped"

// Scope is a diagnostic-context container anchored to one call-stack frame.
type Scope struct {
	frameIndex int
	// segment is the part of the synced stack owned by this scope: from the
	// frame above the previous scope's anchor up to this scope's anchor.
	segment   []stackframe.Frame
	subScopes []*Context
	receiver  any
	args      []any
	popped    bool
}

func newScope(frameIndex int, segment []stackframe.Frame, initial *Context, receiver any, args []any) *Scope {
	base := NewContext()
	base.Append(initial)
	return &Scope{
		frameIndex: frameIndex,
		segment:    segment,
		subScopes:  []*Context{base},
		receiver:   receiver,
		args:       args,
	}
}

// FrameIndex is the index of the anchor frame in the synced stack
// (outermost-first).
func (s *Scope) FrameIndex() int {
	return s.frameIndex
}

// Anchor returns the frame that acquired the scope, with the line refreshed
// by the last reconciliation.
func (s *Scope) Anchor() stackframe.Frame {
	return s.segment[len(s.segment)-1]
}

// Name labels the scope by its anchor frame.
func (s *Scope) Name() string {
	return s.Anchor().Label()
}

// Receiver returns the receiver given when the scope was acquired.
func (s *Scope) Receiver() any {
	return s.receiver
}

// Args returns the arguments given when the scope was acquired.
func (s *Scope) Args() []any {
	return s.args
}

// Popped reports whether the scope has been removed from its stack.
func (s *Scope) Popped() bool {
	return s.popped
}

// Depth returns the number of sub-scopes including the base context.
func (s *Scope) Depth() int {
	return len(s.subScopes)
}

func (s *Scope) top() *Context {
	return s.subScopes[len(s.subScopes)-1]
}

// Add merges ctx into the top sub-scope; re-added keys move to the end.
func (s *Scope) Add(ctx *Context) {
	s.top().Append(ctx)
}

// PushSubScope opens a nested sub-scope starting with ctx.
func (s *Scope) PushSubScope(ctx *Context) {
	s.subScopes = append(s.subScopes, ctx.Clone())
}

// PopSubScope closes the top sub-scope. The base context cannot be popped;
// in that case nothing changes and false is returned.
func (s *Scope) PopSubScope() bool {
	if len(s.subScopes) < 2 {
		return false
	}
	s.subScopes = s.subScopes[:len(s.subScopes)-1]
	return true
}

// ResetTopSubScope replaces the content of the top sub-scope with ctx.
func (s *Scope) ResetTopSubScope(ctx *Context) {
	s.subScopes[len(s.subScopes)-1] = ctx.Clone()
}

// Merged returns the sub-scopes merged bottom to top, so keys set by inner
// sub-scopes win and move to the end.
func (s *Scope) Merged() *Context {
	out := NewContext()
	for _, sub := range s.subScopes {
		out.Append(sub)
	}
	return out
}

// matches reports whether the scope's segment is still the same sequence of
// calls as current. Frames below the anchor are calls in progress, so their
// lines cannot have moved.
func (s *Scope) matches(current []stackframe.Frame) bool {
	if len(current) != len(s.segment) {
		return false
	}
	last := len(s.segment) - 1
	for i, frame := range s.segment {
		if !frame.SameCall(current[i]) {
			return false
		}
		if i != last && frame.Line != current[i].Line {
			return false
		}
	}
	return true
}

func (s *Scope) sync(current []stackframe.Frame, frameIndex int) {
	s.segment = slices.Clone(current)
	s.frameIndex = frameIndex
}

func (s *Scope) markPopped() {
	s.popped = true
	s.subScopes = []*Context{FromPairs(PoppedKey, true)}
}
