package scope

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"debugctx/internal/logging"
	"debugctx/internal/stackframe"
)

// Stack is the ordered collection of live scopes, oldest first.
// It is owned by a single goroutine of control and does no locking.
type Stack struct {
	scopes []*Scope
	synced []stackframe.Frame
	logger *zap.Logger
}

// NewStack creates an empty stack. With a nil logger the scope category
// logger is looked up on every use, so a later logging.Initialize applies.
func NewStack(logger *zap.Logger) *Stack {
	return &Stack{logger: logger}
}

func (st *Stack) log() *zap.Logger {
	if st.logger != nil {
		return st.logger
	}
	return logging.Get(logging.CategoryScope)
}

// Scopes returns the live scopes, oldest first.
func (st *Stack) Scopes() []*Scope {
	return slices.Clone(st.scopes)
}

// Len returns the number of live scopes.
func (st *Stack) Len() int {
	return len(st.scopes)
}

// Synced returns the call stack of the last reconciliation (outermost-first),
// or nil when there are no scopes.
func (st *Stack) Synced() []stackframe.Frame {
	return st.synced
}

// Reset drops every scope.
func (st *Stack) Reset() {
	for _, s := range st.scopes {
		s.popped = true
	}
	st.scopes = nil
	st.synced = nil
}

// Reconcile matches the scopes, oldest first, against current (outermost
// first) and discards every scope whose originating call has returned.
// With newScopeAboutToBePushed the innermost frame of current is reserved
// for the new scope, so a scope already anchored there is stale.
// It returns the number of frames consumed by the surviving scopes.
func (st *Stack) Reconcile(current []stackframe.Frame, newScopeAboutToBePushed bool) int {
	consumed := 0
	popFrom := -1

	for i, s := range st.scopes {
		end := consumed + len(s.segment)
		if end > len(current) || !s.matches(current[consumed:end]) {
			popFrom = i
			break
		}

		anchor := end - 1
		if newScopeAboutToBePushed && anchor == len(current)-1 {
			popFrom = i
			break
		}

		sameLine := s.Anchor().Line == current[anchor].Line
		s.sync(current[consumed:end], anchor)
		consumed = end

		if i == len(st.scopes)-1 {
			break
		}

		// The anchor call resumed and moved on to another statement, so
		// every scope above belongs to calls that no longer exist.
		if !sameLine {
			popFrom = i + 1
			break
		}
	}

	if popFrom >= 0 {
		st.log().Debug("Discarding stale scopes",
			zap.Int("from", popFrom),
			zap.Int("count", len(st.scopes)-popFrom),
			zap.String("first", st.scopes[popFrom].Name()))
		st.truncate(popFrom)
	}

	if newScopeAboutToBePushed || len(st.scopes) > 0 {
		st.synced = slices.Clone(current)
	} else {
		st.synced = nil
	}
	return consumed
}

// Push reconciles and then pushes a new scope anchored at the innermost
// frame of current, which must be the frame of the acquiring call.
// It returns nil when current is empty.
func (st *Stack) Push(current []stackframe.Frame, initial *Context, receiver any, args []any) *Scope {
	if len(current) == 0 {
		st.log().Warn("Cannot anchor a scope to an empty call stack")
		return nil
	}

	consumed := st.Reconcile(current, true)
	s := newScope(len(current)-1, slices.Clone(current[consumed:]), initial, receiver, args)
	st.scopes = append(st.scopes, s)
	return s
}

// Pop reconciles and then removes s together with every scope above it.
// Popping a scope that is no longer on the stack is a no-op.
func (st *Stack) Pop(s *Scope, current []stackframe.Frame) {
	st.Reconcile(current, false)

	index := slices.Index(st.scopes, s)
	if index < 0 {
		s.markPopped()
		return
	}
	st.truncate(index)
	s.markPopped()
	if len(st.scopes) == 0 {
		st.synced = nil
	}
}

func (st *Stack) truncate(from int) {
	for _, s := range st.scopes[from:] {
		s.popped = true
	}
	clear(st.scopes[from:])
	st.scopes = st.scopes[:from]
}

// Validate checks the stack invariants: the synced stack exists exactly when
// there are scopes, anchors are valid indices, strictly increasing, and every
// scope keeps its base context.
func (st *Stack) Validate() error {
	if (st.synced == nil) != (len(st.scopes) == 0) {
		return fmt.Errorf("synced stack presence (%v) does not match scope count %d", st.synced != nil, len(st.scopes))
	}

	prev := -1
	for i, s := range st.scopes {
		if s.frameIndex < 0 || s.frameIndex >= len(st.synced) {
			return fmt.Errorf("scope %d: anchor %d out of range [0, %d)", i, s.frameIndex, len(st.synced))
		}
		if s.frameIndex <= prev {
			return fmt.Errorf("scope %d: anchor %d not above previous anchor %d", i, s.frameIndex, prev)
		}
		if len(s.subScopes) == 0 {
			return fmt.Errorf("scope %d: sub-scope stack is empty", i)
		}
		if !s.Anchor().SameCall(st.synced[s.frameIndex]) {
			return fmt.Errorf("scope %d: anchor %s does not match synced frame %s", i, s.Name(), st.synced[s.frameIndex].Label())
		}
		prev = s.frameIndex
	}
	return nil
}
