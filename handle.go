package debugctx

import (
	"go.uber.org/zap"

	"debugctx/internal/scope"
)

// AcquireOption can be passed among the key/value pairs of Acquire to record
// the call's receiver or arguments with the scope.
type AcquireOption interface {
	applyAcquire(*acquired)
}

type acquired struct {
	receiver any
	args     []any
}

type receiverOption struct{ v any }

func (o receiverOption) applyAcquire(a *acquired) { a.receiver = o.v }

type argsOption struct{ v []any }

func (o argsOption) applyAcquire(a *acquired) { a.args = o.v }

// Receiver records v as the receiver of the acquiring call.
func Receiver(v any) AcquireOption {
	return receiverOption{v: v}
}

// Args records the arguments of the acquiring call.
func Args(v ...any) AcquireOption {
	return argsOption{v: v}
}

func splitAcquireArgs(kv []any) (*scope.Context, acquired) {
	var a acquired
	pairs := make([]any, 0, len(kv))
	for _, item := range kv {
		if opt, ok := item.(AcquireOption); ok {
			opt.applyAcquire(&a)
			continue
		}
		pairs = append(pairs, item)
	}
	return scope.FromPairs(pairs...), a
}

// Handle is the caller's reference to its scope. The zero value and the
// handles returned while disabled are no-ops.
type Handle struct {
	svc      *Service
	scope    *scope.Scope
	released bool
}

// Acquire pushes a scope anchored at the calling frame with the given
// key/value pairs as its initial context. A scope acquired earlier by the
// same call is replaced. Pair it with a deferred Release.
func (s *Service) Acquire(kv ...any) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.Enabled {
		return &Handle{}
	}

	initial, a := splitAcquireArgs(kv)
	sc := s.stack.Push(s.captureLocked(), initial, a.receiver, a.args)
	if sc == nil {
		return &Handle{}
	}
	return &Handle{svc: s, scope: sc}
}

func (h *Handle) live() bool {
	return h != nil && h.svc != nil && h.scope != nil && !h.released
}

// Add sets key/value pairs on the top sub-scope. Keys already present move
// to the end.
func (h *Handle) Add(kv ...any) {
	if !h.live() {
		return
	}
	h.svc.mu.Lock()
	defer h.svc.mu.Unlock()
	h.scope.Add(scope.FromPairs(kv...))
}

// PushSubScope opens a nested sub-scope, e.g. for one loop iteration.
func (h *Handle) PushSubScope(kv ...any) {
	if !h.live() {
		return
	}
	h.svc.mu.Lock()
	defer h.svc.mu.Unlock()
	h.scope.PushSubScope(scope.FromPairs(kv...))
}

// PopSubScope closes the top sub-scope. The base context cannot be popped.
func (h *Handle) PopSubScope() {
	if !h.live() {
		return
	}
	h.svc.mu.Lock()
	defer h.svc.mu.Unlock()
	if !h.scope.PopSubScope() {
		h.svc.log().Warn("PopSubScope without a matching PushSubScope", zapScope(h.scope))
	}
}

// ResetTopSubScope replaces the content of the top sub-scope.
func (h *Handle) ResetTopSubScope(kv ...any) {
	if !h.live() {
		return
	}
	h.svc.mu.Lock()
	defer h.svc.mu.Unlock()
	h.scope.ResetTopSubScope(scope.FromPairs(kv...))
}

// Release removes the scope and every scope above it. It is idempotent.
// With release_on_scope_exit off the scope is left for reconciliation to
// discard once its call returns.
func (h *Handle) Release() {
	if h == nil || h.svc == nil || h.scope == nil {
		return
	}
	h.svc.mu.Lock()
	defer h.svc.mu.Unlock()

	if h.released {
		h.svc.log().Debug("Scope released twice", zapScope(h.scope))
		return
	}
	if !h.svc.cfg.ReleaseOnScopeExit || !h.svc.cfg.Enabled {
		return
	}
	h.released = true
	h.svc.stack.Pop(h.scope, h.svc.captureLocked())
}

func zapScope(s *scope.Scope) zap.Field {
	return zap.String("scope", s.Name())
}
