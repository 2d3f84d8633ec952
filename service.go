// Package debugctx attaches diagnostic key/value context to the calls that
// are executing, and renders the context of every live call when an
// assertion fails.
//
// A routine acquires a scope, adds context to it and releases it when it
// returns:
//
//	h := debugctx.Acquire("user", user.ID)
//	defer h.Release()
//	for i, item := range items {
//		h.ResetTopSubScope("item", i)
//		...
//	}
//
// Scopes are anchored to the acquiring call. A scope whose call has returned
// without releasing it is discarded the next time the stack is read.
package debugctx

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"debugctx/internal/config"
	"debugctx/internal/logging"
	"debugctx/internal/render"
	"debugctx/internal/scope"
	"debugctx/internal/stackframe"
)

// Service owns one scope stack. It belongs to a single goroutine of control,
// typically one test; the mutex only keeps the data structure consistent.
type Service struct {
	mu       sync.Mutex
	cfg      config.DebugContext
	stack    *scope.Stack
	capturer stackframe.Capturer
	namer    render.ArgumentNamer
	vendor   render.VendorMatcher
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for bookkeeping messages.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithWalker replaces the runtime stack walk, e.g. with a recorded one.
func WithWalker(w stackframe.Walker) Option {
	return func(s *Service) { s.capturer.Walker = w }
}

// WithFilter replaces the infrastructure frame filter. A nil filter keeps
// every frame.
func WithFilter(f *stackframe.Filter) Option {
	return func(s *Service) { s.capturer.Filter = f }
}

// WithArgumentNamer sets how auto-captured arguments are named.
func WithArgumentNamer(n render.ArgumentNamer) Option {
	return func(s *Service) { s.namer = n }
}

// WithVendorMatcher sets which frames count as vendor code when trimming.
func WithVendorMatcher(v render.VendorMatcher) Option {
	return func(s *Service) { s.vendor = v }
}

// New creates a service with the given configuration.
func New(cfg config.DebugContext, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		capturer: stackframe.Capturer{Filter: stackframe.DefaultFilter()},
		namer:    render.NewSourceNamer(),
		vendor:   render.DefaultVendorMatcher(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stack = scope.NewStack(s.logger)
	return s
}

// log returns the WithLogger logger or, looked up on every use, the scope
// category logger.
func (s *Service) log() *zap.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.Get(logging.CategoryScope)
}

// Config returns a copy of the current configuration.
func (s *Service) Config() config.DebugContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// SetConfig replaces the configuration. Disabling the service drops every
// scope.
func (s *Service) SetConfig(cfg config.DebugContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyConfigLocked(cfg)
}

// SetOption changes one named option and returns its previous value.
func (s *Service) SetOption(name string, value bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.cfg
	old, err := cfg.Set(name, value)
	if err != nil {
		return false, err
	}
	s.applyConfigLocked(cfg)
	return old, nil
}

func (s *Service) applyConfigLocked(cfg config.DebugContext) {
	s.cfg = cfg
	if !cfg.Enabled {
		s.stack.Reset()
	}
	s.log().Debug("Config applied", zap.Any("options", cfg.Map()))
}

// Reset drops every scope.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stack.Reset()
}

// ScopeCount returns the number of live scopes as of the last read.
func (s *Service) ScopeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.Len()
}

// Validate checks the scope stack invariants.
func (s *Service) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.Validate()
}

// captureLocked snapshots the caller's stack without this package's frames.
// Receivers are always captured since they take part in call identity.
func (s *Service) captureLocked() []stackframe.Frame {
	frames := s.capturer.Capture(0, 0, true, s.cfg.AutoCaptureArgs)
	if ce := logging.Get(logging.CategoryCapture).Check(zap.DebugLevel, "Captured stack"); ce != nil {
		ce.Write(zap.Int("frames", len(frames)))
	}
	return frames
}

// ContextsStack reconciles the scope stack with the caller's stack and
// renders it, innermost layer first. It is empty when disabled.
func (s *Service) ContextsStack() render.Layers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contextsStackLocked()
}

func (s *Service) contextsStackLocked() render.Layers {
	if !s.cfg.Enabled {
		return render.Layers{}
	}
	timer := logging.StartTimer(logging.CategoryRender, "contexts stack")
	defer timer.StopWithThreshold(100 * time.Millisecond)

	frames := s.captureLocked()
	s.stack.Reconcile(frames, false)
	return render.Render(s.stack.Scopes(), frames, render.Options{
		OnlyExplicitContext: s.cfg.OnlyExplicitContext,
		AutoCaptureReceiver: s.cfg.AutoCaptureReceiver,
		AutoCaptureArgs:     s.cfg.AutoCaptureArgs,
		TrimVendorFrames:    s.cfg.TrimVendorFrames,
		Namer:               s.namer,
		Vendor:              s.vendor,
	})
}

// ReadCurrentStackAsText renders the contexts stack as text.
func (s *Service) ReadCurrentStackAsText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textLocked()
}

func (s *Service) textLocked() string {
	text, err := render.ToText(s.contextsStackLocked())
	if err != nil {
		s.log().Warn("Failed to encode contexts stack", zap.Error(err))
		return fmt.Sprintf("failed to encode contexts stack: %v", err)
	}
	return text
}
