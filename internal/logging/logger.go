// Package logging provides config-driven categorized logging for debugctx.
// Loggers are zap loggers named after their category.
// Logging is controlled by debug_mode in the logging section of the config -
// when false, every category gets a no-op logger.
package logging

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem
type Category string

const (
	CategoryBoot    Category = "boot"    // Initialization, service construction
	CategoryCapture Category = "capture" // Stack capture and frame filtering
	CategoryScope   Category = "scope"   // Scope stack reconciliation
	CategoryRender  Category = "render"  // Layer rendering, text encoding, argument naming
	CategoryConfig  Category = "config"  // Config load/save and live reload
	CategoryCLI     Category = "cli"     // dbgctx command
)

// Settings mirrors config.Logging to avoid circular imports
type Settings struct {
	DebugMode   bool
	Level       string
	Categories  map[string]bool
	JSONFormat  bool
	OutputPaths []string
}

var (
	base     *zap.Logger
	settings Settings
	loggers  = make(map[Category]*zap.Logger)
	mu       sync.RWMutex
)

// Initialize builds the base logger from s. With debug mode off every
// category stays a no-op logger.
func Initialize(s Settings) error {
	mu.Lock()
	defer mu.Unlock()

	if base != nil {
		_ = base.Sync()
	}
	settings = s
	base = nil
	clear(loggers)

	if !s.DebugMode {
		return nil
	}

	level, err := zapcore.ParseLevel(s.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	cfg := zap.NewDevelopmentConfig()
	if s.JSONFormat {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	if len(s.OutputPaths) > 0 {
		cfg.OutputPaths = s.OutputPaths
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	base = l

	boot := base.Named(string(CategoryBoot))
	boot.Info("debugctx logging initialized", zap.String("level", level.String()), zap.Bool("json", s.JSONFormat))
	if len(s.Categories) > 0 {
		enabled := 0
		for _, on := range s.Categories {
			if on {
				enabled++
			}
		}
		boot.Debug("category filter", zap.Int("enabled", enabled), zap.Int("configured", len(s.Categories)))
	}
	return nil
}

// Use installs l as the base logger with every category enabled.
// The CLI uses it to share the logger it already built.
func Use(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	settings = Settings{DebugMode: l != nil}
	clear(loggers)
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return settings.DebugMode && base != nil
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabled(category)
}

func categoryEnabled(category Category) bool {
	if !settings.DebugMode || base == nil {
		return false
	}
	enabled, exists := settings.Categories[string(category)]
	if !exists {
		return true // Enable by default if not specified
	}
	return enabled
}

// Get returns (or creates) the logger for the given category.
// Returns a no-op logger if debug mode or the category is disabled.
func Get(category Category) *zap.Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	l := zap.NewNop()
	if categoryEnabled(category) {
		l = base.Named(string(category))
	}
	loggers[category] = l
	return l
}

// Sync flushes the base logger.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if base != nil {
		_ = base.Sync()
	}
}

// Timer measures one operation and logs its duration on Stop.
type Timer struct {
	logger    *zap.Logger
	operation string
	start     time.Time
}

// StartTimer starts timing operation on the category logger.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{logger: Get(category), operation: operation, start: time.Now()}
}

// Stop logs the elapsed time at debug level and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.logger.Debug("operation finished", zap.String("operation", t.operation), zap.Duration("elapsed", elapsed))
	return elapsed
}

// StopWithThreshold logs at warn level when the operation took longer than threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		t.logger.Warn("slow operation", zap.String("operation", t.operation), zap.Duration("elapsed", elapsed), zap.Duration("threshold", threshold))
	}
	return elapsed
}
