package debugctx

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"debugctx/internal/config"
	"debugctx/internal/logging"
	"debugctx/internal/render"
)

var (
	defaultOnce sync.Once
	defaultSvc  *Service
)

// Default returns the process-wide service. Its configuration comes from the
// nearest .debugctx.yaml and DEBUGCTX_* environment variables. A logging
// section with debug_mode on (or DEBUGCTX_DEBUG) initializes logging.
func Default() *Service {
	defaultOnce.Do(func() {
		defaultSvc = newDefaultService()
	})
	return defaultSvc
}

func newDefaultService() *Service {
	cfg := loadDefaultConfig()
	if cfg.Logging.DebugMode {
		if err := logging.Initialize(cfg.Logging.Settings()); err != nil {
			fmt.Fprintf(os.Stderr, "debugctx: %v\n", err)
		}
	}
	return New(cfg.DebugContext)
}

func loadDefaultConfig() *config.Config {
	log := logging.Get(logging.CategoryBoot)

	wd, err := os.Getwd()
	if err != nil {
		log.Warn("Cannot locate config, using defaults", zap.Error(err))
		return config.DefaultConfig()
	}
	path := config.FindConfigFile(wd)
	cfg, err := config.Load(path)
	if err != nil {
		log.Warn("Cannot load config, using defaults", zap.String("path", path), zap.Error(err))
		return config.DefaultConfig()
	}
	log.Debug("Loaded config", zap.String("path", path), zap.Any("options", cfg.DebugContext.Map()))
	return cfg
}

// Acquire pushes a scope on the default service. See Service.Acquire.
func Acquire(kv ...any) *Handle {
	return Default().Acquire(kv...)
}

// ContextsStack renders the default service's scopes. See Service.ContextsStack.
func ContextsStack() render.Layers {
	return Default().ContextsStack()
}

// ReadCurrentStackAsText renders the default service's scopes as text.
func ReadCurrentStackAsText() string {
	return Default().ReadCurrentStackAsText()
}

// DecorateMessage decorates msg with the default service's scopes.
func DecorateMessage(msg string) string {
	return Default().DecorateMessage(msg)
}

// ExtractStructuredContext parses the contexts stack appended to msg,
// honoring the default service's enabled option.
func ExtractStructuredContext(msg string) (render.Layers, bool) {
	return Default().ExtractStructuredContext(msg)
}

// Reset drops every scope of the default service.
func Reset() {
	Default().Reset()
}
