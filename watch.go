package debugctx

import (
	"context"

	"go.uber.org/zap"

	"debugctx/internal/config"
	"debugctx/internal/logging"
)

// WatchConfig applies the file at path every time it changes, until ctx is
// cancelled or the watcher is closed. The debug_context section goes to s,
// the logging section re-initializes process logging.
func (s *Service) WatchConfig(ctx context.Context, path string) (*config.Watcher, error) {
	w, err := config.NewWatcher(path, func(cfg *config.Config) {
		if err := logging.Initialize(cfg.Logging.Settings()); err != nil {
			s.log().Warn("Cannot apply logging section", zap.String("path", path), zap.Error(err))
		}
		s.log().Info("Config file changed", zap.String("path", path))
		s.SetConfig(cfg.DebugContext)
	})
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}
