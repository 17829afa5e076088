// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dalemusser/inkwell/internal/app/system/media"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// Inkwell makes sure the media directory is writable so the first image
// upload does not fail on a missing folder.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	dir := filepath.Join(appCfg.MediaPath, media.PostsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("media directory not writable", zap.String("dir", dir), zap.Error(err))
		return fmt.Errorf("create media dir: %w", err)
	}

	logger.Info("inkwell ready",
		zap.String("backend", appCfg.StoreBackend),
		zap.Int("page_size", appCfg.PageSize),
		zap.Duration("index_cache_ttl", appCfg.IndexCacheTTL),
		zap.String("media_path", appCfg.MediaPath))
	return nil
}
