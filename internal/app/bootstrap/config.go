// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// minSessionKeyLen is the shortest session key accepted without a warning.
const minSessionKeyLen = 32

// appConfigKeys defines the configuration keys for Inkwell.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: INKWELL_MONGO_URI, INKWELL_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: backendMongo, Desc: "Store backend: 'mongo' or 'sqlite'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "inkwell", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "sqlite_dsn", Default: "inkwell.db", Desc: "SQLite database file or DSN (store_backend=sqlite)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "inkwell-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "336h", Desc: "Session cookie lifetime (e.g., 336h)"},
	{Name: "csrf_enabled", Default: true, Desc: "Require a CSRF token on unsafe requests"},

	// Feeds
	{Name: "page_size", Default: 10, Desc: "Posts per feed page"},
	{Name: "index_cache_ttl", Default: "20s", Desc: "How long a global feed page is cached"},

	// Post images
	{Name: "media_path", Default: "./uploads", Desc: "Local directory for uploaded images"},
	{Name: "media_url", Default: "/media", Desc: "URL prefix for serving uploaded images"},
	{Name: "max_upload_mb", Default: 5, Desc: "Maximum post form size in MB, image included"},

	// Login throttling
	{Name: "login_ip_limit", Default: 10, Desc: "Login attempts allowed per IP per minute"},
	{Name: "login_user_limit", Default: 5, Desc: "Login attempts allowed per username per 5 minutes"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, INKWELL_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "INKWELL", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend:     appValues.String("store_backend"),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		SQLiteDSN:        appValues.String("sqlite_dsn"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 14*24*time.Hour),
		CSRFEnabled:   appValues.Bool("csrf_enabled"),

		PageSize:      appValues.Int("page_size"),
		IndexCacheTTL: appValues.Duration("index_cache_ttl", 20*time.Second),

		MediaPath:   appValues.String("media_path"),
		MediaURL:    appValues.String("media_url"),
		MaxUploadMB: appValues.Int("max_upload_mb"),

		LoginIPLimit:   appValues.Int("login_ip_limit"),
		LoginUserLimit: appValues.Int("login_user_limit"),
	}

	if len(appCfg.SessionKey) < minSessionKeyLen {
		logger.Warn("session_key is shorter than recommended",
			zap.Int("length", len(appCfg.SessionKey)),
			zap.Int("recommended", minSessionKeyLen))
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case backendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	case backendSQLite:
		if appCfg.SQLiteDSN == "" {
			return errors.New("store_backend sqlite requires sqlite_dsn")
		}
	default:
		return fmt.Errorf("unknown store_backend %q (want %q or %q)", appCfg.StoreBackend, backendMongo, backendSQLite)
	}

	if appCfg.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", appCfg.PageSize)
	}
	if appCfg.IndexCacheTTL <= 0 {
		return fmt.Errorf("index_cache_ttl must be positive, got %s", appCfg.IndexCacheTTL)
	}
	if appCfg.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", appCfg.MaxUploadMB)
	}
	if appCfg.SessionKey == "" {
		return errors.New("session_key is required")
	}

	return nil
}
