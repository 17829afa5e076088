// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig carries everything specific to Inkwell. The struct is passed to
// most lifecycle hooks, so any configuration needed during startup, request
// handling, or shutdown lives here.
type AppConfig struct {
	// Store backend: "mongo" or "sqlite"
	StoreBackend string

	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64

	// SQLite configuration (only used if StoreBackend is "sqlite")
	SQLiteDSN string // e.g. "inkwell.db" or "file:inkwell?mode=memory&cache=shared"

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: inkwell-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// CSRFEnabled guards every unsafe request with a CSRF token.
	CSRFEnabled bool

	// Feeds
	PageSize      int           // posts per feed page
	IndexCacheTTL time.Duration // how long a global feed page is reused

	// Post images
	MediaPath   string // local directory for uploads (e.g., "./uploads")
	MediaURL    string // URL prefix uploads are served under (e.g., "/media")
	MaxUploadMB int    // limit for a post form including its image

	// Login throttling
	LoginIPLimit   int // attempts per IP per minute
	LoginUserLimit int // attempts per username per five minutes
}

const (
	backendMongo  = "mongo"
	backendSQLite = "sqlite"
)

// MaxUploadBytes converts MaxUploadMB to bytes.
func (c AppConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
