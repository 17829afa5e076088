// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/inkwell/internal/app/blog"
	errorsfeature "github.com/dalemusser/inkwell/internal/app/features/errors"
	feedsfeature "github.com/dalemusser/inkwell/internal/app/features/feeds"
	healthfeature "github.com/dalemusser/inkwell/internal/app/features/health"
	loginfeature "github.com/dalemusser/inkwell/internal/app/features/login"
	logoutfeature "github.com/dalemusser/inkwell/internal/app/features/logout"
	metricsfeature "github.com/dalemusser/inkwell/internal/app/features/metrics"
	postsfeature "github.com/dalemusser/inkwell/internal/app/features/posts"
	profilesfeature "github.com/dalemusser/inkwell/internal/app/features/profiles"
	signupfeature "github.com/dalemusser/inkwell/internal/app/features/signup"
	userinfofeature "github.com/dalemusser/inkwell/internal/app/features/userinfo"
	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"github.com/dalemusser/inkwell/internal/app/system/feedcache"
	"github.com/dalemusser/inkwell/internal/app/system/media"
	"github.com/dalemusser/inkwell/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// csrfFieldName is the form field (and JSON key in views) for the token.
const csrfFieldName = "csrf_token"

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Inkwell applies session and CSRF middleware and mounts the feeds, posts,
// profiles and auth feature routers plus health, metrics and media files.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Reload the user on each request so deleted accounts are signed out.
	sessionMgr.SetUserFetcher(userFetcher{st: deps.Store})

	images, err := media.NewOS(appCfg.MediaPath, appCfg.MediaURL, appCfg.MaxUploadBytes())
	if err != nil {
		logger.Error("media store init failed", zap.Error(err))
		return nil, err
	}

	query := blog.NewQuery(deps.Store, appCfg.PageSize)
	service := blog.NewService(deps.Store, images, logger)
	index := blog.NewIndexCache(query, appCfg.IndexCacheTTL, feedcache.SystemClock{})
	limiter := ratelimit.NewLoginLimiterWithConfig(appCfg.LoginIPLimit, time.Minute, appCfg.LoginUserLimit, 5*time.Minute)

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	if appCfg.CSRFEnabled {
		r.Use(csrfProtect(appCfg.SessionKey, secure, http.HandlerFunc(errorsHandler.Forbidden)))
	}

	// Fallbacks must be set before Mount so subrouters inherit them.
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check and metrics for load balancers and scrapers.
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.Store, logger)))
	r.Mount("/metrics", metricsfeature.Routes())

	// Uploaded post images.
	mediaURL := "/" + strings.Trim(appCfg.MediaURL, "/")
	r.Handle(mediaURL+"/*", fileserver.Handler(mediaURL, appCfg.MediaPath))

	// Authentication
	loginHandler := loginfeature.NewHandler(service, sessionMgr, limiter, errLog, logger)
	r.Mount("/auth/login", loginfeature.Routes(loginHandler))

	signupHandler := signupfeature.NewHandler(service, sessionMgr, errLog, logger)
	r.Mount("/auth/signup", signupfeature.Routes(signupHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/auth/logout", logoutfeature.Routes(logoutHandler))

	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	// Posts and comments
	postsHandler := postsfeature.NewHandler(query, service, appCfg.MaxUploadBytes(), errLog, logger)
	r.Mount("/posts", postsfeature.Routes(postsHandler, sessionMgr))
	r.Mount("/create", postsfeature.CreateRoutes(postsHandler, sessionMgr))

	// Author profiles and follows
	profilesHandler := profilesfeature.NewHandler(query, service, errLog, logger)
	r.Mount("/profile", profilesfeature.Routes(profilesHandler, sessionMgr))

	// Feeds: global index, group and follow feeds.
	feedsHandler := feedsfeature.NewHandler(query, index, errLog, logger)
	r.Mount("/", feedsfeature.Routes(feedsHandler, sessionMgr))

	return r, nil
}

// csrfProtect wraps gorilla/csrf. The token key is derived from the session
// key. Over plain HTTP requests are marked as such so the origin check does
// not demand HTTPS referers.
func csrfProtect(sessionKey string, secure bool, onFail http.Handler) func(http.Handler) http.Handler {
	key := sha256.Sum256([]byte("inkwell-csrf:" + sessionKey))
	protect := csrf.Protect(key[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.FieldName(csrfFieldName),
		csrf.ErrorHandler(onFail),
	)

	return func(next http.Handler) http.Handler {
		h := protect(next)
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
