package bootstrap

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"github.com/dalemusser/inkwell/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func testAppConfig(t *testing.T) AppConfig {
	t.Helper()
	return AppConfig{
		StoreBackend:   backendSQLite,
		SQLiteDSN:      "file:unused?mode=memory",
		SessionKey:     "test-session-key-for-testing-only-0123456789",
		SessionName:    "test-session",
		SessionMaxAge:  time.Hour,
		PageSize:       10,
		IndexCacheTTL:  20 * time.Second,
		MediaPath:      t.TempDir(),
		MediaURL:       "/media",
		MaxUploadMB:    5,
		LoginIPLimit:   10,
		LoginUserLimit: 5,
	}
}

type testApp struct {
	handler http.Handler
	deps    DBDeps
	cfg     AppConfig
}

func newTestApp(t *testing.T, mutate func(*AppConfig)) *testApp {
	t.Helper()
	cfg := testAppConfig(t)
	if mutate != nil {
		mutate(&cfg)
	}
	st := testutil.SetupSQLStore(t)
	deps := DBDeps{Store: st, SQL: st.DB()}

	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, cfg, deps, zap.NewNop())
	if err != nil {
		t.Fatalf("BuildHandler failed: %v", err)
	}
	return &testApp{handler: h, deps: deps, cfg: cfg}
}

func (a *testApp) do(req *http.Request, cookies ...*http.Cookie) *testutil.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := testutil.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid sqlite", func(*AppConfig) {}, false},
		{"valid mongo", func(c *AppConfig) {
			c.StoreBackend = backendMongo
			c.MongoURI = "mongodb://localhost:27017"
		}, false},
		{"bad mongo uri", func(c *AppConfig) {
			c.StoreBackend = backendMongo
			c.MongoURI = "postgres://localhost"
		}, true},
		{"unknown backend", func(c *AppConfig) { c.StoreBackend = "redis" }, true},
		{"empty sqlite dsn", func(c *AppConfig) { c.SQLiteDSN = "" }, true},
		{"zero page size", func(c *AppConfig) { c.PageSize = 0 }, true},
		{"zero ttl", func(c *AppConfig) { c.IndexCacheTTL = 0 }, true},
		{"zero upload limit", func(c *AppConfig) { c.MaxUploadMB = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testAppConfig(t)
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{}, cfg, zap.NewNop())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildHandler_PublicRoutes(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		path   string
		status int
	}{
		{"/", http.StatusOK},
		{"/?page=2", http.StatusOK},
		{"/health", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/auth/login/", http.StatusOK},
		{"/auth/signup/", http.StatusOK},
		{"/auth/me/", http.StatusOK},
		{"/group/missing/", http.StatusNotFound},
		{"/profile/ghost/", http.StatusNotFound},
		{"/posts/" + primitive.NewObjectID().Hex() + "/", http.StatusNotFound},
		{"/posts/not-an-id/", http.StatusNotFound},
		{"/no/such/page/", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := app.do(testutil.NewRequest(http.MethodGet, tt.path))
		if rec.Code != tt.status {
			t.Errorf("GET %s: got %d, want %d", tt.path, rec.Code, tt.status)
		}
	}
}

func TestBuildHandler_NotFoundIsJSON(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(testutil.NewRequest(http.MethodGet, "/posts/nowhere/extra/"))

	rec.AssertStatus(t, http.StatusNotFound)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type: got %q", ct)
	}
}

func TestBuildHandler_ProtectedRoutesRedirect(t *testing.T) {
	app := newTestApp(t, nil)

	for _, path := range []string{"/follow/", "/create/", "/profile/ghost/follow/"} {
		rec := app.do(testutil.NewRequest(http.MethodGet, path))
		rec.AssertRedirect(t, "/auth/login/?next="+url.QueryEscape(path))
	}
}

func TestBuildHandler_SignupThenFollowFeed(t *testing.T) {
	app := newTestApp(t, nil)

	form := url.Values{
		"username":  {"newbie"},
		"password1": {"a-long-password"},
		"password2": {"a-long-password"},
	}
	rec := app.do(testutil.NewFormRequest("/auth/signup/", form))
	rec.AssertRedirect(t, "/")

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("signup did not set a session cookie")
	}

	rec = app.do(testutil.NewRequest(http.MethodGet, "/auth/me/"), cookies...)
	rec.AssertContains(t, `"username":"newbie"`)

	rec = app.do(testutil.NewRequest(http.MethodGet, "/follow/"), cookies...)
	rec.AssertStatus(t, http.StatusOK)

	rec = app.do(testutil.NewRequest(http.MethodGet, "/create/"), cookies...)
	rec.AssertStatus(t, http.StatusOK)

	rec = app.do(testutil.NewFormRequest("/create/", url.Values{"text": {"hello from the router"}}), cookies...)
	rec.AssertRedirect(t, "/profile/newbie/")

	rec = app.do(testutil.NewRequest(http.MethodGet, "/profile/newbie/"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "hello from the router")
}

func (a *testApp) signup(t *testing.T, username string) []*http.Cookie {
	t.Helper()
	rec := a.do(testutil.NewFormRequest("/auth/signup/", url.Values{
		"username":  {username},
		"password1": {"a-long-password"},
		"password2": {"a-long-password"},
	}))
	rec.AssertRedirect(t, "/")
	return rec.Result().Cookies()
}

// landsOn checks that rec redirects to want and that the router serves want.
func (a *testApp) landsOn(t *testing.T, rec *testutil.ResponseRecorder, want string, cookies ...*http.Cookie) {
	t.Helper()
	rec.AssertRedirect(t, want)
	next := a.do(testutil.NewRequest(http.MethodGet, rec.Header().Get("Location")), cookies...)
	next.AssertStatus(t, http.StatusOK)
}

func TestBuildHandler_FollowRedirectsResolve(t *testing.T) {
	app := newTestApp(t, nil)
	app.signup(t, "alice")
	bob := app.signup(t, "bob")

	req := testutil.NewRequest(http.MethodGet, "/profile/alice/follow/")
	req.Header.Set("Referer", "/profile/alice/")
	app.landsOn(t, app.do(req, bob...), "/profile/alice/", bob...)

	req = testutil.NewRequest(http.MethodGet, "/profile/alice/unfollow/")
	req.Header.Set("Referer", "http://example.com/follow/?page=1")
	app.landsOn(t, app.do(req, bob...), "/follow/?page=1", bob...)

	app.do(testutil.NewRequest(http.MethodGet, "/profile/alice/follow/"), bob...)
	req = testutil.NewRequest(http.MethodGet, "/profile/alice/unfollow/")
	req.Header.Set("Referer", "/profile/alice/follow/")
	app.landsOn(t, app.do(req, bob...), "/profile/alice/", bob...)

	// Following yourself goes back to the referring page.
	req = testutil.NewRequest(http.MethodGet, "/profile/bob/follow/")
	req.Header.Set("Referer", "/profile/alice/")
	app.landsOn(t, app.do(req, bob...), "/profile/alice/", bob...)
}

func TestBuildHandler_LoginNextResolves(t *testing.T) {
	app := newTestApp(t, nil)
	app.signup(t, "bob")

	for _, next := range []string{"/follow/", "/create/", "/profile/bob/"} {
		rec := app.do(testutil.NewFormRequest("/auth/login/", url.Values{
			"username": {"bob"},
			"password": {"a-long-password"},
			"next":     {next},
		}))
		app.landsOn(t, rec, next, rec.Result().Cookies()...)
	}
}

func TestBuildHandler_ServesMedia(t *testing.T) {
	app := newTestApp(t, nil)

	dir := filepath.Join(app.cfg.MediaPath, "posts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pic.txt"), []byte("pixels"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rec := app.do(testutil.NewRequest(http.MethodGet, "/media/posts/pic.txt"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "pixels")
}

func TestBuildHandler_CSRF(t *testing.T) {
	app := newTestApp(t, func(c *AppConfig) { c.CSRFEnabled = true })
	form := url.Values{"username": {"nobody"}, "password": {"wrong-password"}}

	// No token: rejected before the handler runs.
	rec := app.do(testutil.NewFormRequest("/auth/login/", form))
	rec.AssertStatus(t, http.StatusForbidden)

	// GET hands out a token and its cookie.
	rec = app.do(testutil.NewRequest(http.MethodGet, "/auth/login/"))
	rec.AssertStatus(t, http.StatusOK)
	var page struct {
		CSRFToken string `json:"csrf_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if page.CSRFToken == "" {
		t.Fatal("expected a csrf_token in the login view")
	}

	form.Set(csrfFieldName, page.CSRFToken)
	rec = app.do(testutil.NewFormRequest("/auth/login/", form), rec.Result().Cookies()...)
	// Past the CSRF check the bad credentials re-render the form.
	rec.AssertStatus(t, http.StatusOK)
}

func TestUserFetcher(t *testing.T) {
	st := testutil.SetupSQLStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := testutil.NewFixtures(t, st).CreateUser(ctx, "writer")
	f := userFetcher{st: st}

	got, err := f.FetchSessionUser(ctx, u.ID.Hex())
	if err != nil {
		t.Fatalf("FetchSessionUser failed: %v", err)
	}
	if got.Username != "writer" || got.Name != "Test writer" {
		t.Errorf("unexpected session user: %+v", got)
	}

	for _, id := range []string{primitive.NewObjectID().Hex(), "not-hex"} {
		if _, err := f.FetchSessionUser(ctx, id); !errors.Is(err, auth.ErrUserGone) {
			t.Errorf("FetchSessionUser(%q): got %v, want ErrUserGone", id, err)
		}
	}
}

func TestStartup_CreatesMediaDir(t *testing.T) {
	cfg := testAppConfig(t)
	cfg.MediaPath = filepath.Join(t.TempDir(), "nested", "uploads")

	if err := Startup(t.Context(), &config.CoreConfig{}, cfg, DBDeps{}, zap.NewNop()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}
	if fi, err := os.Stat(filepath.Join(cfg.MediaPath, "posts")); err != nil || !fi.IsDir() {
		t.Errorf("posts dir missing: %v", err)
	}
}

func TestEnsureSchema_SQLite(t *testing.T) {
	st := testutil.SetupSQLStore(t)
	deps := DBDeps{Store: st, SQL: st.DB()}

	// Already migrated; running again must be a no-op.
	if err := EnsureSchema(t.Context(), &config.CoreConfig{}, testAppConfig(t), deps, zap.NewNop()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
}

func TestShutdown_ClosesStore(t *testing.T) {
	st := testutil.SetupSQLStore(t)
	deps := DBDeps{Store: st}

	if err := Shutdown(t.Context(), &config.CoreConfig{}, testAppConfig(t), deps, zap.NewNop()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := st.Ping(t.Context()); err == nil {
		t.Error("store still answers after Shutdown")
	}
}

