package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/inkwell/internal/app/features/logout"
	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*logout.Handler, *auth.SessionManager) {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return logout.NewHandler(sessionMgr, logger), sessionMgr
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			return c
		}
	}
	return nil
}

func TestServeLogout_RedirectsToHome(t *testing.T) {
	handler, _ := newTestHandler(t)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		req := httptest.NewRequest(method, "/auth/logout/", nil)
		rec := httptest.NewRecorder()

		handler.ServeLogout(rec, req)

		if rec.Code != http.StatusFound {
			t.Errorf("%s: expected status %d, got %d", method, http.StatusFound, rec.Code)
		}
		if location := rec.Header().Get("Location"); location != "/" {
			t.Errorf("%s: Location: got %q, want %q", method, location, "/")
		}
	}
}

func TestServeLogout_ClearsSessionCookie(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, httptest.NewRequest("GET", "/auth/logout/", nil))

	c := sessionCookie(rec)
	if c == nil {
		t.Fatal("expected session cookie to be set for deletion")
	}
	if c.MaxAge != -1 {
		t.Errorf("cookie MaxAge: got %d, want -1 (delete)", c.MaxAge)
	}
}

func TestServeLogout_HTMX_ReturnsHXRedirect(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/auth/logout/", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	handler.ServeLogout(rec, req)

	if hx := rec.Header().Get("HX-Redirect"); hx != "/" {
		t.Errorf("HX-Redirect: got %q, want %q", hx, "/")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d for HTMX, got %d", http.StatusOK, rec.Code)
	}
}

func TestServeLogout_EndsExistingSession(t *testing.T) {
	handler, sessionMgr := newTestHandler(t)

	// Sign in first and carry the cookie into the logout request.
	rec1 := httptest.NewRecorder()
	err := sessionMgr.SignIn(rec1, httptest.NewRequest("POST", "/auth/login/", nil), auth.SessionUser{
		ID:       "65a1b2c3d4e5f60718293a4b",
		Username: "alice",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	req2 := httptest.NewRequest("GET", "/auth/logout/", nil)
	for _, c := range rec1.Result().Cookies() {
		req2.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	handler.ServeLogout(rec2, req2)

	if rec2.Code != http.StatusFound {
		t.Errorf("expected status %d, got %d", http.StatusFound, rec2.Code)
	}
	if c := sessionCookie(rec2); c == nil || c.MaxAge != -1 {
		t.Errorf("cookie after logout: %+v, want MaxAge -1", c)
	}

	// A request bearing the expired cookie is anonymous.
	req3 := httptest.NewRequest("GET", "/", nil)
	if c := sessionCookie(rec2); c != nil {
		req3.AddCookie(c)
	}
	var signedIn bool
	sessionMgr.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, signedIn = auth.CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), req3)
	if signedIn {
		t.Error("expected anonymous request after logout")
	}
}
