// Package viewdata provides the fields shared by every JSON view and the
// writer that renders them.
package viewdata

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// Base is embedded in every view model.
type Base struct {
	Title       string `json:"title"`
	IsLoggedIn  bool   `json:"is_logged_in"`
	Username    string `json:"username,omitempty"`
	UserName    string `json:"user_name,omitempty"`
	CurrentPath string `json:"current_path"`
	BackURL     string `json:"back_url,omitempty"`
	// CSRFToken must be echoed back as the "gorilla.csrf.Token" form field
	// on POSTs. Empty when CSRF protection is off.
	CSRFToken string `json:"csrf_token,omitempty"`
}

// NewBase fills a Base for r.
func NewBase(r *http.Request, title, backDefault string) Base {
	b := Base{
		Title:       title,
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
	if backDefault != "" {
		b.BackURL = httpnav.ResolveBackURL(r, backDefault)
	}
	if u, ok := auth.CurrentUser(r); ok {
		b.IsLoggedIn = true
		b.Username = u.Username
		b.UserName = u.Name
	}
	return b
}

// Render writes v as JSON with the given status.
func Render(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("render failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

// OK writes v as JSON with status 200.
func OK(w http.ResponseWriter, r *http.Request, v any) {
	Render(w, r, http.StatusOK, v)
}
