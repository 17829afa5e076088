// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/inkwell/internal/app/system/viewdata"
)

func render(w http.ResponseWriter, r *http.Request, status int, title, msg, backURL string) {
	data := pageData{
		Base:    viewdata.NewBase(r, title, backURL),
		Status:  status,
		Message: msg,
	}
	viewdata.Render(w, r, status, data)
}

// RenderNotFound writes a 404 page. If backURL is empty, it defaults to "/".
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = "/"
	}
	render(w, r, http.StatusNotFound, "Not found", msg, backURL)
}

// RenderBadRequest writes a 400 page.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = "/"
	}
	render(w, r, http.StatusBadRequest, "Bad request", msg, backURL)
}

// RenderServerError writes a 500 page. The underlying error is never shown.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = "/"
	}
	render(w, r, http.StatusInternalServerError, "Server error", msg, backURL)
}

// RenderForbidden writes a 403 page.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = "/"
	}
	render(w, r, http.StatusForbidden, "Forbidden", msg, backURL)
}
