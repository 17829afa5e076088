// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/inkwell/internal/app/system/viewdata"
)

// pageData is the JSON body of every error response.
type pageData struct {
	viewdata.Base
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Handler serves the router-level error pages.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound is the router's fallback for unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	RenderNotFound(w, r, "Page not found.", "/")
}

// MethodNotAllowed is the router's fallback for a known path with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusMethodNotAllowed, "Method not allowed", "That action is not supported here.", "/")
}

// Forbidden answers requests rejected by the CSRF check.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderForbidden(w, r, "The form has expired or was not sent from this site. Please go back and try again.", "/")
}
