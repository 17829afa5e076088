// internal/app/features/profiles/routes.go
package profiles

import (
	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves /profile.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Get("/{username}/", h.ServeProfile)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/{username}/follow/", h.HandleFollow)
		pr.Get("/{username}/unfollow/", h.HandleUnfollow)
	})
	return r
}
