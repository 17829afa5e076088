// internal/app/features/feeds/routes.go
package feeds

import (
	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeIndex)
	r.Get("/group/{slug}/", h.ServeGroup)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/follow/", h.ServeFollowFeed)
	})
	return r
}
