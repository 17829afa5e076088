// internal/app/features/posts/routes.go
package posts

import (
	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves /posts.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Get("/{id}/", h.ServeDetail)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/{id}/edit/", h.ServeEdit)
		pr.Post("/{id}/edit/", h.HandleEdit)
		pr.Post("/{id}/comment/", h.HandleComment)
	})
	return r
}

// CreateRoutes serves /create.
func CreateRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeCreate)
	r.Post("/", h.HandleCreate)
	return r
}
