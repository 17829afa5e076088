// internal/app/features/posts/create.go
package posts

import (
	"errors"
	"net/http"

	"github.com/dalemusser/inkwell/internal/app/blog"
	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"github.com/dalemusser/inkwell/internal/app/system/authz"
	"github.com/dalemusser/inkwell/internal/app/system/timeouts"
	"github.com/dalemusser/inkwell/internal/app/system/viewdata"
	"github.com/dalemusser/inkwell/internal/domain/models"
)

// ServeCreate handles GET /create/.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	viewdata.OK(w, r, formData{
		Base: viewdata.NewBase(r, "New post", "/"),
		Form: postForm{Text: models.DefaultPostText},
	})
}

// HandleCreate handles POST /create/.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, err := authz.RequireIdentity(r)
	if err != nil {
		auth.RedirectToLogin(w, r)
		return
	}

	in, cleanup, err := h.parsePostForm(w, r)
	defer cleanup()

	data := formData{
		Base: viewdata.NewBase(r, "New post", "/"),
		Form: postForm{Text: in.Text, Group: in.Group},
	}

	if err != nil {
		if errors.Is(err, errTooLarge) {
			data.Form.Errors = map[string]string{"image": blog.MsgImageTooLarge}
			viewdata.OK(w, r, data)
			return
		}
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/create/")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create post")
	defer cancel()

	if _, err := h.Service.CreatePost(ctx, id, in); err != nil {
		if fields := blog.FieldErrors(err); fields != nil {
			data.Form.Errors = fields
			viewdata.OK(w, r, data)
			return
		}
		h.fail(w, r, "create post failed", err)
		return
	}

	http.Redirect(w, r, blog.ProfileURL(id.Username), http.StatusFound)
}
