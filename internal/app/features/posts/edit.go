// internal/app/features/posts/edit.go
package posts

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/inkwell/internal/app/features/errors"
	"github.com/dalemusser/inkwell/internal/app/blog"
	"github.com/dalemusser/inkwell/internal/app/policy/postpolicy"
	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"github.com/dalemusser/inkwell/internal/app/system/authz"
	"github.com/dalemusser/inkwell/internal/app/system/timeouts"
	"github.com/dalemusser/inkwell/internal/app/system/viewdata"
)

func editData(r *http.Request, e blog.Entry) formData {
	return formData{
		Base:   viewdata.NewBase(r, "Edit post", blog.PostURL(e.ID)),
		IsEdit: true,
		Post:   &e,
		Form: postForm{
			Text:  e.Text,
			Group: groupHex(e.GroupID),
			Image: e.Image,
		},
	}
}

// ServeEdit handles GET /posts/{id}/edit/. Anyone but the author is sent
// back to the post.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id, err := authz.RequireIdentity(r)
	if err != nil {
		auth.RedirectToLogin(w, r)
		return
	}
	pid, ok := postID(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Post not found.", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Query.Post(ctx, pid)
	if err != nil {
		h.fail(w, r, "load post failed", err)
		return
	}
	if !postpolicy.CanEdit(id, e.Post) {
		http.Redirect(w, r, blog.PostURL(pid), http.StatusFound)
		return
	}

	viewdata.OK(w, r, editData(r, e))
}

// HandleEdit handles POST /posts/{id}/edit/.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := authz.RequireIdentity(r)
	if err != nil {
		auth.RedirectToLogin(w, r)
		return
	}
	pid, ok := postID(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Post not found.", "/")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "edit post")
	defer cancel()

	current, err := h.Query.Post(ctx, pid)
	if err != nil {
		h.fail(w, r, "load post failed", err)
		return
	}
	if !postpolicy.CanEdit(id, current.Post) {
		http.Redirect(w, r, blog.PostURL(pid), http.StatusFound)
		return
	}

	in, cleanup, err := h.parsePostForm(w, r)
	defer cleanup()

	data := editData(r, current)
	data.Form.Text = in.Text
	data.Form.Group = in.Group

	if err != nil {
		if errors.Is(err, errTooLarge) {
			data.Form.Errors = map[string]string{"image": blog.MsgImageTooLarge}
			viewdata.OK(w, r, data)
			return
		}
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", blog.PostURL(pid))
		return
	}

	_, err = h.Service.EditPost(ctx, id, pid, in)
	switch {
	case err == nil:
		http.Redirect(w, r, blog.PostURL(pid), http.StatusFound)
	case errors.Is(err, blog.ErrForbidden):
		http.Redirect(w, r, blog.PostURL(pid), http.StatusFound)
	case blog.FieldErrors(err) != nil:
		data.Form.Errors = blog.FieldErrors(err)
		viewdata.OK(w, r, data)
	default:
		h.fail(w, r, "edit post failed", err)
	}
}
