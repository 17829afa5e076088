// internal/app/features/posts/detail.go
package posts

import (
	"net/http"

	uierrors "github.com/dalemusser/inkwell/internal/app/features/errors"
	"github.com/dalemusser/inkwell/internal/app/blog"
	"github.com/dalemusser/inkwell/internal/app/policy/postpolicy"
	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"github.com/dalemusser/inkwell/internal/app/system/authz"
	"github.com/dalemusser/inkwell/internal/app/system/htmlsanitize"
	"github.com/dalemusser/inkwell/internal/app/system/limits"
	"github.com/dalemusser/inkwell/internal/app/system/timeouts"
	"github.com/dalemusser/inkwell/internal/app/system/viewdata"
)

// titleLen is how much of the post text goes into the page title.
const titleLen = 30

func (h *Handler) renderDetail(w http.ResponseWriter, r *http.Request, d blog.Detail, form commentForm) {
	viewer, _ := authz.CurrentIdentity(r)
	viewdata.OK(w, r, detailData{
		Base:        viewdata.NewBase(r, "Post "+htmlsanitize.Excerpt(d.Entry.Text, titleLen), "/"),
		Detail:      d,
		CanEdit:     postpolicy.CanEdit(viewer, d.Entry.Post),
		CommentForm: form,
	})
}

// ServeDetail handles GET /posts/{id}/.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	pid, ok := postID(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Post not found.", "/")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "post detail")
	defer cancel()

	d, err := h.Query.PostDetail(ctx, pid)
	if err != nil {
		h.fail(w, r, "load post detail failed", err)
		return
	}
	h.renderDetail(w, r, d, commentForm{})
}

// HandleComment handles POST /posts/{id}/comment/. An invalid comment
// re-renders the detail page with the form errors.
func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
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

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxCommentFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", blog.PostURL(pid))
		return
	}
	text := r.PostFormValue("text")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "add comment")
	defer cancel()

	_, err = h.Service.CreateComment(ctx, id, pid, text)
	if err == nil {
		http.Redirect(w, r, blog.PostURL(pid), http.StatusFound)
		return
	}

	fields := blog.FieldErrors(err)
	if fields == nil {
		h.fail(w, r, "add comment failed", err)
		return
	}

	d, err := h.Query.PostDetail(ctx, pid)
	if err != nil {
		h.fail(w, r, "load post detail failed", err)
		return
	}
	h.renderDetail(w, r, d, commentForm{Text: text, Errors: fields})
}
