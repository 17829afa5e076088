// internal/app/features/profiles/handler.go
package profiles

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/inkwell/internal/app/features/errors"
	"github.com/dalemusser/inkwell/internal/app/blog"
	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"github.com/dalemusser/inkwell/internal/app/system/authz"
	"github.com/dalemusser/inkwell/internal/app/system/navigation"
	"github.com/dalemusser/inkwell/internal/app/system/paging"
	"github.com/dalemusser/inkwell/internal/app/system/timeouts"
	"github.com/dalemusser/inkwell/internal/app/system/viewdata"
	"github.com/dalemusser/inkwell/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves author pages and the follow/unfollow actions.
type Handler struct {
	Query   *blog.Query
	Service *blog.Service
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(q *blog.Query, svc *blog.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Query: q, Service: svc, ErrLog: errLog, Log: logger}
}

type profileData struct {
	viewdata.Base
	Author    models.User             `json:"author"`
	PostCount int64                   `json:"post_count"`
	Following bool                    `json:"following"`
	IsSelf    bool                    `json:"is_self"`
	Page      paging.Page[blog.Entry] `json:"page"`
}

// ServeProfile handles GET /profile/{username}/.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	author, seq, err := h.Query.ListByAuthor(ctx, chi.URLParam(r, "username"))
	if errors.Is(err, blog.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "User not found.", "/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load author failed", err, "A database error occurred.", "/")
		return
	}

	page, err := h.Query.Page(ctx, seq, paging.ParsePage(r))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load author page failed", err, "A database error occurred.", "/")
		return
	}

	data := profileData{
		Base:      viewdata.NewBase(r, "Profile of "+author.DisplayName(), "/"),
		Author:    author,
		PostCount: page.TotalCount,
		Page:      page,
	}

	if viewer, ok := authz.CurrentIdentity(r); ok {
		data.IsSelf = viewer.UserID == author.ID
		data.Following, err = h.Query.IsFollowing(ctx, viewer, author.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "load follow state failed", err, "A database error occurred.", "/")
			return
		}
	}

	viewdata.OK(w, r, data)
}

// HandleFollow handles GET /profile/{username}/follow/. Following yourself
// does nothing and sends you back where you came from.
func (h *Handler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	id, err := authz.RequireIdentity(r)
	if err != nil {
		auth.RedirectToLogin(w, r)
		return
	}
	username := chi.URLParam(r, "username")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Service.Follow(ctx, id, username)
	switch {
	case errors.Is(err, blog.ErrSelfFollow):
		http.Redirect(w, r, navigation.SafeBackURL(r, navigation.FollowBackURL(blog.ProfileURL(id.Username))), http.StatusFound)
	case err != nil:
		h.fail(w, r, "follow failed", err)
	default:
		http.Redirect(w, r, blog.ProfileURL(username), http.StatusFound)
	}
}

// HandleUnfollow handles GET /profile/{username}/unfollow/. Unfollowing
// someone you do not follow is a 404.
func (h *Handler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	id, err := authz.RequireIdentity(r)
	if err != nil {
		auth.RedirectToLogin(w, r)
		return
	}
	username := chi.URLParam(r, "username")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Service.Unfollow(ctx, id, username); err != nil {
		h.fail(w, r, "unfollow failed", err)
		return
	}

	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.FollowBackURL(blog.ProfileURL(username))), http.StatusFound)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, blog.ErrNotFound):
		uierrors.RenderNotFound(w, r, "User not found.", "/")
	case errors.Is(err, blog.ErrUnauthorized):
		auth.RedirectToLogin(w, r)
	default:
		h.ErrLog.LogServerError(w, r, msg, err, "A database error occurred.", "/")
	}
}
