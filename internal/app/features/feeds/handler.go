// internal/app/features/feeds/handler.go
package feeds

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/inkwell/internal/app/features/errors"
	"github.com/dalemusser/inkwell/internal/app/blog"
	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"github.com/dalemusser/inkwell/internal/app/system/authz"
	"github.com/dalemusser/inkwell/internal/app/system/paging"
	"github.com/dalemusser/inkwell/internal/app/system/timeouts"
	"github.com/dalemusser/inkwell/internal/app/system/viewdata"
	"github.com/dalemusser/inkwell/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the global, group and follow feeds.
type Handler struct {
	Query  *blog.Query
	Index  *blog.IndexCache
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(q *blog.Query, index *blog.IndexCache, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Query: q, Index: index, ErrLog: errLog, Log: logger}
}

type feedData struct {
	viewdata.Base
	Group *models.Group           `json:"group,omitempty"`
	Page  paging.Page[blog.Entry] `json:"page"`
}

// ServeIndex handles GET /. Pages come from the index cache and may be up
// to one TTL old.
func (h *Handler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.Index.GetCachedIndexPage(ctx, paging.ParsePage(r))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load index page failed", err, "A database error occurred.", "/")
		return
	}

	viewdata.OK(w, r, feedData{
		Base: viewdata.NewBase(r, "Latest posts", ""),
		Page: page,
	})
}

// ServeGroup handles GET /group/{slug}/.
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	group, seq, err := h.Query.ListByGroup(ctx, chi.URLParam(r, "slug"))
	if errors.Is(err, blog.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "Group not found.", "/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load group failed", err, "A database error occurred.", "/")
		return
	}

	page, err := h.Query.Page(ctx, seq, paging.ParsePage(r))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load group page failed", err, "A database error occurred.", "/")
		return
	}

	viewdata.OK(w, r, feedData{
		Base:  viewdata.NewBase(r, "Posts in "+group.Title, "/"),
		Group: &group,
		Page:  page,
	})
}

// ServeFollowFeed handles GET /follow/.
func (h *Handler) ServeFollowFeed(w http.ResponseWriter, r *http.Request) {
	id, err := authz.RequireIdentity(r)
	if err != nil {
		auth.RedirectToLogin(w, r)
		return
	}

	seq, err := h.Query.ListFollowedFeed(id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "build follow feed failed", err, "A database error occurred.", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.Query.Page(ctx, seq, paging.ParsePage(r))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load follow page failed", err, "A database error occurred.", "/")
		return
	}

	viewdata.OK(w, r, feedData{
		Base: viewdata.NewBase(r, "Following", "/"),
		Page: page,
	})
}
