// internal/app/features/posts/handler.go
package posts

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/inkwell/internal/app/features/errors"
	"github.com/dalemusser/inkwell/internal/app/blog"
	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"github.com/dalemusser/inkwell/internal/app/system/viewdata"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes bounds a post form (text plus image) when no limit
// is configured.
const DefaultMaxUploadBytes = 5 << 20

// Handler serves post detail, creation, editing and comments.
type Handler struct {
	Query          *blog.Query
	Service        *blog.Service
	ErrLog         *uierrors.ErrorLogger
	Log            *zap.Logger
	MaxUploadBytes int64
}

func NewHandler(q *blog.Query, svc *blog.Service, maxUploadBytes int64, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		Query:          q,
		Service:        svc,
		ErrLog:         errLog,
		Log:            logger,
		MaxUploadBytes: maxUploadBytes,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| View data                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type postForm struct {
	Text  string `json:"text"`
	Group string `json:"group"`
	// Image is the current image path on edit.
	Image  string            `json:"image,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

type formData struct {
	viewdata.Base
	IsEdit bool        `json:"is_edit"`
	Post   *blog.Entry `json:"post,omitempty"`
	Form   postForm    `json:"form"`
}

type commentForm struct {
	Text   string            `json:"text"`
	Errors map[string]string `json:"errors,omitempty"`
}

type detailData struct {
	viewdata.Base
	blog.Detail
	CanEdit     bool        `json:"can_edit"`
	CommentForm commentForm `json:"comment_form"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// postID parses the {id} URL parameter. A malformed id is reported as not
// found.
func postID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// fail renders err the way every post route reports blog errors.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, blog.ErrNotFound):
		uierrors.RenderNotFound(w, r, "Post not found.", "/")
	case errors.Is(err, blog.ErrUnauthorized):
		auth.RedirectToLogin(w, r)
	default:
		h.ErrLog.LogServerError(w, r, msg, err, "A database error occurred.", "/")
	}
}

func groupHex(id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}
