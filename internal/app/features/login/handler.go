// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/inkwell/internal/app/features/errors"
	"github.com/dalemusser/inkwell/internal/app/blog"
	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"github.com/dalemusser/inkwell/internal/app/system/limits"
	"github.com/dalemusser/inkwell/internal/app/system/navigation"
	"github.com/dalemusser/inkwell/internal/app/system/ratelimit"
	"github.com/dalemusser/inkwell/internal/app/system/timeouts"
	"github.com/dalemusser/inkwell/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

const (
	msgInvalidLogin  = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	msgSessionFailed = "Unable to create session. Please try again."
)

type Handler struct {
	Service    *blog.Service
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(svc *blog.Service, sessionMgr *auth.SessionManager, limiter *ratelimit.LoginLimiter, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if limiter == nil {
		limiter = ratelimit.NewLoginLimiter()
	}
	return &Handler{
		Service:    svc,
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type loginFormData struct {
	viewdata.Base
	Username string `json:"username"`
	Next     string `json:"next,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, username, next, msg string) {
	viewdata.OK(w, r, loginFormData{
		Base:     viewdata.NewBase(r, "Log in", "/"),
		Username: username,
		Next:     next,
		Error:    msg,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/login/                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "", query.Get(r, "next"), "")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/login/                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxAuthFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", auth.LoginPath)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	next := r.PostFormValue("next")
	if next == "" {
		next = query.Get(r, "next")
	}

	if ok, reason := h.Limiter.Check(r, username); !ok {
		h.Log.Warn("login rate limited",
			zap.String("ip", ratelimit.ClientIP(r)),
			zap.String("username", username))
		h.renderForm(w, r, username, next, reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Service.Authenticate(ctx, username, password)
	if errors.Is(err, blog.ErrInvalidCredentials) {
		h.renderForm(w, r, username, next, msgInvalidLogin)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "authenticate failed", err, "A server error occurred.", auth.LoginPath)
		return
	}

	err = h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Name:     u.DisplayName(),
	})
	if err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("username", u.Username))
		h.renderForm(w, r, username, next, msgSessionFailed)
		return
	}

	h.Limiter.ResetUser(username)
	h.Log.Info("user logged in", zap.String("username", u.Username))

	dest := navigation.SafeLocal(next, "/")
	http.Redirect(w, r, dest, http.StatusFound)
}
