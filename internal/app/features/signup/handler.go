// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/inkwell/internal/app/features/errors"
	"github.com/dalemusser/inkwell/internal/app/blog"
	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"github.com/dalemusser/inkwell/internal/app/system/limits"
	"github.com/dalemusser/inkwell/internal/app/system/timeouts"
	"github.com/dalemusser/inkwell/internal/app/system/viewdata"
	"go.uber.org/zap"
)

type Handler struct {
	Service    *blog.Service
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(svc *blog.Service, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Service:    svc,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Log:        logger,
	}
}

// signupFormData never echoes passwords back.
type signupFormData struct {
	viewdata.Base
	Username string            `json:"username"`
	FullName string            `json:"full_name"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// ServeSignup handles GET /auth/signup/.
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	viewdata.OK(w, r, signupFormData{Base: viewdata.NewBase(r, "Sign up", "/")})
}

// HandleSignup handles POST /auth/signup/. A new account is signed in
// straight away.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxAuthFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/auth/signup/")
		return
	}

	in := blog.SignupInput{
		Username: r.PostFormValue("username"),
		FullName: r.PostFormValue("full_name"),
		Password: r.PostFormValue("password1"),
		Confirm:  r.PostFormValue("password2"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Service.Register(ctx, in)
	if err != nil {
		if fields := blog.FieldErrors(err); fields != nil {
			viewdata.OK(w, r, signupFormData{
				Base:     viewdata.NewBase(r, "Sign up", "/"),
				Username: in.Username,
				FullName: in.FullName,
				Errors:   fields,
			})
			return
		}
		h.ErrLog.LogServerError(w, r, "register failed", err, "A server error occurred.", "/auth/signup/")
		return
	}

	err = h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Name:     u.DisplayName(),
	})
	if err != nil {
		// The account exists; the user can still log in by hand.
		h.Log.Error("save session failed", zap.Error(err), zap.String("username", u.Username))
		http.Redirect(w, r, auth.LoginPath, http.StatusFound)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}
