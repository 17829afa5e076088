// internal/app/features/userinfo/handler.go
package userinfo

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/inkwell/internal/app/system/auth"
)

// Handler serves the identity of the current session.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

type userInfo struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	Username        string `json:"username"`
	Name            string `json:"name"`
}

// ServeUserInfo returns JSON with the current user's authentication status and identity.
//
// Response format:
//
//	{ "is_authenticated": bool, "username": "...", "name": "..." }
//
// Anonymous sessions get 200 with is_authenticated false and empty strings.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	var info userInfo
	if user, ok := auth.CurrentUser(r); ok {
		info = userInfo{
			IsAuthenticated: true,
			Username:        user.Username,
			Name:            user.Name,
		}
	}
	_ = json.NewEncoder(w).Encode(info)
}
