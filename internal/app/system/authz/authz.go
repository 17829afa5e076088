// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/inkwell/internal/app/blog"
	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's username, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", NilObjectID, false. This ensures callers can trust that ok=true means a
// valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (username string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil || userID.IsZero() {
		// Malformed user ID in session - fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Username, userID, true
}

// CurrentIdentity returns the acting identity of the request, or
// blog.Anonymous and false when nobody is signed in.
func CurrentIdentity(r *http.Request) (blog.Identity, bool) {
	username, uid, ok := UserCtx(r)
	if !ok {
		return blog.Anonymous, false
	}
	return blog.Identity{UserID: uid, Username: username}, true
}

// RequireIdentity is CurrentIdentity for operations that need a signed-in
// user. It returns blog.ErrUnauthorized for anonymous requests.
func RequireIdentity(r *http.Request) (blog.Identity, error) {
	id, ok := CurrentIdentity(r)
	if !ok {
		return blog.Anonymous, blog.ErrUnauthorized
	}
	return id, nil
}
