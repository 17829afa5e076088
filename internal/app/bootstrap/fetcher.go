// internal/app/bootstrap/fetcher.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/inkwell/internal/app/store"
	"github.com/dalemusser/inkwell/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// userFetcher reloads session users from the store on every request.
type userFetcher struct {
	st store.Store
}

func (f userFetcher) FetchSessionUser(ctx context.Context, userID string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, auth.ErrUserGone
	}
	u, err := f.st.UserByID(ctx, oid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, auth.ErrUserGone
	}
	if err != nil {
		return nil, err
	}
	return &auth.SessionUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Name:     u.DisplayName(),
	}, nil
}
