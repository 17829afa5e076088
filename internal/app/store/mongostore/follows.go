// internal/app/store/mongostore/follows.go
package mongostore

import (
	"context"
	"errors"

	"github.com/dalemusser/inkwell/internal/app/store"
	"github.com/dalemusser/inkwell/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateFollow relies on the unique (user_id, author_id) index, so two
// concurrent follows of the same author still leave a single edge.
func (s *Store) CreateFollow(ctx context.Context, f models.Follow) (bool, error) {
	f.ID = ensureID(f.ID)
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now()
	}
	if _, err := s.follows.InsertOne(ctx, f); err != nil {
		err = translate(err)
		if errors.Is(err, store.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) DeleteFollow(ctx context.Context, userID, authorID primitive.ObjectID) (bool, error) {
	res, err := s.follows.DeleteOne(ctx, bson.M{"user_id": userID, "author_id": authorID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) IsFollowing(ctx context.Context, userID, authorID primitive.ObjectID) (bool, error) {
	n, err := s.follows.CountDocuments(ctx,
		bson.M{"user_id": userID, "author_id": authorID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) FollowedAuthorIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	find := options.Find().SetProjection(bson.M{"author_id": 1})
	cur, err := s.follows.Find(ctx, bson.M{"user_id": userID}, find)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		AuthorID primitive.ObjectID `bson:"author_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.AuthorID)
	}
	return ids, nil
}
