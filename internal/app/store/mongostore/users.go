// internal/app/store/mongostore/users.go
package mongostore

import (
	"context"

	"github.com/dalemusser/inkwell/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	u.ID = ensureID(u.ID)
	u.UsernameCI = text.Fold(u.Username)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now()
	}
	u.UpdatedAt = u.CreatedAt
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		return models.User{}, translate(err)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, translate(err)
	}
	return u, nil
}

// UserByUsername matches case- and diacritic-insensitively.
func (s *Store) UserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"username_ci": text.Fold(username)}).Decode(&u); err != nil {
		return models.User{}, translate(err)
	}
	return u, nil
}

func (s *Store) UsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
