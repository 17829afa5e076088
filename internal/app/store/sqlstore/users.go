// internal/app/store/sqlstore/users.go
package sqlstore

import (
	"context"

	"github.com/dalemusser/inkwell/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	u.ID = ensureID(u.ID)
	u.UsernameCI = text.Fold(u.Username)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now()
	}
	u.UpdatedAt = u.CreatedAt

	rec := userRecord{
		ID:           u.ID.Hex(),
		Username:     u.Username,
		UsernameCI:   u.UsernameCI,
		FullName:     u.FullName,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return models.User{}, translate(err)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var rec userRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id.Hex()).First(&rec).Error; err != nil {
		return models.User{}, translate(err)
	}
	return fromUserRecord(rec)
}

// UserByUsername matches case- and diacritic-insensitively.
func (s *Store) UserByUsername(ctx context.Context, username string) (models.User, error) {
	var rec userRecord
	if err := s.db.WithContext(ctx).Where("username_ci = ?", text.Fold(username)).First(&rec).Error; err != nil {
		return models.User{}, translate(err)
	}
	return fromUserRecord(rec)
}

func (s *Store) UsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var recs []userRecord
	if err := s.db.WithContext(ctx).Where("id IN ?", hexes(ids)).Find(&recs).Error; err != nil {
		return nil, err
	}
	for _, rec := range recs {
		u, err := fromUserRecord(rec)
		if err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, nil
}
