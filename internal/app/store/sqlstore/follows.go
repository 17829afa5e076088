// internal/app/store/sqlstore/follows.go
package sqlstore

import (
	"context"

	"github.com/dalemusser/inkwell/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm/clause"
)

// CreateFollow inserts with ON CONFLICT DO NOTHING against the unique
// (user_id, author_id) index, so repeated or concurrent follows leave one row.
func (s *Store) CreateFollow(ctx context.Context, f models.Follow) (bool, error) {
	f.ID = ensureID(f.ID)
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now()
	}
	rec := followRecord{
		ID:        f.ID.Hex(),
		UserID:    f.UserID.Hex(),
		AuthorID:  f.AuthorID.Hex(),
		CreatedAt: f.CreatedAt,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) DeleteFollow(ctx context.Context, userID, authorID primitive.ObjectID) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID.Hex(), authorID.Hex()).
		Delete(&followRecord{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) IsFollowing(ctx context.Context, userID, authorID primitive.ObjectID) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&followRecord{}).
		Where("user_id = ? AND author_id = ?", userID.Hex(), authorID.Hex()).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) FollowedAuthorIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var authorHexes []string
	err := s.db.WithContext(ctx).Model(&followRecord{}).
		Where("user_id = ?", userID.Hex()).
		Pluck("author_id", &authorHexes).Error
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(authorHexes))
	for _, h := range authorHexes {
		id, err := parseID(h)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
