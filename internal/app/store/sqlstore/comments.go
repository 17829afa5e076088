// internal/app/store/sqlstore/comments.go
package sqlstore

import (
	"context"

	"github.com/dalemusser/inkwell/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Store) CreateComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	c.ID = ensureID(c.ID)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now()
	}
	rec := commentRecord{
		ID:        c.ID.Hex(),
		PostID:    c.PostID.Hex(),
		AuthorID:  c.AuthorID.Hex(),
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return models.Comment{}, translate(err)
	}
	return c, nil
}

// CommentsForPost lists a post's comments newest first.
func (s *Store) CommentsForPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	var recs []commentRecord
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID.Hex()).
		Order("created_at DESC").
		Order("id DESC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.Comment, 0, len(recs))
	for _, rec := range recs {
		c, err := fromCommentRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
