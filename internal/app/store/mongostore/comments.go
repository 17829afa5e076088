// internal/app/store/mongostore/comments.go
package mongostore

import (
	"context"

	"github.com/dalemusser/inkwell/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	c.ID = ensureID(c.ID)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now()
	}
	if _, err := s.comments.InsertOne(ctx, c); err != nil {
		return models.Comment{}, translate(err)
	}
	return c, nil
}

// CommentsForPost lists a post's comments newest first.
func (s *Store) CommentsForPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	find := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.comments.Find(ctx, bson.M{"post_id": postID}, find)
	if err != nil {
		return nil, err
	}
	out := []models.Comment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
