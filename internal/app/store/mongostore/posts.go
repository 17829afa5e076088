// internal/app/store/mongostore/posts.go
package mongostore

import (
	"context"

	"github.com/dalemusser/inkwell/internal/app/store"
	"github.com/dalemusser/inkwell/internal/app/system/paging"
	"github.com/dalemusser/inkwell/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreatePost(ctx context.Context, p models.Post) (models.Post, error) {
	p.ID = ensureID(p.ID)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	p.UpdatedAt = p.CreatedAt
	if _, err := s.posts.InsertOne(ctx, p); err != nil {
		return models.Post{}, translate(err)
	}
	return p, nil
}

func (s *Store) PostByID(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	var p models.Post
	if err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Post{}, translate(err)
	}
	return p, nil
}

func (s *Store) UpdatePost(ctx context.Context, p models.Post) error {
	set := bson.M{
		"text":       p.Text,
		"group_id":   p.GroupID,
		"image":      p.Image,
		"updated_at": p.UpdatedAt,
	}
	res, err := s.posts.UpdateByID(ctx, p.ID, bson.M{"$set": set})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListPosts(filter store.PostFilter) paging.Sequence[models.Post] {
	return postSeq{c: s.posts, filter: postFilter(filter)}
}

// postSeq is a lazy view over the posts collection. Each call re-queries.
type postSeq struct {
	c      *mongo.Collection
	filter bson.M
}

func (q postSeq) Count(ctx context.Context) (int64, error) {
	return q.c.CountDocuments(ctx, q.filter)
}

func (q postSeq) Slice(ctx context.Context, offset, limit int64) ([]models.Post, error) {
	find := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)

	cur, err := q.c.Find(ctx, q.filter, find)
	if err != nil {
		return nil, err
	}
	out := []models.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func postFilter(f store.PostFilter) bson.M {
	var conds []bson.M
	if f.GroupID != nil {
		conds = append(conds, bson.M{"group_id": *f.GroupID})
	}
	if f.AuthorID != nil {
		conds = append(conds, bson.M{"author_id": *f.AuthorID})
	}
	if f.AuthorIDs != nil {
		ids := f.AuthorIDs
		if len(ids) == 0 {
			ids = []primitive.ObjectID{}
		}
		conds = append(conds, bson.M{"author_id": bson.M{"$in": ids}})
	}

	switch len(conds) {
	case 0:
		return bson.M{}
	case 1:
		return conds[0]
	default:
		return bson.M{"$and": conds}
	}
}
