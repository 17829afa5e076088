// internal/app/store/mongostore/groups.go
package mongostore

import (
	"context"

	"github.com/dalemusser/inkwell/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Store) CreateGroup(ctx context.Context, g models.Group) (models.Group, error) {
	g.ID = ensureID(g.ID)
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now()
	}
	if _, err := s.groups.InsertOne(ctx, g); err != nil {
		return models.Group{}, translate(err)
	}
	return g, nil
}

func (s *Store) GroupByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.groups.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, translate(err)
	}
	return g, nil
}

func (s *Store) GroupBySlug(ctx context.Context, slug string) (models.Group, error) {
	var g models.Group
	if err := s.groups.FindOne(ctx, bson.M{"slug": slug}).Decode(&g); err != nil {
		return models.Group{}, translate(err)
	}
	return g, nil
}

func (s *Store) GroupsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Group, error) {
	out := make(map[primitive.ObjectID]models.Group, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.groups.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	for _, g := range groups {
		out[g.ID] = g
	}
	return out, nil
}
