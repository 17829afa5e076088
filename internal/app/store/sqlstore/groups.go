// internal/app/store/sqlstore/groups.go
package sqlstore

import (
	"context"

	"github.com/dalemusser/inkwell/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Store) CreateGroup(ctx context.Context, g models.Group) (models.Group, error) {
	g.ID = ensureID(g.ID)
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now()
	}
	rec := groupRecord{
		ID:          g.ID.Hex(),
		Title:       g.Title,
		Slug:        g.Slug,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return models.Group{}, translate(err)
	}
	return g, nil
}

func (s *Store) GroupByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var rec groupRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id.Hex()).First(&rec).Error; err != nil {
		return models.Group{}, translate(err)
	}
	return fromGroupRecord(rec)
}

func (s *Store) GroupBySlug(ctx context.Context, slug string) (models.Group, error) {
	var rec groupRecord
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&rec).Error; err != nil {
		return models.Group{}, translate(err)
	}
	return fromGroupRecord(rec)
}

func (s *Store) GroupsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Group, error) {
	out := make(map[primitive.ObjectID]models.Group, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var recs []groupRecord
	if err := s.db.WithContext(ctx).Where("id IN ?", hexes(ids)).Find(&recs).Error; err != nil {
		return nil, err
	}
	for _, rec := range recs {
		g, err := fromGroupRecord(rec)
		if err != nil {
			return nil, err
		}
		out[g.ID] = g
	}
	return out, nil
}
