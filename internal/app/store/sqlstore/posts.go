// internal/app/store/sqlstore/posts.go
package sqlstore

import (
	"context"

	"github.com/dalemusser/inkwell/internal/app/store"
	"github.com/dalemusser/inkwell/internal/app/system/paging"
	"github.com/dalemusser/inkwell/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

func (s *Store) CreatePost(ctx context.Context, p models.Post) (models.Post, error) {
	p.ID = ensureID(p.ID)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	p.UpdatedAt = p.CreatedAt

	rec := toPostRecord(p)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return models.Post{}, translate(err)
	}
	return p, nil
}

func (s *Store) PostByID(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	var rec postRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id.Hex()).First(&rec).Error; err != nil {
		return models.Post{}, translate(err)
	}
	return fromPostRecord(rec)
}

func (s *Store) UpdatePost(ctx context.Context, p models.Post) error {
	res := s.db.WithContext(ctx).Model(&postRecord{}).
		Where("id = ?", p.ID.Hex()).
		Updates(map[string]any{
			"text":       p.Text,
			"group_id":   optionalHex(p.GroupID),
			"image":      p.Image,
			"updated_at": p.UpdatedAt,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListPosts(filter store.PostFilter) paging.Sequence[models.Post] {
	return postSeq{db: s.db, filter: filter}
}

// postSeq is a lazy view over the posts table. Each call re-queries.
type postSeq struct {
	db     *gorm.DB
	filter store.PostFilter
}

func (q postSeq) scope(ctx context.Context) *gorm.DB {
	tx := q.db.WithContext(ctx).Model(&postRecord{})
	if q.filter.GroupID != nil {
		tx = tx.Where("group_id = ?", q.filter.GroupID.Hex())
	}
	if q.filter.AuthorID != nil {
		tx = tx.Where("author_id = ?", q.filter.AuthorID.Hex())
	}
	if q.filter.AuthorIDs != nil {
		if len(q.filter.AuthorIDs) == 0 {
			tx = tx.Where("1 = 0")
		} else {
			tx = tx.Where("author_id IN ?", hexes(q.filter.AuthorIDs))
		}
	}
	return tx
}

func (q postSeq) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := q.scope(ctx).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (q postSeq) Slice(ctx context.Context, offset, limit int64) ([]models.Post, error) {
	var recs []postRecord
	err := q.scope(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.Post, 0, len(recs))
	for _, rec := range recs {
		p, err := fromPostRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
