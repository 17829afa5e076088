// internal/app/store/sqlstore/records.go
package sqlstore

import (
	"fmt"
	"time"

	"github.com/dalemusser/inkwell/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDs are stored as 24-char ObjectID hex strings so both backends share one
// identifier type. Hex order matches ObjectID byte order, so "id DESC" is a
// valid insertion-order tiebreak.

type userRecord struct {
	ID           string `gorm:"primaryKey;size:24"`
	Username     string `gorm:"size:150;not null"`
	UsernameCI   string `gorm:"size:150;not null;uniqueIndex:uniq_users_usernameci"`
	FullName     string
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false"`
}

func (userRecord) TableName() string { return "users" }

type groupRecord struct {
	ID          string    `gorm:"primaryKey;size:24"`
	Title       string    `gorm:"size:200;not null"`
	Slug        string    `gorm:"size:100;not null;uniqueIndex:uniq_groups_slug"`
	Description string    `gorm:"not null;default:''"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
}

func (groupRecord) TableName() string { return "groups" }

type postRecord struct {
	ID        string    `gorm:"primaryKey;size:24"`
	Text      string    `gorm:"not null"`
	AuthorID  *string   `gorm:"size:24;index:idx_posts_author_created,priority:1"`
	GroupID   *string   `gorm:"size:24;index:idx_posts_group_created,priority:1"`
	Image     string    `gorm:"not null;default:''"`
	CreatedAt time.Time `gorm:"autoCreateTime:false;index:idx_posts_created;index:idx_posts_author_created,priority:2;index:idx_posts_group_created,priority:2"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (postRecord) TableName() string { return "posts" }

type commentRecord struct {
	ID        string    `gorm:"primaryKey;size:24"`
	PostID    string    `gorm:"size:24;not null;index:idx_comments_post_created,priority:1"`
	AuthorID  string    `gorm:"size:24;not null"`
	Text      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime:false;index:idx_comments_post_created,priority:2"`
}

func (commentRecord) TableName() string { return "comments" }

type followRecord struct {
	ID        string    `gorm:"primaryKey;size:24"`
	UserID    string    `gorm:"size:24;not null;uniqueIndex:uniq_follows_user_author,priority:1"`
	AuthorID  string    `gorm:"size:24;not null;uniqueIndex:uniq_follows_user_author,priority:2;index:idx_follows_author"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
}

func (followRecord) TableName() string { return "follows" }

// allRecords lists every table for AutoMigrate.
var allRecords = []any{
	&userRecord{},
	&groupRecord{},
	&postRecord{},
	&commentRecord{},
	&followRecord{},
}

/* -------------------------------------------------------------------------- */
/* conversions                                                                */
/* -------------------------------------------------------------------------- */

func parseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("sqlstore: corrupt id %q: %w", hex, err)
	}
	return id, nil
}

func optionalHex(id *primitive.ObjectID) *string {
	if id == nil {
		return nil
	}
	s := id.Hex()
	return &s
}

func optionalID(hex *string) (*primitive.ObjectID, error) {
	if hex == nil || *hex == "" {
		return nil, nil
	}
	id, err := parseID(*hex)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

func fromUserRecord(r userRecord) (models.User, error) {
	id, err := parseID(r.ID)
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		ID:           id,
		Username:     r.Username,
		UsernameCI:   r.UsernameCI,
		FullName:     r.FullName,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}, nil
}

func fromGroupRecord(r groupRecord) (models.Group, error) {
	id, err := parseID(r.ID)
	if err != nil {
		return models.Group{}, err
	}
	return models.Group{
		ID:          id,
		Title:       r.Title,
		Slug:        r.Slug,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.UTC(),
	}, nil
}

func toPostRecord(p models.Post) postRecord {
	return postRecord{
		ID:        p.ID.Hex(),
		Text:      p.Text,
		AuthorID:  optionalHex(p.AuthorID),
		GroupID:   optionalHex(p.GroupID),
		Image:     p.Image,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func fromPostRecord(r postRecord) (models.Post, error) {
	id, err := parseID(r.ID)
	if err != nil {
		return models.Post{}, err
	}
	author, err := optionalID(r.AuthorID)
	if err != nil {
		return models.Post{}, err
	}
	group, err := optionalID(r.GroupID)
	if err != nil {
		return models.Post{}, err
	}
	return models.Post{
		ID:        id,
		Text:      r.Text,
		AuthorID:  author,
		GroupID:   group,
		Image:     r.Image,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}, nil
}

func fromCommentRecord(r commentRecord) (models.Comment, error) {
	id, err := parseID(r.ID)
	if err != nil {
		return models.Comment{}, err
	}
	postID, err := parseID(r.PostID)
	if err != nil {
		return models.Comment{}, err
	}
	authorID, err := parseID(r.AuthorID)
	if err != nil {
		return models.Comment{}, err
	}
	return models.Comment{
		ID:        id,
		PostID:    postID,
		AuthorID:  authorID,
		Text:      r.Text,
		CreatedAt: r.CreatedAt.UTC(),
	}, nil
}
