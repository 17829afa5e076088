// Package store defines the persistence contract shared by the Mongo and
// SQL backends.
//
// Posts are always read through a paging.Sequence ordered newest first
// (created_at descending, _id descending as tiebreak). Backends translate
// their native "not found" and duplicate-key errors to ErrNotFound and
// ErrDuplicate.
package store

import (
	"context"
	"errors"

	"github.com/dalemusser/inkwell/internal/app/system/paging"
	"github.com/dalemusser/inkwell/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when a lookup matches nothing.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("store: duplicate key")
)

// PostFilter narrows a post sequence. Zero value matches every post.
type PostFilter struct {
	GroupID  *primitive.ObjectID
	AuthorID *primitive.ObjectID
	// AuthorIDs restricts to posts by any of these authors when non-nil.
	// A non-nil empty slice matches nothing.
	AuthorIDs []primitive.ObjectID
}

// Users persists accounts.
type Users interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
}

// Groups persists communities.
type Groups interface {
	CreateGroup(ctx context.Context, g models.Group) (models.Group, error)
	GroupByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)
	GroupBySlug(ctx context.Context, slug string) (models.Group, error)
	GroupsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Group, error)
}

// Posts persists posts and exposes filtered, ordered sequences of them.
type Posts interface {
	CreatePost(ctx context.Context, p models.Post) (models.Post, error)
	PostByID(ctx context.Context, id primitive.ObjectID) (models.Post, error)
	// UpdatePost replaces text, group, image and updated_at. created_at and
	// author are never changed.
	UpdatePost(ctx context.Context, p models.Post) error
	ListPosts(filter PostFilter) paging.Sequence[models.Post]
}

// Comments persists replies to posts.
type Comments interface {
	CreateComment(ctx context.Context, c models.Comment) (models.Comment, error)
	CommentsForPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
}

// Follows persists follower edges.
type Follows interface {
	// CreateFollow inserts the edge. created is false when it already existed.
	CreateFollow(ctx context.Context, f models.Follow) (created bool, err error)
	// DeleteFollow removes the edge. deleted is false when there was none.
	DeleteFollow(ctx context.Context, userID, authorID primitive.ObjectID) (deleted bool, err error)
	IsFollowing(ctx context.Context, userID, authorID primitive.ObjectID) (bool, error)
	FollowedAuthorIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// Store is the full persistence surface.
type Store interface {
	Users
	Groups
	Posts
	Comments
	Follows

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
