// internal/app/store/mongostore/store.go
package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/inkwell/internal/app/store"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	UsersCollection    = "users"
	GroupsCollection   = "groups"
	PostsCollection    = "posts"
	CommentsCollection = "comments"
	FollowsCollection  = "follows"
)

// Store implements store.Store on MongoDB.
type Store struct {
	db       *mongo.Database
	users    *mongo.Collection
	groups   *mongo.Collection
	posts    *mongo.Collection
	comments *mongo.Collection
	follows  *mongo.Collection
}

var _ store.Store = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{
		db:       db,
		users:    db.Collection(UsersCollection),
		groups:   db.Collection(GroupsCollection),
		posts:    db.Collection(PostsCollection),
		comments: db.Collection(CommentsCollection),
		follows:  db.Collection(FollowsCollection),
	}
}

// Database returns the underlying database.
func (s *Store) Database() *mongo.Database { return s.db }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// Close disconnects the client that owns the database.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case wafflemongo.IsDup(err):
		return store.ErrDuplicate
	default:
		return err
	}
}

// now returns the current UTC time at BSON date precision.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func ensureID(id primitive.ObjectID) primitive.ObjectID {
	if id.IsZero() {
		return primitive.NewObjectID()
	}
	return id
}
