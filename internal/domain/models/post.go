// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPostText pre-fills the text field of a blank post form.
const DefaultPostText = "Your text"

// Post is a single entry in the feeds.
//
// NOTE:
//   - CreatedAt is set once on creation and is the feed sort key
//     (newest first, _id as tiebreak).
//   - AuthorID and GroupID are weak references. When the referenced user or
//     group is removed the field is cleared; the post itself is kept.
//   - Image is a storage path relative to the media root ("" when absent).
type Post struct {
	ID       primitive.ObjectID  `bson:"_id" json:"id"`
	Text     string              `bson:"text" json:"text"`
	AuthorID *primitive.ObjectID `bson:"author_id" json:"author_id,omitempty"`
	GroupID  *primitive.ObjectID `bson:"group_id" json:"group_id,omitempty"`
	Image    string              `bson:"image,omitempty" json:"image,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAuthoredBy reports whether userID is the post's author.
func (p Post) IsAuthoredBy(userID primitive.ObjectID) bool {
	return p.AuthorID != nil && !userID.IsZero() && *p.AuthorID == userID
}
