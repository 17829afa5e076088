package blog

import "go.mongodb.org/mongo-driver/bson/primitive"

// Identity is the acting user of a request. The zero value is anonymous.
type Identity struct {
	UserID   primitive.ObjectID
	Username string
}

// Anonymous is the identity of a request without a session user.
var Anonymous = Identity{}

func (id Identity) IsAuthenticated() bool {
	return !id.UserID.IsZero()
}
