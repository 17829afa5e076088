package blog

import (
	"net/url"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileURL is the author feed of username.
func ProfileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

// GroupURL is the feed of the group with slug.
func GroupURL(slug string) string {
	return "/group/" + url.PathEscape(slug) + "/"
}

// PostURL is the detail page of a post.
func PostURL(id primitive.ObjectID) string {
	return "/posts/" + id.Hex() + "/"
}

// EditPostURL is the edit form of a post.
func EditPostURL(id primitive.ObjectID) string {
	return "/posts/" + id.Hex() + "/edit/"
}
