package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/inkwell/internal/app/store"
	"github.com/dalemusser/inkwell/internal/app/system/paging"
	"github.com/dalemusser/inkwell/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entry is a post expanded with its author and group for display.
// Author and Group are nil when the reference is absent or dangling.
type Entry struct {
	models.Post
	Author *models.User  `json:"author,omitempty"`
	Group  *models.Group `json:"group,omitempty"`
}

// CommentEntry is a comment expanded with its author.
type CommentEntry struct {
	models.Comment
	Author *models.User `json:"author,omitempty"`
}

// Detail is everything the post page shows.
type Detail struct {
	Entry           Entry          `json:"post"`
	AuthorPostCount int64          `json:"author_post_count"`
	Comments        []CommentEntry `json:"comments"`
}

// Query selects which posts belong to which view. All listings are ordered
// newest first and returned as lazy sequences.
type Query struct {
	st       store.Store
	pageSize int
}

// NewQuery returns a Query paging at pageSize (paging.PageSize if <= 0).
func NewQuery(st store.Store, pageSize int) *Query {
	if pageSize <= 0 {
		pageSize = paging.PageSize
	}
	return &Query{st: st, pageSize: pageSize}
}

// PageSize is the configured number of posts per page.
func (q *Query) PageSize() int { return q.pageSize }

// ListAll returns every post.
func (q *Query) ListAll() paging.Sequence[models.Post] {
	return q.st.ListPosts(store.PostFilter{})
}

// ListByGroup returns the group with the given slug and its posts.
func (q *Query) ListByGroup(ctx context.Context, slug string) (models.Group, paging.Sequence[models.Post], error) {
	g, err := q.st.GroupBySlug(ctx, slug)
	if err != nil {
		return models.Group{}, nil, translate(err)
	}
	gid := g.ID
	return g, q.st.ListPosts(store.PostFilter{GroupID: &gid}), nil
}

// ListByAuthor returns the user with the given username and their posts.
func (q *Query) ListByAuthor(ctx context.Context, username string) (models.User, paging.Sequence[models.Post], error) {
	u, err := q.st.UserByUsername(ctx, username)
	if err != nil {
		return models.User{}, nil, translate(err)
	}
	uid := u.ID
	return u, q.st.ListPosts(store.PostFilter{AuthorID: &uid}), nil
}

// ListFollowedFeed returns posts by every author id follows. Following
// nobody yields an empty sequence.
func (q *Query) ListFollowedFeed(id Identity) (paging.Sequence[models.Post], error) {
	if !id.IsAuthenticated() {
		return nil, ErrUnauthorized
	}
	return followedSeq{st: q.st, userID: id.UserID}, nil
}

// followedSeq resolves the followed-author set on every call so it stays
// lazy and restartable like the store sequences it delegates to.
type followedSeq struct {
	st     store.Store
	userID primitive.ObjectID
}

func (s followedSeq) resolve(ctx context.Context) (paging.Sequence[models.Post], error) {
	authors, err := s.st.FollowedAuthorIDs(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	if len(authors) == 0 {
		return paging.Empty[models.Post](), nil
	}
	return s.st.ListPosts(store.PostFilter{AuthorIDs: authors}), nil
}

func (s followedSeq) Count(ctx context.Context) (int64, error) {
	seq, err := s.resolve(ctx)
	if err != nil {
		return 0, err
	}
	return seq.Count(ctx)
}

func (s followedSeq) Slice(ctx context.Context, offset, limit int64) ([]models.Post, error) {
	seq, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return seq.Slice(ctx, offset, limit)
}

// Page paginates seq and expands the posts on the selected page.
func (q *Query) Page(ctx context.Context, seq paging.Sequence[models.Post], number int) (paging.Page[Entry], error) {
	p, err := paging.Paginate[models.Post](ctx, seq, q.pageSize, number)
	if err != nil {
		return paging.Page[Entry]{}, fmt.Errorf("paginate: %w", err)
	}
	entries, err := q.Expand(ctx, p.Items)
	if err != nil {
		return paging.Page[Entry]{}, err
	}
	return paging.WithItems(p, entries), nil
}

// Expand attaches authors and groups to posts using one batched lookup per
// kind.
func (q *Query) Expand(ctx context.Context, posts []models.Post) ([]Entry, error) {
	out := make([]Entry, len(posts))
	if len(posts) == 0 {
		return out, nil
	}

	var userIDs, groupIDs []primitive.ObjectID
	for _, p := range posts {
		if p.AuthorID != nil {
			userIDs = append(userIDs, *p.AuthorID)
		}
		if p.GroupID != nil {
			groupIDs = append(groupIDs, *p.GroupID)
		}
	}

	users, err := q.st.UsersByIDs(ctx, unique(userIDs))
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	groups, err := q.st.GroupsByIDs(ctx, unique(groupIDs))
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}

	for i, p := range posts {
		out[i] = Entry{Post: p}
		if p.AuthorID != nil {
			if u, ok := users[*p.AuthorID]; ok {
				out[i].Author = &u
			}
		}
		if p.GroupID != nil {
			if g, ok := groups[*p.GroupID]; ok {
				out[i].Group = &g
			}
		}
	}
	return out, nil
}

// Post loads and expands a single post.
func (q *Query) Post(ctx context.Context, id primitive.ObjectID) (Entry, error) {
	p, err := q.st.PostByID(ctx, id)
	if err != nil {
		return Entry{}, translate(err)
	}
	entries, err := q.Expand(ctx, []models.Post{p})
	if err != nil {
		return Entry{}, err
	}
	return entries[0], nil
}

// PostDetail loads a post with its author's post count and its comments.
func (q *Query) PostDetail(ctx context.Context, id primitive.ObjectID) (Detail, error) {
	e, err := q.Post(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	d := Detail{Entry: e, Comments: []CommentEntry{}}
	if e.AuthorID != nil {
		n, err := q.AuthorPostCount(ctx, *e.AuthorID)
		if err != nil {
			return Detail{}, err
		}
		d.AuthorPostCount = n
	}

	comments, err := q.st.CommentsForPost(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("load comments: %w", err)
	}
	if len(comments) == 0 {
		return d, nil
	}

	authorIDs := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	users, err := q.st.UsersByIDs(ctx, unique(authorIDs))
	if err != nil {
		return Detail{}, fmt.Errorf("load comment authors: %w", err)
	}
	for _, c := range comments {
		ce := CommentEntry{Comment: c}
		if u, ok := users[c.AuthorID]; ok {
			ce.Author = &u
		}
		d.Comments = append(d.Comments, ce)
	}
	return d, nil
}

// AuthorPostCount counts the posts written by authorID.
func (q *Query) AuthorPostCount(ctx context.Context, authorID primitive.ObjectID) (int64, error) {
	n, err := q.st.ListPosts(store.PostFilter{AuthorID: &authorID}).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count author posts: %w", err)
	}
	return n, nil
}

// IsFollowing reports whether viewer follows author. Anonymous viewers
// follow nobody.
func (q *Query) IsFollowing(ctx context.Context, viewer Identity, authorID primitive.ObjectID) (bool, error) {
	if !viewer.IsAuthenticated() {
		return false, nil
	}
	return q.st.IsFollowing(ctx, viewer.UserID, authorID)
}

func unique(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// translate maps store sentinels to blog sentinels.
func translate(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
