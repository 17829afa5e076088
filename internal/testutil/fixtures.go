package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/inkwell/internal/app/store"
	"github.com/dalemusser/inkwell/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "correct-horse-battery"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data through any
// store backend.
type Fixtures struct {
	st   store.Store
	t    *testing.T
	hash string
	base time.Time
	seq  int
}

// NewFixtures creates a new Fixtures instance for the given store.
func NewFixtures(t *testing.T, st store.Store) *Fixtures {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	return &Fixtures{
		st:   st,
		t:    t,
		hash: string(hash),
		base: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// Store returns the underlying store for direct access in tests.
func (f *Fixtures) Store() store.Store {
	return f.st
}

// nextTime yields strictly increasing creation times one second apart, so
// fixture posts have an unambiguous newest-first order.
func (f *Fixtures) nextTime() time.Time {
	f.seq++
	return f.base.Add(time.Duration(f.seq) * time.Second)
}

// CreateUser creates a user whose password is TestPassword.
func (f *Fixtures) CreateUser(ctx context.Context, username string) models.User {
	f.t.Helper()

	u, err := f.st.CreateUser(ctx, models.User{
		Username:     username,
		FullName:     "Test " + username,
		PasswordHash: f.hash,
	})
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateGroup creates a group with the given title and slug.
func (f *Fixtures) CreateGroup(ctx context.Context, title, slug string) models.Group {
	f.t.Helper()

	g, err := f.st.CreateGroup(ctx, models.Group{
		Title:       title,
		Slug:        slug,
		Description: "Test group " + title,
	})
	if err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// CreatePost creates a post by author, optionally in group.
// Each call is stamped one second after the previous one.
func (f *Fixtures) CreatePost(ctx context.Context, author models.User, group *models.Group, text string) models.Post {
	f.t.Helper()

	p := models.Post{
		Text:      text,
		AuthorID:  &author.ID,
		CreatedAt: f.nextTime(),
	}
	if group != nil {
		gid := group.ID
		p.GroupID = &gid
	}
	created, err := f.st.CreatePost(ctx, p)
	if err != nil {
		f.t.Fatalf("failed to create test post: %v", err)
	}
	return created
}

// CreatePosts creates n posts by author, oldest first.
func (f *Fixtures) CreatePosts(ctx context.Context, author models.User, group *models.Group, n int) []models.Post {
	f.t.Helper()

	out := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.CreatePost(ctx, author, group, "post text"))
	}
	return out
}

// CreateComment attaches a comment by author to post.
func (f *Fixtures) CreateComment(ctx context.Context, post models.Post, author models.User, text string) models.Comment {
	f.t.Helper()

	c, err := f.st.CreateComment(ctx, models.Comment{
		PostID:    post.ID,
		AuthorID:  author.ID,
		Text:      text,
		CreatedAt: f.nextTime(),
	})
	if err != nil {
		f.t.Fatalf("failed to create test comment: %v", err)
	}
	return c
}

// Follow makes user follow author.
func (f *Fixtures) Follow(ctx context.Context, user, author models.User) {
	f.t.Helper()

	if _, err := f.st.CreateFollow(ctx, models.Follow{
		ID:       primitive.NewObjectID(),
		UserID:   user.ID,
		AuthorID: author.ID,
	}); err != nil {
		f.t.Fatalf("failed to create test follow: %v", err)
	}
}
