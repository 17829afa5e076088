// Package storetest holds the behavioural tests every store.Store backend
// must pass. Backend packages call Run from their own _test files.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/inkwell/internal/app/store"
	"github.com/dalemusser/inkwell/internal/app/system/paging"
	"github.com/dalemusser/inkwell/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Factory returns a fresh, empty, schema-ready store for one subtest.
type Factory func(t *testing.T) store.Store

// Run executes the suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, st store.Store)
	}{
		{"UserRoundTrip", testUserRoundTrip},
		{"UsernameUniqueCaseInsensitive", testUsernameUnique},
		{"GroupSlugUnique", testGroupSlugUnique},
		{"NotFound", testNotFound},
		{"PostOrderingNewestFirst", testPostOrdering},
		{"PostOrderingTiebreak", testPostTiebreak},
		{"PostFilters", testPostFilters},
		{"EmptyAuthorSetMatchesNothing", testEmptyAuthorSet},
		{"UpdatePostKeepsCreatedAt", testUpdatePost},
		{"OptionalReferences", testOptionalReferences},
		{"CommentsNewestFirst", testComments},
		{"FollowIdempotent", testFollowIdempotent},
		{"FollowConcurrent", testFollowConcurrent},
		{"UnfollowMissing", testUnfollowMissing},
		{"LookupsByIDs", testLookupsByIDs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return c
}

var base = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func mustUser(t *testing.T, st store.Store, name string) models.User {
	t.Helper()
	u, err := st.CreateUser(ctx(t), models.User{Username: name, PasswordHash: "x"})
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	return u
}

func mustGroup(t *testing.T, st store.Store, slug string) models.Group {
	t.Helper()
	g, err := st.CreateGroup(ctx(t), models.Group{Title: "Group " + slug, Slug: slug})
	if err != nil {
		t.Fatalf("CreateGroup(%s) failed: %v", slug, err)
	}
	return g
}

func mustPost(t *testing.T, st store.Store, author *models.User, group *models.Group, at time.Time) models.Post {
	t.Helper()
	p := models.Post{Text: "text", CreatedAt: at}
	if author != nil {
		id := author.ID
		p.AuthorID = &id
	}
	if group != nil {
		id := group.ID
		p.GroupID = &id
	}
	created, err := st.CreatePost(ctx(t), p)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	return created
}

func collect(t *testing.T, seq paging.Sequence[models.Post]) []models.Post {
	t.Helper()
	all, err := paging.Collect[models.Post](ctx(t), seq)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	return all
}

func ids(posts []models.Post) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func sameIDs(a, b []primitive.ObjectID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func testUserRoundTrip(t *testing.T, st store.Store) {
	u, err := st.CreateUser(ctx(t), models.User{Username: "Alice", FullName: "Alice A", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if u.ID.IsZero() {
		t.Error("expected ID to be assigned")
	}

	byName, err := st.UserByUsername(ctx(t), "alice")
	if err != nil {
		t.Fatalf("UserByUsername failed: %v", err)
	}
	if byName.ID != u.ID || byName.Username != "Alice" {
		t.Errorf("UserByUsername: got %+v", byName)
	}

	byID, err := st.UserByID(ctx(t), u.ID)
	if err != nil {
		t.Fatalf("UserByID failed: %v", err)
	}
	if byID.PasswordHash != "hash" || byID.FullName != "Alice A" {
		t.Errorf("UserByID: got %+v", byID)
	}
}

func testUsernameUnique(t *testing.T, st store.Store) {
	mustUser(t, st, "bob")
	_, err := st.CreateUser(ctx(t), models.User{Username: "BOB", PasswordHash: "x"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func testGroupSlugUnique(t *testing.T, st store.Store) {
	mustGroup(t, st, "cats")
	_, err := st.CreateGroup(ctx(t), models.Group{Title: "Other", Slug: "cats"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	g, err := st.GroupBySlug(ctx(t), "cats")
	if err != nil {
		t.Fatalf("GroupBySlug failed: %v", err)
	}
	if g.Title != "Group cats" {
		t.Errorf("Title: got %q", g.Title)
	}
}

func testNotFound(t *testing.T, st store.Store) {
	missing := primitive.NewObjectID()
	checks := map[string]error{}

	_, checks["UserByID"] = st.UserByID(ctx(t), missing)
	_, checks["UserByUsername"] = st.UserByUsername(ctx(t), "nobody")
	_, checks["GroupByID"] = st.GroupByID(ctx(t), missing)
	_, checks["GroupBySlug"] = st.GroupBySlug(ctx(t), "nothing")
	_, checks["PostByID"] = st.PostByID(ctx(t), missing)
	checks["UpdatePost"] = st.UpdatePost(ctx(t), models.Post{ID: missing, Text: "x", UpdatedAt: base})

	for op, err := range checks {
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", op, err)
		}
	}
}

func testPostOrdering(t *testing.T, st store.Store) {
	author := mustUser(t, st, "writer")
	var created []models.Post
	for i := 0; i < 5; i++ {
		created = append(created, mustPost(t, st, &author, nil, base.Add(time.Duration(i)*time.Minute)))
	}

	all := collect(t, st.ListPosts(store.PostFilter{}))
	want := []primitive.ObjectID{created[4].ID, created[3].ID, created[2].ID, created[1].ID, created[0].ID}
	if !sameIDs(ids(all), want) {
		t.Errorf("order: got %v, want %v", ids(all), want)
	}

	// Slices of a restartable sequence agree with the full read.
	seq := st.ListPosts(store.PostFilter{})
	page, err := seq.Slice(ctx(t), 1, 2)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if !sameIDs(ids(page), want[1:3]) {
		t.Errorf("Slice(1,2): got %v, want %v", ids(page), want[1:3])
	}
}

func testPostTiebreak(t *testing.T, st store.Store) {
	author := mustUser(t, st, "same-time")
	a := mustPost(t, st, &author, nil, base)
	b := mustPost(t, st, &author, nil, base)

	first := collect(t, st.ListPosts(store.PostFilter{}))
	second := collect(t, st.ListPosts(store.PostFilter{}))
	if !sameIDs(ids(first), ids(second)) {
		t.Error("ordering of equal timestamps is not deterministic")
	}
	if len(first) != 2 || first[0].ID != b.ID || first[1].ID != a.ID {
		t.Errorf("tiebreak: expected later insert first, got %v", ids(first))
	}
}

func testPostFilters(t *testing.T, st store.Store) {
	alice := mustUser(t, st, "alice")
	bob := mustUser(t, st, "bob")
	carol := mustUser(t, st, "carol")
	cats := mustGroup(t, st, "cats")

	p1 := mustPost(t, st, &alice, &cats, base.Add(1*time.Minute))
	p2 := mustPost(t, st, &bob, nil, base.Add(2*time.Minute))
	p3 := mustPost(t, st, &carol, &cats, base.Add(3*time.Minute))
	p4 := mustPost(t, st, &alice, nil, base.Add(4*time.Minute))

	gid := cats.ID
	if got := ids(collect(t, st.ListPosts(store.PostFilter{GroupID: &gid}))); !sameIDs(got, []primitive.ObjectID{p3.ID, p1.ID}) {
		t.Errorf("group filter: got %v", got)
	}

	aid := alice.ID
	if got := ids(collect(t, st.ListPosts(store.PostFilter{AuthorID: &aid}))); !sameIDs(got, []primitive.ObjectID{p4.ID, p1.ID}) {
		t.Errorf("author filter: got %v", got)
	}

	set := store.PostFilter{AuthorIDs: []primitive.ObjectID{bob.ID, carol.ID}}
	if got := ids(collect(t, st.ListPosts(set))); !sameIDs(got, []primitive.ObjectID{p3.ID, p2.ID}) {
		t.Errorf("author set filter: got %v", got)
	}

	n, err := st.ListPosts(store.PostFilter{}).Count(ctx(t))
	if err != nil || n != 4 {
		t.Errorf("Count: got %d, %v; want 4", n, err)
	}
}

func testEmptyAuthorSet(t *testing.T, st store.Store) {
	author := mustUser(t, st, "someone")
	mustPost(t, st, &author, nil, base)

	seq := st.ListPosts(store.PostFilter{AuthorIDs: []primitive.ObjectID{}})
	n, err := seq.Count(ctx(t))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("empty author set: got %d posts, want 0", n)
	}
}

func testUpdatePost(t *testing.T, st store.Store) {
	author := mustUser(t, st, "editor")
	cats := mustGroup(t, st, "cats")
	p := mustPost(t, st, &author, &cats, base)

	p.Text = "edited"
	p.GroupID = nil
	p.Image = "posts/abc.png"
	p.UpdatedAt = base.Add(time.Hour)
	if err := st.UpdatePost(ctx(t), p); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}

	got, err := st.PostByID(ctx(t), p.ID)
	if err != nil {
		t.Fatalf("PostByID failed: %v", err)
	}
	if got.Text != "edited" || got.GroupID != nil || got.Image != "posts/abc.png" {
		t.Errorf("after update: got %+v", got)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("CreatedAt changed: got %v, want %v", got.CreatedAt, base)
	}
	if got.AuthorID == nil || *got.AuthorID != author.ID {
		t.Errorf("AuthorID changed: got %v", got.AuthorID)
	}
}

func testOptionalReferences(t *testing.T, st store.Store) {
	p := mustPost(t, st, nil, nil, base)
	got, err := st.PostByID(ctx(t), p.ID)
	if err != nil {
		t.Fatalf("PostByID failed: %v", err)
	}
	if got.AuthorID != nil || got.GroupID != nil {
		t.Errorf("expected absent references, got author=%v group=%v", got.AuthorID, got.GroupID)
	}
}

func testComments(t *testing.T, st store.Store) {
	author := mustUser(t, st, "commenter")
	p := mustPost(t, st, &author, nil, base)
	other := mustPost(t, st, &author, nil, base.Add(time.Second))

	for i := 0; i < 3; i++ {
		if _, err := st.CreateComment(ctx(t), models.Comment{
			PostID: p.ID, AuthorID: author.ID, Text: "c", CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("CreateComment failed: %v", err)
		}
	}
	if _, err := st.CreateComment(ctx(t), models.Comment{PostID: other.ID, AuthorID: author.ID, Text: "elsewhere"}); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	comments, err := st.CommentsForPost(ctx(t), p.ID)
	if err != nil {
		t.Fatalf("CommentsForPost failed: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("comments: got %d, want 3", len(comments))
	}
	if !comments[0].CreatedAt.After(comments[2].CreatedAt) {
		t.Error("expected newest comment first")
	}
}

func testFollowIdempotent(t *testing.T, st store.Store) {
	u := mustUser(t, st, "fan")
	a := mustUser(t, st, "star")

	created, err := st.CreateFollow(ctx(t), models.Follow{UserID: u.ID, AuthorID: a.ID})
	if err != nil || !created {
		t.Fatalf("first CreateFollow: created=%v err=%v", created, err)
	}
	created, err = st.CreateFollow(ctx(t), models.Follow{UserID: u.ID, AuthorID: a.ID})
	if err != nil || created {
		t.Errorf("second CreateFollow: created=%v err=%v, want false/nil", created, err)
	}

	following, err := st.FollowedAuthorIDs(ctx(t), u.ID)
	if err != nil {
		t.Fatalf("FollowedAuthorIDs failed: %v", err)
	}
	if len(following) != 1 || following[0] != a.ID {
		t.Errorf("FollowedAuthorIDs: got %v", following)
	}

	ok, err := st.IsFollowing(ctx(t), u.ID, a.ID)
	if err != nil || !ok {
		t.Errorf("IsFollowing: got %v, %v", ok, err)
	}
	ok, err = st.IsFollowing(ctx(t), a.ID, u.ID)
	if err != nil || ok {
		t.Errorf("IsFollowing reversed: got %v, %v", ok, err)
	}
}

func testFollowConcurrent(t *testing.T, st store.Store) {
	u := mustUser(t, st, "eager")
	a := mustUser(t, st, "popular")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := st.CreateFollow(ctx(t), models.Follow{UserID: u.ID, AuthorID: a.ID}); err != nil {
				t.Errorf("CreateFollow failed: %v", err)
			}
		}()
	}
	wg.Wait()

	following, err := st.FollowedAuthorIDs(ctx(t), u.ID)
	if err != nil {
		t.Fatalf("FollowedAuthorIDs failed: %v", err)
	}
	if len(following) != 1 {
		t.Errorf("expected exactly one edge, got %d", len(following))
	}
}

func testUnfollowMissing(t *testing.T, st store.Store) {
	u := mustUser(t, st, "ex-fan")
	a := mustUser(t, st, "ex-star")

	if _, err := st.CreateFollow(ctx(t), models.Follow{UserID: u.ID, AuthorID: a.ID}); err != nil {
		t.Fatalf("CreateFollow failed: %v", err)
	}
	deleted, err := st.DeleteFollow(ctx(t), u.ID, a.ID)
	if err != nil || !deleted {
		t.Fatalf("first DeleteFollow: deleted=%v err=%v", deleted, err)
	}
	deleted, err = st.DeleteFollow(ctx(t), u.ID, a.ID)
	if err != nil || deleted {
		t.Errorf("second DeleteFollow: deleted=%v err=%v, want false/nil", deleted, err)
	}
}

func testLookupsByIDs(t *testing.T, st store.Store) {
	a := mustUser(t, st, "a")
	b := mustUser(t, st, "b")
	g := mustGroup(t, st, "g")

	users, err := st.UsersByIDs(ctx(t), []primitive.ObjectID{a.ID, b.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("UsersByIDs failed: %v", err)
	}
	if len(users) != 2 || users[a.ID].Username != "a" {
		t.Errorf("UsersByIDs: got %v", users)
	}

	groups, err := st.GroupsByIDs(ctx(t), []primitive.ObjectID{g.ID})
	if err != nil {
		t.Fatalf("GroupsByIDs failed: %v", err)
	}
	if groups[g.ID].Slug != "g" {
		t.Errorf("GroupsByIDs: got %v", groups)
	}

	empty, err := st.UsersByIDs(ctx(t), nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("UsersByIDs(nil): got %v, %v", empty, err)
	}
}
