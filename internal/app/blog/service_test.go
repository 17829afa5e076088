package blog_test

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/inkwell/internal/app/blog"
	"github.com/dalemusser/inkwell/internal/app/system/paging"
	"github.com/dalemusser/inkwell/internal/domain/models"
	"github.com/spf13/afero"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

func countPosts(t *testing.T, e *env) int64 {
	t.Helper()
	n, err := e.q.ListAll().Count(e.ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	return n
}

func TestCreatePost_Scenario(t *testing.T) {
	e := newEnv(t)
	alice := e.fx.CreateUser(e.ctx, "alice")
	cats := e.fx.CreateGroup(e.ctx, "Cats", "cats")
	e.fx.CreatePosts(e.ctx, alice, nil, 2)

	p, err := e.svc.CreatePost(e.ctx, as(alice), blog.PostInput{Text: "hello", Group: cats.ID.Hex()})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if p.Text != "hello" {
		t.Errorf("Text: got %q", p.Text)
	}
	if p.AuthorID == nil || *p.AuthorID != alice.ID {
		t.Errorf("AuthorID: got %v", p.AuthorID)
	}
	if p.GroupID == nil || *p.GroupID != cats.ID {
		t.Errorf("GroupID: got %v", p.GroupID)
	}
	if !p.CreatedAt.Equal(serviceNow) {
		t.Errorf("CreatedAt: got %v, want %v", p.CreatedAt, serviceNow)
	}

	page, err := e.q.Page(e.ctx, e.q.ListAll(), 1)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if len(page.Items) != 3 || page.Items[0].ID != p.ID {
		t.Errorf("expected new post first in global feed, got %v", entryIDs(page.Items))
	}
	if page.Items[0].Group == nil || page.Items[0].Group.Slug != "cats" {
		t.Error("expected group expanded on the new post")
	}
}

func TestCreatePost_Anonymous(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.CreatePost(e.ctx, blog.Anonymous, blog.PostInput{Text: "sneaky"})
	if !errors.Is(err, blog.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if n := countPosts(t, e); n != 0 {
		t.Errorf("expected no posts, got %d", n)
	}
}

func TestCreatePost_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input blog.PostInput
		field string
	}{
		{"blank text", blog.PostInput{Text: "   "}, "text"},
		{"markup only", blog.PostInput{Text: "<script>x()</script>"}, "text"},
		{"malformed group", blog.PostInput{Text: "ok", Group: "not-an-id"}, "group"},
		{"unknown group", blog.PostInput{Text: "ok", Group: primitive.NewObjectID().Hex()}, "group"},
		{"not an image", blog.PostInput{Text: "ok", Image: strings.NewReader("plain text, not an image")}, "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			alice := e.fx.CreateUser(e.ctx, "alice")

			_, err := e.svc.CreatePost(e.ctx, as(alice), tt.input)
			if !errors.Is(err, blog.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			fields := blog.FieldErrors(err)
			if _, ok := fields[tt.field]; !ok {
				t.Errorf("expected %q field error, got %v", tt.field, fields)
			}
			if n := countPosts(t, e); n != 0 {
				t.Errorf("expected no posts, got %d", n)
			}
		})
	}
}

func TestCreatePost_SanitizesText(t *testing.T) {
	e := newEnv(t)
	alice := e.fx.CreateUser(e.ctx, "alice")

	p, err := e.svc.CreatePost(e.ctx, as(alice), blog.PostInput{Text: "<p>hi</p><script>alert(1)</script>"})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if p.Text != "<p>hi</p>" {
		t.Errorf("Text: got %q", p.Text)
	}
}

func TestCreatePost_WithImage(t *testing.T) {
	e := newEnv(t)
	alice := e.fx.CreateUser(e.ctx, "alice")

	p, err := e.svc.CreatePost(e.ctx, as(alice), blog.PostInput{Text: "pic", Image: bytes.NewReader(pngBytes)})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if !strings.HasPrefix(p.Image, "posts/") || !strings.HasSuffix(p.Image, ".png") {
		t.Errorf("Image: got %q", p.Image)
	}
	if ok, _ := afero.Exists(e.fs, p.Image); !ok {
		t.Error("expected image file to be stored")
	}
}

func TestEditPost_Owner(t *testing.T) {
	e := newEnv(t)
	alice := e.fx.CreateUser(e.ctx, "alice")
	cats := e.fx.CreateGroup(e.ctx, "Cats", "cats")

	orig, err := e.svc.CreatePost(e.ctx, as(alice), blog.PostInput{Text: "draft", Group: cats.ID.Hex(), Image: bytes.NewReader(pngBytes)})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	e.clock.Advance(time.Hour)
	edited, err := e.svc.EditPost(e.ctx, as(alice), orig.ID, blog.PostInput{Text: "final"})
	if err != nil {
		t.Fatalf("EditPost failed: %v", err)
	}

	got, err := e.st.PostByID(e.ctx, orig.ID)
	if err != nil {
		t.Fatalf("PostByID failed: %v", err)
	}
	if got.Text != "final" || got.GroupID != nil {
		t.Errorf("after edit: %+v", got)
	}
	if got.Image != orig.Image {
		t.Errorf("omitting an image must keep it: got %q, want %q", got.Image, orig.Image)
	}
	if !got.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", orig.CreatedAt, got.CreatedAt)
	}
	if !edited.UpdatedAt.After(orig.UpdatedAt) {
		t.Errorf("UpdatedAt not bumped: %v", edited.UpdatedAt)
	}
}

func TestEditPost_ReplacesImage(t *testing.T) {
	e := newEnv(t)
	alice := e.fx.CreateUser(e.ctx, "alice")

	orig, err := e.svc.CreatePost(e.ctx, as(alice), blog.PostInput{Text: "pic", Image: bytes.NewReader(pngBytes)})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	edited, err := e.svc.EditPost(e.ctx, as(alice), orig.ID, blog.PostInput{Text: "pic", Image: bytes.NewReader(pngBytes)})
	if err != nil {
		t.Fatalf("EditPost failed: %v", err)
	}
	if edited.Image == orig.Image {
		t.Fatal("expected a new image path")
	}
	if ok, _ := afero.Exists(e.fs, orig.Image); ok {
		t.Error("expected old image removed")
	}
	if ok, _ := afero.Exists(e.fs, edited.Image); !ok {
		t.Error("expected new image stored")
	}
}

func TestEditPost_NonOwnerNeverMutates(t *testing.T) {
	e := newEnv(t)
	alice := e.fx.CreateUser(e.ctx, "alice")
	mallory := e.fx.CreateUser(e.ctx, "mallory")
	orig := e.fx.CreatePost(e.ctx, alice, nil, "mine")

	_, err := e.svc.EditPost(e.ctx, as(mallory), orig.ID, blog.PostInput{Text: "defaced"})
	if !errors.Is(err, blog.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	got, err := e.st.PostByID(e.ctx, orig.ID)
	if err != nil {
		t.Fatalf("PostByID failed: %v", err)
	}
	if got.Text != "mine" || !got.UpdatedAt.Equal(orig.UpdatedAt) {
		t.Errorf("post was mutated: %+v", got)
	}
}

func TestEditPost_Errors(t *testing.T) {
	e := newEnv(t)
	alice := e.fx.CreateUser(e.ctx, "alice")
	p := e.fx.CreatePost(e.ctx, alice, nil, "text")

	if _, err := e.svc.EditPost(e.ctx, blog.Anonymous, p.ID, blog.PostInput{Text: "x"}); !errors.Is(err, blog.ErrUnauthorized) {
		t.Errorf("anonymous: expected ErrUnauthorized, got %v", err)
	}
	if _, err := e.svc.EditPost(e.ctx, as(alice), primitive.NewObjectID(), blog.PostInput{Text: "x"}); !errors.Is(err, blog.ErrNotFound) {
		t.Errorf("unknown post: expected ErrNotFound, got %v", err)
	}
	if _, err := e.svc.EditPost(e.ctx, as(alice), p.ID, blog.PostInput{Text: ""}); !errors.Is(err, blog.ErrInvalidInput) {
		t.Errorf("blank text: expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateComment(t *testing.T) {
	e := newEnv(t)
	alice := e.fx.CreateUser(e.ctx, "alice")
	bob := e.fx.CreateUser(e.ctx, "bob")
	p := e.fx.CreatePost(e.ctx, alice, nil, "post")

	c, err := e.svc.CreateComment(e.ctx, as(bob), p.ID, "  nice post  ")
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if c.Text != "nice post" || c.AuthorID != bob.ID || c.PostID != p.ID {
		t.Errorf("comment: %+v", c)
	}

	comments, err := e.st.CommentsForPost(e.ctx, p.ID)
	if err != nil || len(comments) != 1 {
		t.Errorf("CommentsForPost: %v, %v", comments, err)
	}
}

func TestCreateComment_Errors(t *testing.T) {
	e := newEnv(t)
	alice := e.fx.CreateUser(e.ctx, "alice")
	p := e.fx.CreatePost(e.ctx, alice, nil, "post")

	if _, err := e.svc.CreateComment(e.ctx, blog.Anonymous, p.ID, "hi"); !errors.Is(err, blog.ErrUnauthorized) {
		t.Errorf("anonymous: expected ErrUnauthorized, got %v", err)
	}
	if _, err := e.svc.CreateComment(e.ctx, as(alice), primitive.NewObjectID(), "hi"); !errors.Is(err, blog.ErrNotFound) {
		t.Errorf("unknown post: expected ErrNotFound, got %v", err)
	}
	_, err := e.svc.CreateComment(e.ctx, as(alice), p.ID, " \n ")
	if _, ok := blog.FieldErrors(err)["text"]; !ok {
		t.Errorf("blank: expected text field error, got %v", err)
	}
}

func TestFollow_Idempotent(t *testing.T) {
	e := newEnv(t)
	reader := e.fx.CreateUser(e.ctx, "reader")
	alice := e.fx.CreateUser(e.ctx, "alice")

	for i := 0; i < 2; i++ {
		if err := e.svc.Follow(e.ctx, as(reader), "alice"); err != nil {
			t.Fatalf("Follow #%d failed: %v", i+1, err)
		}
	}

	ids, err := e.st.FollowedAuthorIDs(e.ctx, reader.ID)
	if err != nil {
		t.Fatalf("FollowedAuthorIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != alice.ID {
		t.Errorf("expected exactly one edge to alice, got %v", ids)
	}
}

func TestFollow_Concurrent(t *testing.T) {
	e := newEnv(t)
	reader := e.fx.CreateUser(e.ctx, "reader")
	e.fx.CreateUser(e.ctx, "alice")

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := e.svc.Follow(e.ctx, as(reader), "alice"); err != nil {
				t.Errorf("Follow failed: %v", err)
			}
		}()
	}
	wg.Wait()

	ids, err := e.st.FollowedAuthorIDs(e.ctx, reader.ID)
	if err != nil || len(ids) != 1 {
		t.Errorf("expected one edge, got %v, %v", ids, err)
	}
}

func TestFollow_SelfIsNoop(t *testing.T) {
	e := newEnv(t)
	alice := e.fx.CreateUser(e.ctx, "alice")

	if err := e.svc.Follow(e.ctx, as(alice), "alice"); !errors.Is(err, blog.ErrSelfFollow) {
		t.Fatalf("self follow: got %v, want ErrSelfFollow", err)
	}
	// Matching is by account, not by the spelling of the name.
	if err := e.svc.Follow(e.ctx, as(alice), "ALICE"); !errors.Is(err, blog.ErrSelfFollow) {
		t.Fatalf("self follow by other case: got %v", err)
	}
	ids, _ := e.st.FollowedAuthorIDs(e.ctx, alice.ID)
	if len(ids) != 0 {
		t.Errorf("expected no self edge, got %v", ids)
	}
}

func TestFollow_Errors(t *testing.T) {
	e := newEnv(t)
	reader := e.fx.CreateUser(e.ctx, "reader")

	if err := e.svc.Follow(e.ctx, as(reader), "ghost"); !errors.Is(err, blog.ErrNotFound) {
		t.Errorf("unknown target: expected ErrNotFound, got %v", err)
	}
	if err := e.svc.Follow(e.ctx, blog.Anonymous, "reader"); !errors.Is(err, blog.ErrUnauthorized) {
		t.Errorf("anonymous: expected ErrUnauthorized, got %v", err)
	}
}

func TestUnfollow_TwiceFails(t *testing.T) {
	e := newEnv(t)
	reader := e.fx.CreateUser(e.ctx, "reader")
	alice := e.fx.CreateUser(e.ctx, "alice")
	e.fx.Follow(e.ctx, reader, alice)

	if err := e.svc.Unfollow(e.ctx, as(reader), "alice"); err != nil {
		t.Fatalf("first Unfollow failed: %v", err)
	}
	if err := e.svc.Unfollow(e.ctx, as(reader), "alice"); !errors.Is(err, blog.ErrNotFound) {
		t.Errorf("second Unfollow: expected ErrNotFound, got %v", err)
	}
	if err := e.svc.Unfollow(e.ctx, as(reader), "ghost"); !errors.Is(err, blog.ErrNotFound) {
		t.Errorf("unknown target: expected ErrNotFound, got %v", err)
	}
}

func TestFollowFeedScenario(t *testing.T) {
	e := newEnv(t)
	reader := e.fx.CreateUser(e.ctx, "reader")
	alice := e.fx.CreateUser(e.ctx, "alice")
	bob := e.fx.CreateUser(e.ctx, "bob")
	e.fx.CreatePosts(e.ctx, alice, nil, 2)
	e.fx.CreatePosts(e.ctx, bob, nil, 2)

	if err := e.svc.Follow(e.ctx, as(reader), "alice"); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	seq, err := e.q.ListFollowedFeed(as(reader))
	if err != nil {
		t.Fatalf("ListFollowedFeed failed: %v", err)
	}
	all, err := paging.Collect[models.Post](e.ctx, seq)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected alice's 2 posts, got %d", len(all))
	}
	for _, p := range all {
		if p.AuthorID == nil || *p.AuthorID != alice.ID {
			t.Errorf("unexpected author in follow feed: %v", p.AuthorID)
		}
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	e := newEnv(t)

	u, err := e.svc.Register(e.ctx, blog.SignupInput{
		Username: "  newbie ",
		FullName: "New  Bie",
		Password: "s3cret-pass",
		Confirm:  "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if u.Username != "newbie" || u.FullName != "New Bie" {
		t.Errorf("user: %+v", u)
	}
	if u.PasswordHash == "" || u.PasswordHash == "s3cret-pass" {
		t.Error("expected a password hash")
	}

	got, err := e.svc.Authenticate(e.ctx, "NEWBIE", "s3cret-pass")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("Authenticate returned %s", got.Username)
	}

	if _, err := e.svc.Authenticate(e.ctx, "newbie", "wrong-pass"); !errors.Is(err, blog.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := e.svc.Authenticate(e.ctx, "nobody", "s3cret-pass"); !errors.Is(err, blog.ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    blog.SignupInput
		field string
	}{
		{"missing username", blog.SignupInput{Password: "longenough", Confirm: "longenough"}, "username"},
		{"bad username", blog.SignupInput{Username: "two words", Password: "longenough", Confirm: "longenough"}, "username"},
		{"short password", blog.SignupInput{Username: "ok", Password: "short", Confirm: "short"}, "password1"},
		{"mismatch", blog.SignupInput{Username: "ok", Password: "longenough", Confirm: "different!"}, "password2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			_, err := e.svc.Register(e.ctx, tt.in)
			if !errors.Is(err, blog.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if _, ok := blog.FieldErrors(err)[tt.field]; !ok {
				t.Errorf("expected %q field error, got %v", tt.field, blog.FieldErrors(err))
			}
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	e := newEnv(t)
	e.fx.CreateUser(e.ctx, "taken")

	_, err := e.svc.Register(e.ctx, blog.SignupInput{Username: "TAKEN", Password: "longenough", Confirm: "longenough"})
	if _, ok := blog.FieldErrors(err)["username"]; !ok {
		t.Errorf("expected username field error, got %v", err)
	}
}
