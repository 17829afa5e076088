package blog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dalemusser/inkwell/internal/app/store"
	"github.com/dalemusser/inkwell/internal/app/system/htmlsanitize"
	"github.com/dalemusser/inkwell/internal/app/system/media"
	"github.com/dalemusser/inkwell/internal/app/system/normalize"
	"github.com/dalemusser/inkwell/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Field-level messages shown on forms.
const (
	msgRequired      = "This field is required."
	msgInvalidGroup  = "Select a valid choice. That choice is not one of the available choices."
	msgInvalidImage  = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

// MsgImageTooLarge is the image field error for uploads over the size cap.
const MsgImageTooLarge = "The uploaded image is too large."

// ImageStore persists post images. *media.Store satisfies it.
type ImageStore interface {
	SavePostImage(ctx context.Context, r io.Reader) (string, error)
	Remove(rel string) error
}

// PostInput is the submitted post form.
type PostInput struct {
	Text string
	// Group is the hex id of the chosen group, "" for none.
	Group string
	// Image is the uploaded file, nil when none was sent. On edit, nil keeps
	// the current image.
	Image io.Reader
}

// Service performs every mutation: posts, comments, follows and accounts.
type Service struct {
	st     store.Store
	images ImageStore
	logger *zap.Logger

	// Now supplies creation and update times. Tests may replace it.
	Now func() time.Time
}

// NewService returns a Service writing to st. images may be nil, in which
// case uploads are rejected.
func NewService(st store.Store, images ImageStore, logger *zap.Logger) *Service {
	return &Service{st: st, images: images, logger: logger, Now: time.Now}
}

func (s *Service) now() time.Time {
	return s.Now().UTC().Truncate(time.Millisecond)
}

// CreatePost publishes a post authored by id.
func (s *Service) CreatePost(ctx context.Context, id Identity, in PostInput) (models.Post, error) {
	if !id.IsAuthenticated() {
		return models.Post{}, ErrUnauthorized
	}

	text, groupID, err := s.validatePost(ctx, in)
	if err != nil {
		return models.Post{}, err
	}

	image, err := s.saveImage(ctx, in.Image)
	if err != nil {
		return models.Post{}, err
	}

	author := id.UserID
	at := s.now()
	p, err := s.st.CreatePost(ctx, models.Post{
		Text:      text,
		AuthorID:  &author,
		GroupID:   groupID,
		Image:     image,
		CreatedAt: at,
		UpdatedAt: at,
	})
	if err != nil {
		s.discardImage(image)
		return models.Post{}, fmt.Errorf("create post: %w", err)
	}

	s.logger.Info("post created",
		zap.String("post_id", p.ID.Hex()),
		zap.String("author", id.Username))
	return p, nil
}

// EditPost replaces the text, group and (if a new one is sent) image of a
// post. Only the author may edit; created_at never changes.
func (s *Service) EditPost(ctx context.Context, id Identity, postID primitive.ObjectID, in PostInput) (models.Post, error) {
	if !id.IsAuthenticated() {
		return models.Post{}, ErrUnauthorized
	}

	p, err := s.st.PostByID(ctx, postID)
	if err != nil {
		return models.Post{}, translate(err)
	}
	if !p.IsAuthoredBy(id.UserID) {
		return models.Post{}, ErrForbidden
	}

	text, groupID, err := s.validatePost(ctx, in)
	if err != nil {
		return models.Post{}, err
	}

	oldImage := p.Image
	if in.Image != nil {
		image, err := s.saveImage(ctx, in.Image)
		if err != nil {
			return models.Post{}, err
		}
		p.Image = image
	}

	p.Text = text
	p.GroupID = groupID
	p.UpdatedAt = s.now()

	if err := s.st.UpdatePost(ctx, p); err != nil {
		if p.Image != oldImage {
			s.discardImage(p.Image)
		}
		return models.Post{}, translate(err)
	}
	if p.Image != oldImage {
		s.discardImage(oldImage)
	}
	return p, nil
}

// CreateComment attaches a comment by id to the post.
func (s *Service) CreateComment(ctx context.Context, id Identity, postID primitive.ObjectID, text string) (models.Comment, error) {
	if !id.IsAuthenticated() {
		return models.Comment{}, ErrUnauthorized
	}
	if _, err := s.st.PostByID(ctx, postID); err != nil {
		return models.Comment{}, translate(err)
	}

	clean := htmlsanitize.Sanitize(normalize.Text(text))
	if htmlsanitize.IsBlank(clean) {
		return models.Comment{}, fieldError("text", msgRequired)
	}

	c, err := s.st.CreateComment(ctx, models.Comment{
		PostID:    postID,
		AuthorID:  id.UserID,
		Text:      clean,
		CreatedAt: s.now(),
	})
	if err != nil {
		return models.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// Follow makes id follow the user named username. Following someone already
// followed is a no-op; following yourself stores nothing and returns
// ErrSelfFollow.
func (s *Service) Follow(ctx context.Context, id Identity, username string) error {
	if !id.IsAuthenticated() {
		return ErrUnauthorized
	}
	author, err := s.st.UserByUsername(ctx, username)
	if err != nil {
		return translate(err)
	}
	if author.ID == id.UserID {
		return ErrSelfFollow
	}

	created, err := s.st.CreateFollow(ctx, models.Follow{
		UserID:    id.UserID,
		AuthorID:  author.ID,
		CreatedAt: s.now(),
	})
	if err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	if created {
		s.logger.Info("follow created", zap.String("user", id.Username), zap.String("author", author.Username))
	}
	return nil
}

// Unfollow removes the edge from id to username. It fails with ErrNotFound
// when the user is unknown or was not followed.
func (s *Service) Unfollow(ctx context.Context, id Identity, username string) error {
	if !id.IsAuthenticated() {
		return ErrUnauthorized
	}
	author, err := s.st.UserByUsername(ctx, username)
	if err != nil {
		return translate(err)
	}

	deleted, err := s.st.DeleteFollow(ctx, id.UserID, author.ID)
	if err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// validatePost sanitizes the text and resolves the group, collecting every
// field problem into one ValidationError.
func (s *Service) validatePost(ctx context.Context, in PostInput) (string, *primitive.ObjectID, error) {
	fields := map[string]string{}

	text := htmlsanitize.Sanitize(normalize.Text(in.Text))
	if htmlsanitize.IsBlank(text) {
		fields["text"] = msgRequired
	}

	var groupID *primitive.ObjectID
	if raw := normalize.QueryParam(in.Group); raw != "" {
		gid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			fields["group"] = msgInvalidGroup
		} else if _, err := s.st.GroupByID(ctx, gid); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return "", nil, fmt.Errorf("load group: %w", err)
			}
			fields["group"] = msgInvalidGroup
		} else {
			groupID = &gid
		}
	}

	if len(fields) > 0 {
		return "", nil, &ValidationError{Fields: fields}
	}
	return text, groupID, nil
}

func (s *Service) saveImage(ctx context.Context, r io.Reader) (string, error) {
	if r == nil {
		return "", nil
	}
	if s.images == nil {
		return "", fieldError("image", msgInvalidImage)
	}
	rel, err := s.images.SavePostImage(ctx, r)
	switch {
	case errors.Is(err, media.ErrUnsupportedType):
		return "", fieldError("image", msgInvalidImage)
	case errors.Is(err, media.ErrTooLarge):
		return "", fieldError("image", MsgImageTooLarge)
	case err != nil:
		return "", fmt.Errorf("save image: %w", err)
	}
	return rel, nil
}

// discardImage removes a stored file the post no longer references.
func (s *Service) discardImage(rel string) {
	if rel == "" || s.images == nil {
		return
	}
	if err := s.images.Remove(rel); err != nil {
		s.logger.Warn("failed to remove image", zap.String("path", rel), zap.Error(err))
	}
}
