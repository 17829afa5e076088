// Package media stores uploaded post images.
//
// Files live on an afero filesystem rooted at the media directory: the OS
// filesystem in production, an in-memory one in tests. Stored paths are
// relative to that root ("posts/<uuid>.png") and are what Post.Image holds.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// PostsDir is the subdirectory for post images.
const PostsDir = "posts"

var (
	// ErrUnsupportedType is returned for uploads that are not a known image format.
	ErrUnsupportedType = errors.New("media: unsupported file type")
	// ErrTooLarge is returned when an upload exceeds the store's size limit.
	ErrTooLarge = errors.New("media: file too large")
)

// extensions maps sniffed content types to the extension we store under.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store writes uploads to fs.
type Store struct {
	fs        afero.Fs
	urlPrefix string
	maxBytes  int64
}

// New returns a store over fs. URLs are built under urlPrefix; uploads larger
// than maxBytes (when > 0) are rejected.
func New(fs afero.Fs, urlPrefix string, maxBytes int64) *Store {
	return &Store{
		fs:        fs,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		maxBytes:  maxBytes,
	}
}

// NewOS returns a store rooted at dir on the local filesystem, creating dir
// if needed.
func NewOS(dir, urlPrefix string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir %q: %w", dir, err)
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), dir), urlPrefix, maxBytes), nil
}

// Fs exposes the underlying filesystem.
func (s *Store) Fs() afero.Fs { return s.fs }

// SavePostImage stores r under posts/ with a random name and returns the
// relative path. The type is sniffed from the content, not trusted from the
// client.
func (s *Store) SavePostImage(ctx context.Context, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if s.maxBytes > 0 {
		r = io.LimitReader(r, s.maxBytes+1)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	ext, ok := extensions[http.DetectContentType(head)]
	if !ok {
		return "", ErrUnsupportedType
	}

	if err := s.fs.MkdirAll(PostsDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", PostsDir, err)
	}

	rel := path.Join(PostsDir, uuid.NewString()+ext)
	f, err := s.fs.Create(rel)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", rel, err)
	}

	written, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), r))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && s.maxBytes > 0 && written > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = s.fs.Remove(rel)
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write %s: %w", rel, err)
	}
	return rel, nil
}

// URL returns the public URL for a stored path ("" for "").
func (s *Store) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.urlPrefix + "/" + strings.TrimLeft(rel, "/")
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	err := s.fs.Remove(rel)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
