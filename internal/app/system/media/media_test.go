package media_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dalemusser/inkwell/internal/app/system/media"
	"github.com/spf13/afero"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestSavePostImage_StoresUnderPosts(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := media.New(fs, "/media/", 0)

	rel, err := st.SavePostImage(context.Background(), bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("SavePostImage failed: %v", err)
	}
	if !strings.HasPrefix(rel, "posts/") || !strings.HasSuffix(rel, ".png") {
		t.Errorf("unexpected path %q", rel)
	}

	data, err := afero.ReadFile(fs, rel)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(data, pngHeader) {
		t.Error("stored bytes differ from upload")
	}

	if got := st.URL(rel); got != "/media/"+rel {
		t.Errorf("URL: got %q", got)
	}
}

func TestSavePostImage_UniqueNames(t *testing.T) {
	st := media.New(afero.NewMemMapFs(), "/media", 0)

	a, err := st.SavePostImage(context.Background(), bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	b, err := st.SavePostImage(context.Background(), bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if a == b {
		t.Errorf("expected distinct paths, both %q", a)
	}
}

func TestSavePostImage_RejectsNonImage(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := media.New(fs, "/media", 0)

	_, err := st.SavePostImage(context.Background(), strings.NewReader("<html><body>nope</body></html>"))
	if !errors.Is(err, media.ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}

	entries, _ := afero.ReadDir(fs, media.PostsDir)
	if len(entries) != 0 {
		t.Errorf("expected nothing stored, found %d files", len(entries))
	}
}

func TestSavePostImage_TooLarge(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := media.New(fs, "/media", 32)

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)
	_, err := st.SavePostImage(context.Background(), bytes.NewReader(big))
	if !errors.Is(err, media.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	entries, _ := afero.ReadDir(fs, media.PostsDir)
	if len(entries) != 0 {
		t.Errorf("expected partial file removed, found %d files", len(entries))
	}
}

func TestURL_Empty(t *testing.T) {
	st := media.New(afero.NewMemMapFs(), "/media", 0)
	if got := st.URL(""); got != "" {
		t.Errorf("URL(\"\") = %q, want empty", got)
	}
}

func TestRemove_Missing(t *testing.T) {
	st := media.New(afero.NewMemMapFs(), "/media", 0)
	if err := st.Remove("posts/missing.png"); err != nil {
		t.Errorf("Remove of missing file: %v", err)
	}
}
