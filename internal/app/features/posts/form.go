// internal/app/features/posts/form.go
package posts

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/dalemusser/inkwell/internal/app/blog"
)

// errTooLarge marks a body that exceeded MaxUploadBytes.
var errTooLarge = errors.New("request body too large")

// parsePostForm reads the text, group and optional image of a post form.
// The returned cleanup releases the uploaded file and any temp files and
// must always be called.
func (h *Handler) parsePostForm(w http.ResponseWriter, r *http.Request) (blog.PostInput, func(), error) {
	cleanup := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return blog.PostInput{}, cleanup, classify(err)
		}
		return blog.PostInput{Text: r.PostFormValue("text"), Group: r.PostFormValue("group")}, cleanup, nil
	}

	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		return blog.PostInput{}, cleanup, classify(err)
	}
	cleanup = func() { _ = r.MultipartForm.RemoveAll() }

	in := blog.PostInput{Text: r.PostFormValue("text"), Group: r.PostFormValue("group")}

	file, _, err := r.FormFile("image")
	switch {
	case err == nil:
		in.Image = file
		removeAll := cleanup
		cleanup = func() {
			_ = file.Close()
			removeAll()
		}
	case errors.Is(err, http.ErrMissingFile):
	default:
		return in, cleanup, err
	}
	return in, cleanup, nil
}

func classify(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
		return errTooLarge
	}
	return err
}
