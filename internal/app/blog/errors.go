// Package blog holds the feed queries, the cached global index and the write
// operations of the blogging core. Handlers in internal/app/features call
// into it; it talks to persistence only through the store interfaces.
package blog

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound means a referenced post, group or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized means the operation needs a signed-in identity.
	ErrUnauthorized = errors.New("sign-in required")
	// ErrForbidden means the identity is signed in but may not do this.
	ErrForbidden = errors.New("forbidden")
	// ErrSelfFollow is returned by Follow when the target is the caller.
	// Nothing is stored.
	ErrSelfFollow = errors.New("cannot follow yourself")
	// ErrInvalidInput is matched by every *ValidationError.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError carries per-field messages for re-rendering a form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrInvalidInput) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// FieldErrors extracts the field messages from err, or nil if err is not a
// validation failure.
func FieldErrors(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
