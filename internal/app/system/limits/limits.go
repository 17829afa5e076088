// internal/app/system/limits/limits.go
package limits

// Request body size limits for the plain forms.
// Post forms carry an image and use the configured upload limit instead.
const (
	// MaxAuthFormSize bounds log-in and sign-up submissions.
	MaxAuthFormSize = 64 << 10 // 64 KB

	// MaxCommentFormSize bounds a comment submission.
	MaxCommentFormSize = 256 << 10 // 256 KB
)
