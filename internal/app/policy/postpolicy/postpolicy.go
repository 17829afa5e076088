// internal/app/policy/postpolicy/postpolicy.go
package postpolicy

import (
	"github.com/dalemusser/inkwell/internal/app/blog"
	"github.com/dalemusser/inkwell/internal/domain/models"
)

// CanEdit reports whether id may edit post. Only the author can; posts whose
// author reference was cleared can be edited by nobody.
func CanEdit(id blog.Identity, post models.Post) bool {
	return id.IsAuthenticated() && post.IsAuthoredBy(id.UserID)
}
