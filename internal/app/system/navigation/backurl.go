// Package navigation provides helpers for safe URL navigation and redirects.
package navigation

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures the behavior of SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix (e.g., "/profile/").
	// If empty, any safe URL is allowed.
	AllowedPrefix string

	// Exclude rejects candidate paths, so an action never redirects back
	// to itself. Nil excludes nothing.
	Exclude func(path string) bool

	// Fallback is the default URL if no valid return URL is found.
	Fallback string
}

// SafeBackURL picks where to send the user after an action.
//
// Candidates, in order: the "return" query parameter, the "return" form
// value, then the Referer header when it points at this host. Each must be a
// safe local URL (not an open redirect), match AllowedPrefix and not be
// excluded. Otherwise Fallback is returned.
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	candidates := []string{
		query.Get(r, "return"),
		strings.TrimSpace(r.FormValue("return")),
		sameHostReferer(r),
	}

	for _, c := range candidates {
		ret := SafeLocal(c, "")
		if ret != "" && opts.allows(ret) {
			return ret
		}
	}
	return opts.Fallback
}

// SafeLocal returns the cleaned form of raw when it is a safe local URL,
// otherwise fallback. Routes end in a slash, so a trailing slash on raw's
// path survives the cleaning urlutil.SafeReturn applies.
func SafeLocal(raw, fallback string) string {
	ret := urlutil.SafeReturn(raw, "", "")
	if ret == "" {
		return fallback
	}
	return keepTrailingSlash(strings.TrimSpace(raw), ret)
}

func keepTrailingSlash(raw, cleaned string) string {
	rawPath, _, _ := strings.Cut(raw, "#")
	rawPath, _, _ = strings.Cut(rawPath, "?")
	if !strings.HasSuffix(rawPath, "/") {
		return cleaned
	}
	p, rest, found := strings.Cut(cleaned, "?")
	if strings.HasSuffix(p, "/") {
		return cleaned
	}
	if found {
		return p + "/?" + rest
	}
	return p + "/"
}

func (o BackURLOptions) allows(u string) bool {
	if o.AllowedPrefix != "" && !strings.HasPrefix(u, o.AllowedPrefix) {
		return false
	}
	if o.Exclude == nil {
		return true
	}
	path, _, _ := strings.Cut(u, "?")
	return !o.Exclude(path)
}

// sameHostReferer returns the path and query of the Referer when it names
// this host (or no host at all), otherwise "".
func sameHostReferer(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if u.Host != "" && !strings.EqualFold(u.Host, r.Host) {
		return ""
	}
	return u.RequestURI()
}

// FollowBackURL is used after follow and unfollow: back to the referring
// page, never to another follow action, else the author's profile.
func FollowBackURL(profileURL string) BackURLOptions {
	return BackURLOptions{
		Exclude:  isFollowAction,
		Fallback: profileURL,
	}
}

func isFollowAction(path string) bool {
	return strings.HasPrefix(path, "/profile/") &&
		(strings.HasSuffix(path, "/follow/") || strings.HasSuffix(path, "/unfollow/"))
}
