package auth

import (
	"regexp"
	"strings"
)

var (
	videoDetailPattern = regexp.MustCompile(`^/api/videos/[0-9a-zA-Z-]+$`)
	postDetailPattern  = regexp.MustCompile(`^/api/posts/[0-9a-zA-Z-]+$`)
)

// IsPublicPath reports whether a path may be served without credentials.
// Requests that do carry a token are still validated regardless of the
// classification; this list only controls whether a missing token rejects.
func IsPublicPath(path string) bool {
	if path == "/healthz" {
		return true
	}

	// Registration, login and the current-user probe. The probe is public so
	// the frontend can ask "who am I" without tripping the gate; the handler
	// answers 401 itself for anonymous callers.
	if strings.HasPrefix(path, "/api/user/register") ||
		strings.HasPrefix(path, "/api/user/login") ||
		path == "/api/user/current" {
		return true
	}

	// Public read-only video endpoints: listing, detail, search.
	if strings.HasPrefix(path, "/api/videos") {
		if path == "/api/videos" || strings.HasPrefix(path, "/api/videos/search") {
			return true
		}
		if videoDetailPattern.MatchString(path) && path != "/api/videos/my" && path != "/api/videos/upload" {
			return true
		}
	}

	// Public read-only post endpoints: listing, detail, search.
	if strings.HasPrefix(path, "/api/posts") {
		if path == "/api/posts/list" || strings.HasPrefix(path, "/api/posts/search") {
			return true
		}
		if postDetailPattern.MatchString(path) && path != "/api/posts/my" && path != "/api/posts/create" {
			return true
		}
	}

	// Signaling websocket. Browser WebSocket clients cannot set an
	// Authorization header on the upgrade request.
	if strings.HasPrefix(path, "/ws/") {
		return true
	}

	// Video file streaming.
	if strings.HasPrefix(path, "/api/files/") {
		return true
	}

	return false
}
