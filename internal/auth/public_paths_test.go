package auth

import "testing"

func TestIsPublicPathClassification(t *testing.T) {
	cases := []struct {
		path   string
		public bool
	}{
		{"/healthz", true},
		{"/api/user/register", true},
		{"/api/user/login", true},
		{"/api/user/current", true},
		{"/api/user/update", false},
		{"/api/posts/list", true},
		{"/api/posts/search", true},
		{"/api/posts/8f14e45f-ceea-467f-a0f6-7b7a4c2e9d31", true},
		{"/api/posts/42", true},
		{"/api/posts/create", false},
		{"/api/posts/my", false},
		{"/api/videos", true},
		{"/api/videos/search", true},
		{"/api/videos/42", true},
		{"/api/videos/upload", false},
		{"/api/videos/my", false},
		{"/api/files/video", true},
		{"/api/friends/manage", false},
		{"/api/video-call/create-room", false},
		{"/ws/video-call", true},
	}

	for _, tc := range cases {
		if got := IsPublicPath(tc.path); got != tc.public {
			t.Errorf("IsPublicPath(%q) = %v, want %v", tc.path, got, tc.public)
		}
	}
}
