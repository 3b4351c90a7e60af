package handlers

import (
	"net/http"

	"github.com/dancing/backend/internal/calls"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users    UserStore
	Posts    PostStore
	Comments CommentStore
	Videos   VideoStore
	Friends  FriendStore

	Tokens   TokenIssuer
	Identity IdentityResolver
	Limiter  RateLimiter

	Ingestor AssetIngestor
	Files    FileOpener
	FileURL  string

	Rooms *calls.Registry
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux using
// method-qualified patterns.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	users := UserHandler{Users: deps.Users, Tokens: deps.Tokens, Identity: deps.Identity, Limiter: deps.Limiter}
	posts := PostHandler{Posts: deps.Posts, Identity: deps.Identity}
	comments := CommentHandler{Comments: deps.Comments, Posts: deps.Posts, Videos: deps.Videos, Identity: deps.Identity}
	videos := VideoHandler{Videos: deps.Videos, Identity: deps.Identity, Ingestor: deps.Ingestor}
	files := FileHandler{Videos: deps.Videos, Opener: deps.Files, BaseURL: deps.FileURL}
	friends := FriendHandler{Friends: deps.Friends, Users: deps.Users, Identity: deps.Identity}
	callRooms := CallHandler{Rooms: deps.Rooms, Identity: deps.Identity}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/user/register", users.Register)
	mux.HandleFunc("POST /api/user/login", users.Login)
	mux.HandleFunc("GET /api/user/current", users.Current)
	mux.HandleFunc("POST /api/user/logout", users.Logout)
	mux.HandleFunc("POST /api/user/update", users.Update)

	mux.HandleFunc("POST /api/posts/create", posts.Create)
	mux.HandleFunc("GET /api/posts/list", posts.List)
	mux.HandleFunc("GET /api/posts/my", posts.Mine)
	mux.HandleFunc("GET /api/posts/search", posts.Search)
	mux.HandleFunc("GET /api/posts/user/{userId}", posts.ByUser)
	mux.HandleFunc("GET /api/posts/{id}", posts.Detail)
	mux.HandleFunc("PUT /api/posts/{id}", posts.Update)
	mux.HandleFunc("DELETE /api/posts/{id}", posts.Delete)
	mux.HandleFunc("POST /api/posts/{id}/like", posts.ToggleLike)
	mux.HandleFunc("GET /api/posts/{id}/likes", posts.LikeUsers)

	mux.HandleFunc("GET /api/posts/{postId}/comments", comments.ListForPost)
	mux.HandleFunc("POST /api/posts/{postId}/comments", comments.CreateForPost)
	mux.HandleFunc("GET /api/videos/{videoId}/comments", comments.ListForVideo)
	mux.HandleFunc("POST /api/videos/{videoId}/comments", comments.CreateForVideo)
	mux.HandleFunc("DELETE /api/comments/{id}", comments.Delete)

	mux.HandleFunc("GET /api/videos", videos.List)
	mux.HandleFunc("GET /api/videos/my", videos.Mine)
	mux.HandleFunc("GET /api/videos/search", videos.Search)
	mux.HandleFunc("POST /api/videos/upload", videos.Upload)
	mux.HandleFunc("GET /api/videos/{id}", videos.Detail)
	mux.HandleFunc("DELETE /api/videos/{id}", videos.Delete)

	mux.HandleFunc("GET /api/files/video", files.Video)

	mux.HandleFunc("POST /api/friends/search", friends.Search)
	mux.HandleFunc("POST /api/friends/send-request", friends.SendRequest)
	mux.HandleFunc("POST /api/friends/accept", friends.Accept)
	mux.HandleFunc("POST /api/friends/reject", friends.Reject)
	mux.HandleFunc("POST /api/friends/delete", friends.Delete)
	mux.HandleFunc("GET /api/friends/manage", friends.Manage)
	mux.HandleFunc("GET /api/friends/pending", friends.Pending)

	mux.HandleFunc("POST /api/video-call/create-room", callRooms.CreateRoom)
	mux.HandleFunc("GET /api/video-call/room/{roomId}", callRooms.Room)
	mux.HandleFunc("POST /api/video-call/leave-room", callRooms.LeaveRoom)
	mux.HandleFunc("GET /ws/video-call", callRooms.Signaling)
}
