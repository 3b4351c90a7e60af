package models

import "time"

// User represents an account on the platform. Password holds the bcrypt hash
// and is never serialized.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Post is a text post with a denormalized like counter. Liked reflects the
// viewing user and is populated per request, never persisted.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	UserID     string    `json:"userId"`
	AuthorName string    `json:"authorName"`
	LikesCount int       `json:"likesCount"`
	Liked      bool      `json:"liked"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Comment belongs to exactly one post or one video.
type Comment struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	UserID     string    `json:"userId"`
	AuthorName string    `json:"authorName"`
	PostID     string    `json:"postId,omitempty"`
	VideoID    string    `json:"videoId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Video is an uploaded clip. FilePath and ThumbnailPath are object-store keys;
// AssetStatus tracks background persistence of the uploaded bytes.
type Video struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	FilePath      string    `json:"filePath"`
	ThumbnailPath string    `json:"thumbnailPath"`
	UploaderID    string    `json:"uploaderId"`
	UploaderName  string    `json:"uploaderName"`
	AssetStatus   string    `json:"assetStatus"`
	CreatedAt     time.Time `json:"createdAt"`
}

const (
	AssetStatusPending = "pending"
	AssetStatusReady   = "ready"
	AssetStatusFailed  = "failed"
)

// Friendship is a directed edge from the requesting user to the receiving
// user. At most one edge exists per unordered pair.
type Friendship struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FriendID  string    `json:"friendId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// FriendOverview aggregates everything the friends management screen needs.
type FriendOverview struct {
	Friends         []User `json:"friends"`
	PendingRequests []User `json:"pendingRequests"`
	SentRequests    []User `json:"sentRequests"`
	PendingCount    int    `json:"pendingCount"`
}
