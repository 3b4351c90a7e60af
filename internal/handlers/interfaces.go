package handlers

import (
	"context"

	"github.com/dancing/backend/internal/models"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	Search(ctx context.Context, keyword, excludeUserID string) ([]models.User, error)
}

// TokenIssuer signs identity tokens for authenticated users.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// IdentityResolver maps the request context back to the acting user.
type IdentityResolver interface {
	Resolve(ctx context.Context) (models.User, bool)
}

// PostStore captures persistence for text posts and their likes.
type PostStore interface {
	Create(ctx context.Context, post models.Post) error
	FindByID(ctx context.Context, id, viewerID string) (models.Post, error)
	ListAll(ctx context.Context, viewerID string) ([]models.Post, error)
	ListByUser(ctx context.Context, userID, viewerID string) ([]models.Post, error)
	Search(ctx context.Context, keyword, viewerID string) ([]models.Post, error)
	Update(ctx context.Context, id, title, content string) error
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
	LikeUsers(ctx context.Context, postID string) ([]models.User, error)
}

// CommentStore captures persistence for post and video comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListForPost(ctx context.Context, postID string) ([]models.Comment, error)
	ListForVideo(ctx context.Context, videoID string) ([]models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// VideoStore captures persistence for uploaded videos.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	FindByFilePath(ctx context.Context, filePath string) (models.Video, error)
	ListAll(ctx context.Context) ([]models.Video, error)
	ListByUploader(ctx context.Context, uploaderID string) ([]models.Video, error)
	Search(ctx context.Context, keyword string) ([]models.Video, error)
	Delete(ctx context.Context, id string) error
}

// FriendStore captures persistence for friendship edges.
type FriendStore interface {
	Create(ctx context.Context, friendship models.Friendship) error
	FindByPair(ctx context.Context, userID, friendID string) (models.Friendship, error)
	AcceptPending(ctx context.Context, requesterID, recipientID string) error
	DeletePending(ctx context.Context, requesterID, recipientID string) error
	DeleteEdge(ctx context.Context, userID, friendID string) error
	Friends(ctx context.Context, userID string) ([]models.User, error)
	PendingReceived(ctx context.Context, userID string) ([]models.User, error)
	PendingSent(ctx context.Context, userID string) ([]models.User, error)
}

// AssetIngestor schedules background persistence of a staged upload.
type AssetIngestor interface {
	Enqueue(ctx context.Context, videoID, key, stagedPath string) error
}
