package repositories

import (
	"context"

	"github.com/dancing/backend/internal/models"
)

// PostRepository defines data access for posts and their likes. Read methods
// take a viewerID (possibly empty) used to populate the Liked flag.
type PostRepository interface {
	Create(ctx context.Context, post models.Post) error
	FindByID(ctx context.Context, id, viewerID string) (models.Post, error)
	ListAll(ctx context.Context, viewerID string) ([]models.Post, error)
	ListByUser(ctx context.Context, userID, viewerID string) ([]models.Post, error)
	Search(ctx context.Context, keyword, viewerID string) ([]models.Post, error)
	Update(ctx context.Context, id, title, content string) error
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID, userID string) (liked bool, err error)
	LikeUsers(ctx context.Context, postID string) ([]models.User, error)
}
