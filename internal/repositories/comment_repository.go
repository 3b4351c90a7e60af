package repositories

import (
	"context"

	"github.com/dancing/backend/internal/models"
)

// CommentRepository defines data access for post and video comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListForPost(ctx context.Context, postID string) ([]models.Comment, error)
	ListForVideo(ctx context.Context, videoID string) ([]models.Comment, error)
	Delete(ctx context.Context, id string) error
}
