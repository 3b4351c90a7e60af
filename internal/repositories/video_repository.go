package repositories

import (
	"context"

	"github.com/dancing/backend/internal/models"
)

// VideoRepository defines data access for uploaded videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	FindByFilePath(ctx context.Context, filePath string) (models.Video, error)
	ListAll(ctx context.Context) ([]models.Video, error)
	ListByUploader(ctx context.Context, uploaderID string) ([]models.Video, error)
	Search(ctx context.Context, keyword string) ([]models.Video, error)
	Delete(ctx context.Context, id string) error
	MarkAssetReady(ctx context.Context, id string) error
	MarkAssetFailed(ctx context.Context, id string) error
}
