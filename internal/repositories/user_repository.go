package repositories

import (
	"context"

	"github.com/dancing/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	Search(ctx context.Context, keyword, excludeUserID string) ([]models.User, error)
}
