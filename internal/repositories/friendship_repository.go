package repositories

import (
	"context"

	"github.com/dancing/backend/internal/models"
)

// FriendshipRepository defines data access for the directed friendship edges.
// "Pending" methods operate on a specific directed edge; DeleteEdge removes
// the pair's edge regardless of direction.
type FriendshipRepository interface {
	Create(ctx context.Context, friendship models.Friendship) error
	FindByPair(ctx context.Context, userID, friendID string) (models.Friendship, error)
	AcceptPending(ctx context.Context, requesterID, recipientID string) error
	DeletePending(ctx context.Context, requesterID, recipientID string) error
	DeleteEdge(ctx context.Context, userID, friendID string) error
	Friends(ctx context.Context, userID string) ([]models.User, error)
	PendingReceived(ctx context.Context, userID string) ([]models.User, error)
	PendingSent(ctx context.Context, userID string) ([]models.User, error)
}
