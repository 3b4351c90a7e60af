package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dancing/backend/internal/db"
	"github.com/dancing/backend/internal/models"
)

// PostgresFriendshipRepository provides PostgreSQL-backed persistence for
// friendship edges. A partial unique index on the ordered pair keeps at most
// one edge per pair of users.
type PostgresFriendshipRepository struct {
	pool db.Pool
}

// Create persists a new directed friendship edge. The unique index on
// LEAST/GREATEST of the pair rejects a duplicate request in either direction
// with ErrConflict.
func (r *PostgresFriendshipRepository) Create(ctx context.Context, friendship models.Friendship) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO friendships (id, user_id, friend_id, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, friendship.ID, friendship.UserID, friendship.FriendID, friendship.Status,
		friendship.CreatedAt, friendship.UpdatedAt)
	if err != nil {
		if mapped := mapPgError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert friendship: %w", err)
	}

	return nil
}

// FindByPair fetches the edge between two users regardless of direction.
func (r *PostgresFriendshipRepository) FindByPair(ctx context.Context, userID, friendID string) (models.Friendship, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Friendship{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, user_id, friend_id, status, created_at, updated_at
        FROM friendships
        WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
    `, userID, friendID)

	var friendship models.Friendship
	if err := row.Scan(&friendship.ID, &friendship.UserID, &friendship.FriendID,
		&friendship.Status, &friendship.CreatedAt, &friendship.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Friendship{}, ErrNotFound
		}
		return models.Friendship{}, fmt.Errorf("select friendship: %w", err)
	}

	return friendship, nil
}

// AcceptPending promotes the directed pending edge from requester to recipient.
// ErrNotFound when no such pending edge exists.
func (r *PostgresFriendshipRepository) AcceptPending(ctx context.Context, requesterID, recipientID string) error {
	return r.exec(ctx, `
        UPDATE friendships
        SET status = $3, updated_at = NOW()
        WHERE user_id = $1 AND friend_id = $2 AND status = $4
    `, requesterID, recipientID, models.FriendshipAccepted, models.FriendshipPending)
}

// DeletePending removes the directed pending edge from requester to recipient.
func (r *PostgresFriendshipRepository) DeletePending(ctx context.Context, requesterID, recipientID string) error {
	return r.exec(ctx, `
        DELETE FROM friendships
        WHERE user_id = $1 AND friend_id = $2 AND status = $3
    `, requesterID, recipientID, models.FriendshipPending)
}

// DeleteEdge removes the pair's edge in whichever direction it exists.
func (r *PostgresFriendshipRepository) DeleteEdge(ctx context.Context, userID, friendID string) error {
	return r.exec(ctx, `
        DELETE FROM friendships
        WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
    `, userID, friendID)
}

func (r *PostgresFriendshipRepository) exec(ctx context.Context, query string, args ...any) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("modify friendship: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Friends returns the users connected to userID by an accepted edge in either
// direction.
func (r *PostgresFriendshipRepository) Friends(ctx context.Context, userID string) ([]models.User, error) {
	return r.listUsers(ctx, `
        SELECT u.id, u.username, u.password_hash, u.email, u.created_at, u.updated_at
        FROM friendships f
        JOIN users u ON u.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
        WHERE (f.user_id = $1 OR f.friend_id = $1) AND f.status = $2
        ORDER BY u.username
    `, userID, models.FriendshipAccepted)
}

// PendingReceived returns the users who have sent userID a request that is
// still pending.
func (r *PostgresFriendshipRepository) PendingReceived(ctx context.Context, userID string) ([]models.User, error) {
	return r.listUsers(ctx, `
        SELECT u.id, u.username, u.password_hash, u.email, u.created_at, u.updated_at
        FROM friendships f
        JOIN users u ON u.id = f.user_id
        WHERE f.friend_id = $1 AND f.status = $2
        ORDER BY f.created_at DESC
    `, userID, models.FriendshipPending)
}

// PendingSent returns the users userID has sent a still-pending request to.
func (r *PostgresFriendshipRepository) PendingSent(ctx context.Context, userID string) ([]models.User, error) {
	return r.listUsers(ctx, `
        SELECT u.id, u.username, u.password_hash, u.email, u.created_at, u.updated_at
        FROM friendships f
        JOIN users u ON u.id = f.friend_id
        WHERE f.user_id = $1 AND f.status = $2
        ORDER BY f.created_at DESC
    `, userID, models.FriendshipPending)
}

func (r *PostgresFriendshipRepository) listUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query friendships: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}
