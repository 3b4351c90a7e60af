package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dancing/backend/internal/db"
	"github.com/dancing/backend/internal/models"
)

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

const selectComments = `
        SELECT c.id, c.content, c.user_id, u.username, c.post_id, c.video_id, c.created_at
        FROM comments c
        JOIN users u ON u.id = c.user_id`

// Create persists a new comment attached to either a post or a video.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, content, user_id, post_id, video_id, created_at)
        VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
    `, comment.ID, comment.Content, comment.UserID, comment.PostID, comment.VideoID, comment.CreatedAt)
	if err != nil {
		if mapped := mapPgError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

// FindByID fetches a comment by id.
func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, selectComments+` WHERE c.id = $1`, id)

	comment, err := scanComment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("select comment: %w", err)
	}

	return comment, nil
}

// ListForPost returns a post's comments, newest first.
func (r *PostgresCommentRepository) ListForPost(ctx context.Context, postID string) ([]models.Comment, error) {
	return r.list(ctx, selectComments+` WHERE c.post_id = $1 ORDER BY c.created_at DESC`, postID)
}

// ListForVideo returns a video's comments, newest first.
func (r *PostgresCommentRepository) ListForVideo(ctx context.Context, videoID string) ([]models.Comment, error) {
	return r.list(ctx, selectComments+` WHERE c.video_id = $1 ORDER BY c.created_at DESC`, videoID)
}

func (r *PostgresCommentRepository) list(ctx context.Context, query string, args ...any) ([]models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

func scanComment(row pgx.Row) (models.Comment, error) {
	var (
		comment models.Comment
		postID  sql.NullString
		videoID sql.NullString
	)
	if err := row.Scan(&comment.ID, &comment.Content, &comment.UserID, &comment.AuthorName,
		&postID, &videoID, &comment.CreatedAt); err != nil {
		return models.Comment{}, err
	}
	comment.PostID = postID.String
	comment.VideoID = videoID.String
	return comment, nil
}

// Delete removes a comment by id.
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
