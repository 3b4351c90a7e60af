package repositories

import (
	"context"
	"errors"
	"fmt"

	crdbpgx "github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgxv5"
	"github.com/jackc/pgx/v5"

	"github.com/dancing/backend/internal/db"
	"github.com/dancing/backend/internal/models"
)

// PostgresPostRepository provides PostgreSQL-backed persistence for posts.
type PostgresPostRepository struct {
	pool db.Pool
}

// selectPosts joins the author name and, when a viewer id is supplied as $1,
// whether that viewer has liked each post.
const selectPosts = `
        SELECT p.id, p.title, p.content, p.user_id, u.username, p.likes_count,
               EXISTS(SELECT 1 FROM post_likes pl WHERE pl.post_id = p.id AND pl.user_id = $1) AS liked,
               p.created_at, p.updated_at
        FROM posts p
        JOIN users u ON u.id = p.user_id`

// Create persists a new post.
func (r *PostgresPostRepository) Create(ctx context.Context, post models.Post) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO posts (id, title, content, user_id, likes_count, created_at, updated_at)
        VALUES ($1, $2, $3, $4, 0, $5, $6)
    `, post.ID, post.Title, post.Content, post.UserID, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		if mapped := mapPgError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// FindByID fetches a single post with the viewer's liked flag populated.
func (r *PostgresPostRepository) FindByID(ctx context.Context, id, viewerID string) (models.Post, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Post{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, selectPosts+` WHERE p.id = $2`, viewerID, id)

	var post models.Post
	if err := scanPost(row, &post); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, fmt.Errorf("select post: %w", err)
	}

	return post, nil
}

// ListAll returns every post, newest first.
func (r *PostgresPostRepository) ListAll(ctx context.Context, viewerID string) ([]models.Post, error) {
	return r.list(ctx, selectPosts+` ORDER BY p.created_at DESC LIMIT 200`, viewerID)
}

// ListByUser returns one user's posts, newest first.
func (r *PostgresPostRepository) ListByUser(ctx context.Context, userID, viewerID string) ([]models.Post, error) {
	return r.list(ctx, selectPosts+` WHERE p.user_id = $2 ORDER BY p.created_at DESC`, viewerID, userID)
}

// Search returns posts whose title or content matches the keyword.
func (r *PostgresPostRepository) Search(ctx context.Context, keyword, viewerID string) ([]models.Post, error) {
	return r.list(ctx, selectPosts+`
        WHERE p.title ILIKE '%' || $2 || '%' OR p.content ILIKE '%' || $2 || '%'
        ORDER BY p.created_at DESC LIMIT 200`, viewerID, keyword)
}

func (r *PostgresPostRepository) list(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		if err := scanPost(rows, &post); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

func scanPost(row pgx.Row, post *models.Post) error {
	return row.Scan(&post.ID, &post.Title, &post.Content, &post.UserID, &post.AuthorName,
		&post.LikesCount, &post.Liked, &post.CreatedAt, &post.UpdatedAt)
}

// Update rewrites a post's title and content.
func (r *PostgresPostRepository) Update(ctx context.Context, id, title, content string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE posts
        SET title = $2, content = $3, updated_at = NOW()
        WHERE id = $1
    `, id, title, content)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a post and, via cascading constraints, its likes and comments.
func (r *PostgresPostRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ToggleLike flips the viewer's like on a post. The join-row mutation and the
// counter mutation run in a single transaction so the count can never drift
// from the join table.
func (r *PostgresPostRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var liked bool
	err = crdbpgx.ExecuteTx(ctx, conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `
            SELECT EXISTS(SELECT 1 FROM post_likes WHERE post_id = $1 AND user_id = $2)
        `, postID, userID).Scan(&exists); err != nil {
			return fmt.Errorf("check like: %w", err)
		}

		if exists {
			if _, err := tx.Exec(ctx, `
                DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2
            `, postID, userID); err != nil {
				return fmt.Errorf("remove like: %w", err)
			}
			tag, err := tx.Exec(ctx, `
                UPDATE posts SET likes_count = likes_count - 1 WHERE id = $1
            `, postID)
			if err != nil {
				return fmt.Errorf("decrease likes count: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return ErrNotFound
			}
			liked = false
			return nil
		}

		if _, err := tx.Exec(ctx, `
            INSERT INTO post_likes (post_id, user_id, created_at) VALUES ($1, $2, NOW())
        `, postID, userID); err != nil {
			if mapped := mapPgError(err); mapped != nil {
				return mapped
			}
			return fmt.Errorf("add like: %w", err)
		}
		tag, err := tx.Exec(ctx, `
            UPDATE posts SET likes_count = likes_count + 1 WHERE id = $1
        `, postID)
		if err != nil {
			return fmt.Errorf("increase likes count: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return liked, nil
}

// LikeUsers returns the users who currently like a post.
func (r *PostgresPostRepository) LikeUsers(ctx context.Context, postID string) ([]models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT u.id, u.username, u.password_hash, u.email, u.created_at, u.updated_at
        FROM users u
        JOIN post_likes pl ON pl.user_id = u.id
        WHERE pl.post_id = $1
        ORDER BY pl.created_at DESC
    `, postID)
	if err != nil {
		return nil, fmt.Errorf("query like users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}
