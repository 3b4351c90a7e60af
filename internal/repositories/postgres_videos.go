package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dancing/backend/internal/db"
	"github.com/dancing/backend/internal/models"
)

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

const selectVideos = `
        SELECT v.id, v.title, v.description, v.file_path, v.thumbnail_path,
               v.uploader_id, u.username, v.asset_status, v.created_at
        FROM videos v
        JOIN users u ON u.id = v.uploader_id`

// Create persists a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, title, description, file_path, thumbnail_path, uploader_id, asset_status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, video.ID, video.Title, video.Description, video.FilePath, video.ThumbnailPath,
		video.UploaderID, video.AssetStatus, video.CreatedAt)
	if err != nil {
		if mapped := mapPgError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a video by id.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	return r.findBy(ctx, ` WHERE v.id = $1`, id)
}

// FindByFilePath fetches a video by its object-store key.
func (r *PostgresVideoRepository) FindByFilePath(ctx context.Context, filePath string) (models.Video, error) {
	return r.findBy(ctx, ` WHERE v.file_path = $1`, filePath)
}

func (r *PostgresVideoRepository) findBy(ctx context.Context, predicate string, arg any) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, selectVideos+predicate, arg)

	var video models.Video
	if err := scanVideo(row, &video); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// ListAll returns every video, newest first.
func (r *PostgresVideoRepository) ListAll(ctx context.Context) ([]models.Video, error) {
	return r.list(ctx, selectVideos+` ORDER BY v.created_at DESC LIMIT 200`)
}

// ListByUploader returns one user's uploads, newest first.
func (r *PostgresVideoRepository) ListByUploader(ctx context.Context, uploaderID string) ([]models.Video, error) {
	return r.list(ctx, selectVideos+` WHERE v.uploader_id = $1 ORDER BY v.created_at DESC`, uploaderID)
}

// Search returns videos whose title or description matches the keyword.
func (r *PostgresVideoRepository) Search(ctx context.Context, keyword string) ([]models.Video, error) {
	return r.list(ctx, selectVideos+`
        WHERE v.title ILIKE '%' || $1 || '%' OR v.description ILIKE '%' || $1 || '%'
        ORDER BY v.created_at DESC LIMIT 200`, keyword)
}

func (r *PostgresVideoRepository) list(ctx context.Context, query string, args ...any) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := scanVideo(rows, &video); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}

func scanVideo(row pgx.Row, video *models.Video) error {
	return row.Scan(&video.ID, &video.Title, &video.Description, &video.FilePath, &video.ThumbnailPath,
		&video.UploaderID, &video.UploaderName, &video.AssetStatus, &video.CreatedAt)
}

// Delete removes a video and its comments via cascading constraints.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkAssetReady records that the uploaded bytes reached durable storage.
func (r *PostgresVideoRepository) MarkAssetReady(ctx context.Context, id string) error {
	return r.setAssetStatus(ctx, id, models.AssetStatusReady)
}

// MarkAssetFailed records that background persistence gave up on the upload.
func (r *PostgresVideoRepository) MarkAssetFailed(ctx context.Context, id string) error {
	return r.setAssetStatus(ctx, id, models.AssetStatusFailed)
}

func (r *PostgresVideoRepository) setAssetStatus(ctx context.Context, id, status string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE videos SET asset_status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update asset status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
