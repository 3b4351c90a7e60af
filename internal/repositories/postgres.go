package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dancing/backend/internal/db"
)

// mapPgError translates PostgreSQL constraint violations into the package's
// sentinel errors. 23505 is unique_violation, 23503 foreign_key_violation.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrConflict
		case "23503":
			return ErrNotFound
		}
	}
	return nil
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// NewPostgresPostRepository constructs a post repository backed by PostgreSQL.
func NewPostgresPostRepository(pool db.Pool) *PostgresPostRepository {
	return &PostgresPostRepository{pool: pool}
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// NewPostgresFriendshipRepository constructs a friendship repository backed by PostgreSQL.
func NewPostgresFriendshipRepository(pool db.Pool) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{pool: pool}
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ PostRepository = (*PostgresPostRepository)(nil)
var _ CommentRepository = (*PostgresCommentRepository)(nil)
var _ VideoRepository = (*PostgresVideoRepository)(nil)
var _ FriendshipRepository = (*PostgresFriendshipRepository)(nil)
