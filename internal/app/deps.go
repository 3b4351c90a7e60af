package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dancing/backend/internal/auth"
	"github.com/dancing/backend/internal/calls"
	"github.com/dancing/backend/internal/config"
	"github.com/dancing/backend/internal/db"
	"github.com/dancing/backend/internal/handlers"
	"github.com/dancing/backend/internal/middleware"
	"github.com/dancing/backend/internal/repositories"
	"github.com/dancing/backend/internal/storage"
	"github.com/dancing/backend/internal/token"
	"github.com/dancing/backend/internal/uploads"
)

// buildDependencies wires together the concrete implementations used by the
// HTTP handlers. The returned cleanup drains the background ingestor.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, codec *token.Codec, logger *slog.Logger) (handlers.Dependencies, func(context.Context) error, error) {
	users := repositories.NewPostgresUserRepository(pool)
	posts := repositories.NewPostgresPostRepository(pool)
	comments := repositories.NewPostgresCommentRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	friends := repositories.NewPostgresFriendshipRepository(pool)

	deps := handlers.Dependencies{
		Users:    users,
		Posts:    posts,
		Comments: comments,
		Videos:   videos,
		Friends:  friends,
		Tokens:   codec,
		Identity: auth.Resolver{Users: users},
		Limiter: middleware.NewIPRateLimiter(
			cfg.AuthRateLimit.Requests,
			cfg.AuthRateLimit.Window,
			cfg.AuthRateLimit.Burst,
			cfg.AuthRateLimit.TTL,
		),
		FileURL: strings.TrimSuffix(cfg.ObjectStore.PublicBaseURL, "/"),
		Rooms:   calls.NewRegistry(),
	}

	cleanup := func(context.Context) error { return nil }

	if strings.TrimSpace(cfg.ObjectStore.Bucket) != "" {
		assetStorage, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, nil, fmt.Errorf("configure object storage: %w", err)
		}

		ingestor := uploads.NewIngestor(assetStorage, videos, uploads.IngestorConfig{
			QueueSize: cfg.IngestQueueSize,
			Workers:   cfg.IngestWorkers,
		}, logger)

		deps.Ingestor = ingestor
		deps.Files = assetStorage
		cleanup = ingestor.Shutdown
	}

	return deps, cleanup, nil
}
