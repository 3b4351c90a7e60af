package auth

import (
	"context"

	"github.com/dancing/backend/internal/logging"
	"github.com/dancing/backend/internal/models"
)

// UserLookup fetches a full user record by username.
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// Resolver maps a validated token subject back to a full user record.
type Resolver struct {
	Users UserLookup
}

// Resolve reads the subject attached by the gate and looks up the user.
// Missing subject, store failure and a deleted account all uniformly yield
// false; callers treat "no identity" the same regardless of cause.
func (r Resolver) Resolve(ctx context.Context) (models.User, bool) {
	username, ok := SubjectFromContext(ctx)
	if !ok || r.Users == nil {
		return models.User{}, false
	}

	user, err := r.Users.FindByUsername(ctx, username)
	if err != nil {
		logging.FromContext(ctx).Warn("identity lookup failed", "username", username, "error", err)
		return models.User{}, false
	}

	return user, true
}
