package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dancing/backend/internal/apperr"
	"github.com/dancing/backend/internal/logging"
	"github.com/dancing/backend/internal/models"
	"github.com/dancing/backend/internal/policy"
	"github.com/dancing/backend/internal/repositories"
)

// FriendHandler implements friendship management. Requests are directed
// edges; at most one edge exists per pair, so a request in the reverse
// direction of an existing one is rejected.
type FriendHandler struct {
	Friends  FriendStore
	Users    UserStore
	Identity IdentityResolver
	NowFunc  func() time.Time
}

type friendSearchRequest struct {
	Keyword string `json:"keyword"`
}

type friendTargetRequest struct {
	FriendID string `json:"friendId"`
}

// Search handles POST /api/friends/search.
func (h FriendHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	var req friendSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindBadRequest, "invalid request body", err))
		return
	}

	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "keyword is required"))
		return
	}

	users, err := h.Users.Search(ctx, keyword, user.ID)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "search users", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, usersPayload(users))
}

// SendRequest handles POST /api/friends/send-request.
func (h FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	friendID, err := decodeFriendTarget(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if friendID == user.ID {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "cannot send a friend request to yourself"))
		return
	}

	if _, err := h.Users.FindByID(ctx, friendID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.New(apperr.KindNotFound, "user not found"))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "load user", err))
		return
	}

	if _, err := h.Friends.FindByPair(ctx, user.ID, friendID); err == nil {
		respondError(ctx, w, apperr.New(apperr.KindConflict, "a friend request already exists between these users"))
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "check friendship", err))
		return
	}

	now := h.now()
	friendship := models.Friendship{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		FriendID:  friendID,
		Status:    models.FriendshipPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Friends.Create(ctx, friendship); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, apperr.New(apperr.KindConflict, "a friend request already exists between these users"))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "create friendship", err))
		return
	}

	logging.FromContext(ctx).Info("friend request sent", "userId", user.ID, "friendId", friendID)
	respondJSON(ctx, w, http.StatusCreated, friendship)
}

// Accept handles POST /api/friends/accept. Only the recipient of the pending
// request may accept it.
func (h FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, true)
}

// Reject handles POST /api/friends/reject. Only the recipient may reject;
// rejecting removes the pending edge.
func (h FriendHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, false)
}

func (h FriendHandler) respond(w http.ResponseWriter, r *http.Request, accept bool) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	friendID, err := decodeFriendTarget(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	edge, err := h.Friends.FindByPair(ctx, user.ID, friendID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.New(apperr.KindNotFound, "friend request not found"))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "load friendship", err))
		return
	}

	if edge.Status != models.FriendshipPending {
		respondError(ctx, w, apperr.New(apperr.KindConflict, "friend request already handled"))
		return
	}

	if !policy.CanRespondToRequest(user.ID, edge.UserID, edge.FriendID) {
		respondError(ctx, w, apperr.New(apperr.KindForbidden, "only the recipient can respond to this request"))
		return
	}

	if accept {
		err = h.Friends.AcceptPending(ctx, edge.UserID, edge.FriendID)
	} else {
		err = h.Friends.DeletePending(ctx, edge.UserID, edge.FriendID)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.New(apperr.KindNotFound, "friend request not found"))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "update friendship", err))
		return
	}

	status := "rejected"
	if accept {
		status = "accepted"
	}
	logging.FromContext(ctx).Info("friend request "+status, "userId", user.ID, "friendId", friendID)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": status})
}

// Delete handles POST /api/friends/delete. Removes the pair's edge in
// whichever direction it exists.
func (h FriendHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	friendID, err := decodeFriendTarget(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Friends.DeleteEdge(ctx, user.ID, friendID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.New(apperr.KindNotFound, "friendship not found"))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "delete friendship", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Manage handles GET /api/friends/manage.
func (h FriendHandler) Manage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	friends, err := h.Friends.Friends(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "list friends", err))
		return
	}
	received, err := h.Friends.PendingReceived(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "list pending requests", err))
		return
	}
	sent, err := h.Friends.PendingSent(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "list sent requests", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, models.FriendOverview{
		Friends:         usersPayload(friends),
		PendingRequests: usersPayload(received),
		SentRequests:    usersPayload(sent),
		PendingCount:    len(received),
	})
}

// Pending handles GET /api/friends/pending.
func (h FriendHandler) Pending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	received, err := h.Friends.PendingReceived(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "list pending requests", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, usersPayload(received))
}

func decodeFriendTarget(r *http.Request) (string, error) {
	var req friendTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", apperr.Wrap(apperr.KindBadRequest, "invalid request body", err)
	}
	friendID := strings.TrimSpace(req.FriendID)
	if friendID == "" {
		return "", apperr.New(apperr.KindBadRequest, "friendId is required")
	}
	return friendID, nil
}

func usersPayload(users []models.User) []models.User {
	if users == nil {
		return []models.User{}
	}
	return users
}

func (h FriendHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
