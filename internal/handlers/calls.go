package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/dancing/backend/internal/apperr"
	"github.com/dancing/backend/internal/calls"
	"github.com/dancing/backend/internal/logging"
)

// CallHandler implements the video-call room endpoints and the websocket
// signaling channel.
type CallHandler struct {
	Rooms    *calls.Registry
	Identity IdentityResolver
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Call rooms are joined via signed links from the SPA; origin is not
	// restricted, matching the token-gated REST surface.
	CheckOrigin: func(*http.Request) bool { return true },
}

type createRoomRequest struct {
	RoomID       string `json:"roomId"`
	TargetUserID string `json:"targetUserId"`
}

type leaveRoomRequest struct {
	RoomID string `json:"roomId"`
}

type roomResponse struct {
	Room      calls.Room `json:"room"`
	UserID    string     `json:"userId"`
	Username  string     `json:"username"`
	IsCreator bool       `json:"isCreator"`
}

// CreateRoom handles POST /api/video-call/create-room. Joining an existing
// room id returns that room unchanged.
func (h CallHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindBadRequest, "invalid request body", err))
		return
	}

	room := h.Rooms.CreateOrJoin(strings.TrimSpace(req.RoomID), user.ID, user.Username, strings.TrimSpace(req.TargetUserID))

	logging.FromContext(ctx).Info("call room joined", "roomId", room.ID, "userId", user.ID)
	respondJSON(ctx, w, http.StatusOK, roomResponse{
		Room:      room,
		UserID:    user.ID,
		Username:  user.Username,
		IsCreator: room.CreatorID == user.ID,
	})
}

// Room handles GET /api/video-call/room/{roomId}.
func (h CallHandler) Room(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	room, ok := h.Rooms.Get(r.PathValue("roomId"))
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindNotFound, "room not found"))
		return
	}

	respondJSON(ctx, w, http.StatusOK, room)
}

// LeaveRoom handles POST /api/video-call/leave-room. Any participant leaving
// tears down the whole room.
func (h CallHandler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	var req leaveRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindBadRequest, "invalid request body", err))
		return
	}

	roomID := strings.TrimSpace(req.RoomID)
	if roomID == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "roomId is required"))
		return
	}

	h.Rooms.Leave(roomID, user.ID, user.Username)

	logging.FromContext(ctx).Info("call room left", "roomId", roomID, "userId", user.ID)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "left"})
}

// Signaling handles GET /ws/video-call. The upgraded connection subscribes to
// rooms and relays SDP payloads through the registry.
func (h CallHandler) Signaling(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	calls.NewClient(h.Rooms, conn, logger).Run()
}
