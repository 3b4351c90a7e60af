package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dancing/backend/internal/calls"
	"github.com/dancing/backend/internal/models"
)

func TestCallHandlerCreateRoomSynthesizesID(t *testing.T) {
	registry := calls.NewRegistry()
	handler := CallHandler{Rooms: registry, Identity: identityAs(models.User{ID: "user-1", Username: "alice"})}

	body, _ := json.Marshal(createRoomRequest{TargetUserID: "user-2"})
	req := httptest.NewRequest(http.MethodPost, "/api/video-call/create-room", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateRoom(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp roomResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.Room.ID, "room_") || !strings.HasSuffix(resp.Room.ID, "_user-1") {
		t.Fatalf("unexpected synthesized room id %q", resp.Room.ID)
	}
	if !resp.IsCreator {
		t.Fatal("creator flag should be set for the creating user")
	}
	if resp.Room.TargetUserID != "user-2" {
		t.Fatalf("target user not recorded: %+v", resp.Room)
	}
}

func TestCallHandlerJoinExistingRoom(t *testing.T) {
	registry := calls.NewRegistry()
	room := registry.CreateOrJoin("room-1", "user-1", "alice", "")

	handler := CallHandler{Rooms: registry, Identity: identityAs(models.User{ID: "user-2", Username: "bob"})}

	body, _ := json.Marshal(createRoomRequest{RoomID: "room-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/video-call/create-room", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateRoom(rec, req)

	var resp roomResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Room.CreatorID != room.CreatorID {
		t.Fatalf("joining must not overwrite room metadata: %+v", resp.Room)
	}
	if resp.IsCreator {
		t.Fatal("joining user is not the creator")
	}
}

func TestCallHandlerRoomNotFound(t *testing.T) {
	handler := CallHandler{Rooms: calls.NewRegistry(), Identity: anonymous()}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/video-call/room/{roomId}", handler.Room)

	req := httptest.NewRequest(http.MethodGet, "/api/video-call/room/missing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestCallHandlerLeaveRoomTearsDown(t *testing.T) {
	registry := calls.NewRegistry()
	registry.CreateOrJoin("room-1", "user-1", "alice", "")

	handler := CallHandler{Rooms: registry, Identity: identityAs(models.User{ID: "user-2", Username: "bob"})}

	body, _ := json.Marshal(leaveRoomRequest{RoomID: "room-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/video-call/leave-room", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.LeaveRoom(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if _, ok := registry.Get("room-1"); ok {
		t.Fatal("any participant leaving tears down the whole room")
	}
}

func TestCallHandlerSignalingRelay(t *testing.T) {
	registry := calls.NewRegistry()
	registry.CreateOrJoin("room-1", "user-1", "alice", "")

	handler := CallHandler{Rooms: registry, Identity: identityAs(models.User{ID: "user-1", Username: "alice"})}

	server := httptest.NewServer(http.HandlerFunc(handler.Signaling))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	receiver, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial receiver: %v", err)
	}
	defer receiver.Close()

	sender, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial sender: %v", err)
	}
	defer sender.Close()

	if err := receiver.WriteJSON(map[string]any{"type": "subscribe", "roomId": "room-1"}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// The subscribe message is processed by the read pump; send only once it
	// has registered, so a single read suffices on the receiver side.
	deadline := time.Now().Add(5 * time.Second)
	for registry.SubscriberCount("room-1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription was never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	offer := map[string]any{"type": "offer", "roomId": "room-1", "sdp": "v=0"}
	if err := sender.WriteJSON(offer); err != nil {
		t.Fatalf("send offer: %v", err)
	}

	var received map[string]any
	_ = receiver.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := receiver.ReadJSON(&received); err != nil {
		t.Fatalf("read relayed offer: %v", err)
	}

	if received["type"] != "offer" || received["sdp"] != "v=0" {
		t.Fatalf("offer not relayed verbatim: %v", received)
	}
}
