package calls

import (
	"fmt"
	"sync"
	"time"
)

// Message is an opaque signaling payload. The registry inspects only the
// roomId field; SDP offers, answers and ICE candidates pass through verbatim.
type Message map[string]any

// RoomID extracts the room identifier carried by a signaling message.
func (m Message) RoomID() string {
	roomID, _ := m["roomId"].(string)
	return roomID
}

// Room holds the metadata for one ad-hoc call session. Rooms are ephemeral
// and process-lifetime scoped; they are never persisted.
type Room struct {
	ID           string    `json:"roomId"`
	CreatorID    string    `json:"creatorId"`
	CreatorName  string    `json:"creatorName"`
	TargetUserID string    `json:"targetUserId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Subscription represents one party interested in a room's signaling traffic.
// Delivery is best-effort: a subscriber that cannot keep up has messages
// dropped rather than blocking the broadcast for others.
type Subscription struct {
	roomID string
	ch     chan<- Message
}

// Registry owns the process-wide room table and the per-room subscriber sets.
// It is injected into handlers rather than accessed as global state.
type Registry struct {
	mu      sync.Mutex
	rooms   map[string]Room
	subs    map[string]map[*Subscription]struct{}
	nowFunc func() time.Time
}

// NewRegistry constructs an empty room registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:   make(map[string]Room),
		subs:    make(map[string]map[*Subscription]struct{}),
		nowFunc: time.Now,
	}
}

// CreateOrJoin returns the room for roomID, creating it if absent. An empty
// roomID synthesizes one from the current time and the creator id. Joining an
// existing room never overwrites its metadata.
func (r *Registry) CreateOrJoin(roomID, creatorID, creatorName, targetUserID string) Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	if roomID == "" {
		roomID = fmt.Sprintf("room_%d_%s", now.UnixNano(), creatorID)
	}

	if room, ok := r.rooms[roomID]; ok {
		return room
	}

	room := Room{
		ID:           roomID,
		CreatorID:    creatorID,
		CreatorName:  creatorName,
		TargetUserID: targetUserID,
		CreatedAt:    now,
	}
	r.rooms[roomID] = room
	return room
}

// Get looks up a room by id.
func (r *Registry) Get(roomID string) (Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	return room, ok
}

// Leave broadcasts a user-left event to the room's subscribers and then
// removes the room. Any single participant leaving tears down the whole room;
// rooms model one ad-hoc call, not a persistent channel.
func (r *Registry) Leave(roomID, actorID, actorName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomID]; !ok {
		return
	}

	r.publishLocked(roomID, Message{
		"type":      "user-left",
		"roomId":    roomID,
		"userId":    actorID,
		"username":  actorName,
		"timestamp": r.nowFunc().UnixMilli(),
	})

	delete(r.rooms, roomID)
}

// Relay forwards the message verbatim to every current subscriber of the room
// id it carries. An unknown or missing room id is a silent no-op; the sender's
// membership in the room is not checked.
func (r *Registry) Relay(message Message) {
	roomID := message.RoomID()
	if roomID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.publishLocked(roomID, message)
}

// Subscribe registers ch to receive all traffic for roomID. The room does not
// need to exist; subscriptions outlive room teardown until Unsubscribe.
func (r *Registry) Subscribe(roomID string, ch chan<- Message) *Subscription {
	sub := &Subscription{roomID: roomID, ch: ch}

	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.subs[roomID]
	if !ok {
		set = make(map[*Subscription]struct{})
		r.subs[roomID] = set
	}
	set[sub] = struct{}{}
	return sub
}

// SubscriberCount reports how many subscriptions are registered for roomID.
func (r *Registry) SubscriberCount(roomID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[roomID])
}

// Unsubscribe removes a previously registered subscription.
func (r *Registry) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.subs[sub.roomID]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(r.subs, sub.roomID)
	}
}

func (r *Registry) publishLocked(roomID string, message Message) {
	for sub := range r.subs[roomID] {
		select {
		case sub.ch <- message:
		default:
			// Subscriber buffer full; drop for this subscriber only.
		}
	}
}
