package calls

import (
	"sync"
	"testing"
	"time"
)

func TestCreateOrJoinIsIdempotent(t *testing.T) {
	registry := NewRegistry()

	first := registry.CreateOrJoin("r1", "u1", "alice", "u2")
	second := registry.CreateOrJoin("r1", "u9", "mallory", "")

	if second.CreatorID != first.CreatorID || second.CreatorName != first.CreatorName {
		t.Fatalf("join must not overwrite creator: %+v vs %+v", first, second)
	}
	if second.TargetUserID != "u2" {
		t.Fatalf("expected target u2 got %q", second.TargetUserID)
	}
}

func TestCreateOrJoinSynthesizesDistinctIDs(t *testing.T) {
	registry := NewRegistry()

	first := registry.CreateOrJoin("", "u7", "alice", "")
	second := registry.CreateOrJoin("", "u7", "alice", "")

	if first.ID == "" || second.ID == "" {
		t.Fatal("expected synthesized room ids")
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct synthesized ids, both %q", first.ID)
	}
}

func TestLeaveTearsDownWholeRoom(t *testing.T) {
	registry := NewRegistry()
	registry.CreateOrJoin("r1", "u1", "alice", "u2")

	ch := make(chan Message, 4)
	registry.Subscribe("r1", ch)
	other := make(chan Message, 4)
	registry.Subscribe("r1", other)

	registry.Leave("r1", "u2", "bob")

	if _, ok := registry.Get("r1"); ok {
		t.Fatal("expected room removed after any participant leaves")
	}

	for _, sub := range []chan Message{ch, other} {
		select {
		case msg := <-sub:
			if msg["type"] != "user-left" || msg["userId"] != "u2" || msg["username"] != "bob" {
				t.Fatalf("unexpected user-left payload: %+v", msg)
			}
			if _, ok := msg["timestamp"].(int64); !ok {
				t.Fatalf("expected timestamp in payload: %+v", msg)
			}
		default:
			t.Fatal("expected user-left broadcast to every subscriber")
		}
	}
}

func TestLeaveUnknownRoomIsNoOp(t *testing.T) {
	registry := NewRegistry()
	ch := make(chan Message, 1)
	registry.Subscribe("ghost", ch)

	registry.Leave("ghost", "u1", "alice")

	select {
	case msg := <-ch:
		t.Fatalf("expected no broadcast for unknown room, got %+v", msg)
	default:
	}
}

func TestRelayForwardsVerbatim(t *testing.T) {
	registry := NewRegistry()
	registry.CreateOrJoin("r1", "u1", "alice", "")

	ch := make(chan Message, 1)
	registry.Subscribe("r1", ch)

	payload := Message{"roomId": "r1", "type": "ice-candidate", "candidate": "candidate:1 1 udp"}
	registry.Relay(payload)

	select {
	case msg := <-ch:
		if msg["candidate"] != "candidate:1 1 udp" {
			t.Fatalf("payload not forwarded verbatim: %+v", msg)
		}
	default:
		t.Fatal("expected relayed message")
	}
}

func TestRelayToUnknownRoomIsSilentNoOp(t *testing.T) {
	registry := NewRegistry()
	// No room and no subscribers exist; delivery is simply zero-recipient.
	registry.Relay(Message{"roomId": "r1", "type": "ice-candidate"})
	registry.Relay(Message{"type": "offer"})
}

func TestRelayDropsForSlowSubscriberOnly(t *testing.T) {
	registry := NewRegistry()

	full := make(chan Message) // no buffer, never drained
	healthy := make(chan Message, 1)
	registry.Subscribe("r1", full)
	registry.Subscribe("r1", healthy)

	registry.Relay(Message{"roomId": "r1", "type": "offer"})

	select {
	case <-healthy:
	default:
		t.Fatal("healthy subscriber should receive despite a stuck peer")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	registry := NewRegistry()
	ch := make(chan Message, 1)
	sub := registry.Subscribe("r1", ch)
	if got := registry.SubscriberCount("r1"); got != 1 {
		t.Fatalf("expected 1 subscriber got %d", got)
	}
	registry.Unsubscribe(sub)
	if got := registry.SubscriberCount("r1"); got != 0 {
		t.Fatalf("expected 0 subscribers got %d", got)
	}

	registry.Relay(Message{"roomId": "r1", "type": "offer"})

	select {
	case msg := <-ch:
		t.Fatalf("expected no delivery after unsubscribe, got %+v", msg)
	default:
	}
}

func TestConcurrentCreateOrJoinSingleRoom(t *testing.T) {
	registry := NewRegistry()

	const workers = 32
	results := make([]Room, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = registry.CreateOrJoin("shared", "u1", "alice", "")
		}(i)
	}
	wg.Wait()

	for i, room := range results {
		if room.CreatorID != "u1" || room.ID != "shared" {
			t.Fatalf("worker %d observed inconsistent room: %+v", i, room)
		}
	}
}

func TestConcurrentLeaveAndJoinKeepTableConsistent(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			registry.CreateOrJoin("contended", "u1", "alice", "")
		}()
		go func() {
			defer wg.Done()
			registry.Leave("contended", "u1", "alice")
		}()
	}
	wg.Wait()

	// Whatever interleaving happened, the entry is either absent or complete.
	if room, ok := registry.Get("contended"); ok {
		if room.ID != "contended" || room.CreatorID != "u1" {
			t.Fatalf("corrupted room entry: %+v", room)
		}
	}
}

func TestSynthesizedIDEmbedsCreator(t *testing.T) {
	registry := NewRegistry()
	registry.nowFunc = func() time.Time { return time.Unix(0, 1700000000000000000) }

	room := registry.CreateOrJoin("", "u7", "alice", "")
	if want := "room_1700000000000000000_u7"; room.ID != want {
		t.Fatalf("expected %q got %q", want, room.ID)
	}
}
