package hub

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h
}

func TestBroadcastToRoomOnlyReachesRoom(t *testing.T) {
	h := newTestHub(t)
	a := NewClient(h, nil, TournamentRoom("t1"))
	b := NewClient(h, nil, TournamentRoom("t2"))
	h.Register <- a
	h.Register <- b

	waitFor(t, func() bool { return h.RoomSize(TournamentRoom("t1")) == 1 && h.RoomSize(TournamentRoom("t2")) == 1 })

	h.BroadcastToRoom(TournamentRoom("t1"), Message{Type: TypeClockUpdated, Payload: map[string]int{"remainingSeconds": 42}})

	select {
	case raw := <-a.Send:
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]int `json:"payload"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Type != TypeClockUpdated || msg.Payload["remainingSeconds"] != 42 {
			t.Errorf("unexpected message: %s", raw)
		}
	case <-time.After(time.Second):
		t.Fatal("client in room did not receive the message")
	}

	select {
	case raw := <-b.Send:
		t.Errorf("client in another room received %s", raw)
	default:
	}
}

func TestUnregisterClosesSendAndDropsEmptyRoom(t *testing.T) {
	h := newTestHub(t)
	c := NewClient(h, nil, ShopRoom("s1"))
	h.Register <- c
	h.Unregister <- c

	waitFor(t, func() bool { return h.RoomSize(ShopRoom("s1")) == 0 })
	if _, ok := <-c.Send; ok {
		t.Errorf("expected Send to be closed")
	}

	// Broadcasting to an empty room is a no-op.
	h.BroadcastToRoom(ShopRoom("s1"), Message{Type: TypeOccupancyUpdated})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
