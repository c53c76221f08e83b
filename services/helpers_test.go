package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/Dosada05/pokernow/events"
	"github.com/Dosada05/pokernow/lock"
	"github.com/Dosada05/pokernow/models"
	"github.com/Dosada05/pokernow/repositories"
)

var (
	admin  = models.Session{PlayerID: "staff", Role: models.RoleAdmin}
	player = models.Session{PlayerID: "p1", Role: models.RolePlayer}
)

type recordedBroadcast struct {
	room    string
	message interface{}
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []recordedBroadcast
}

func (b *recordingBroadcaster) BroadcastToRoom(room string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, recordedBroadcast{room: room, message: message})
}

func (b *recordingBroadcaster) count(room string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, s := range b.sent {
		if s.room == room {
			n++
		}
	}
	return n
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	store       *repositories.MemoryStore
	broadcaster *recordingBroadcaster
	publisher   *recordingPublisher
	tournaments TournamentService
	seatings    SeatingService
	tables      TableService
	dashboard   DashboardService
	auth        AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repositories.NewMemoryStore()
	locker := lock.NewKeyedMutex()
	b := &recordingBroadcaster{}
	p := &recordingPublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := &testEnv{
		store:       store,
		broadcaster: b,
		publisher:   p,
		tournaments: NewTournamentService(store.Tournaments(), store.Shops(), store.Transactor(), locker, b, p, logger),
		seatings: NewSeatingService(store.Seatings(), store.Tables(), store.Shops(), store.Players(),
			store.Transactor(), locker, b, p, logger),
		tables:    NewTableService(store.Tables(), store.Seatings(), store.Shops(), store.Transactor(), locker, nil, p, logger),
		dashboard: NewDashboardService(store.Shops(), store.Tables(), store.Seatings(), store.Tournaments()),
		auth:      NewAuthService(store.Players(), "test-secret", "", logger),
	}

	if err := store.Shops().Create(context.Background(), &models.Shop{ID: "shop-1", Name: "Ace Lounge"}); err != nil {
		t.Fatalf("seed shop: %v", err)
	}
	return env
}

func (e *testEnv) addPlayer(t *testing.T, id string) models.Session {
	t.Helper()
	p := &models.Player{
		ID:             id,
		PokerName:      "name-" + id,
		DisplaySetting: models.DisplayPublic,
		AuthProvider:   models.ProviderGoogle,
		Email:          fmt.Sprintf("%s@example.com", id),
	}
	if err := e.store.Players().Create(context.Background(), p); err != nil {
		t.Fatalf("seed player %s: %v", id, err)
	}
	return models.Session{PlayerID: id, Role: models.RolePlayer}
}

func (e *testEnv) addTable(t *testing.T, name string, maxSeats int) *models.Table {
	t.Helper()
	table, err := e.tables.Create(context.Background(), admin, "shop-1", CreateTableInput{Name: name, MaxSeats: &maxSeats})
	if err != nil {
		t.Fatalf("create table %s: %v", name, err)
	}
	return table
}

func intPtr(n int) *int { return &n }
