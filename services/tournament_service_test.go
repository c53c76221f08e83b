package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/pokernow/blinds"
	"github.com/Dosada05/pokernow/clock"
	"github.com/Dosada05/pokernow/events"
	"github.com/Dosada05/pokernow/hub"
	"github.com/Dosada05/pokernow/models"
)

func sampleStructure() blinds.Structure {
	return blinds.Structure{
		{Level: 1, SmallBlind: 100, BigBlind: 200, Duration: 20},
		{Level: 0, Duration: 10, IsBreak: true},
		{Level: 2, SmallBlind: 200, BigBlind: 400, Duration: 20},
	}
}

func createTournament(t *testing.T, env *testEnv) *models.Tournament {
	t.Helper()
	tour, err := env.tournaments.Create(context.Background(), admin, "shop-1", CreateTournamentInput{
		Name:      "Friday Deepstack",
		Structure: sampleStructure(),
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	return tour
}

func TestCreateTournament(t *testing.T) {
	env := newTestEnv(t)
	tour := createTournament(t, env)

	if tour.Status != models.StatusWaiting || tour.CurrentLevel != 1 || tour.RemainingSeconds != 1200 || tour.Position != 0 {
		t.Errorf("unexpected primed tournament: %+v", tour.ClockState())
	}
	if tour.StartedAt != nil {
		t.Errorf("startedAt must be unset before start")
	}

	ctx := context.Background()
	if _, err := env.tournaments.Create(ctx, player, "shop-1", CreateTournamentInput{Name: "x", Structure: sampleStructure()}); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("expected ErrForbiddenOperation, got %v", err)
	}
	if _, err := env.tournaments.Create(ctx, admin, "missing", CreateTournamentInput{Name: "x", Structure: sampleStructure()}); !errors.Is(err, ErrShopNotFound) {
		t.Errorf("expected ErrShopNotFound, got %v", err)
	}
	onlyBreaks := blinds.Structure{{Duration: 10, IsBreak: true}}
	if _, err := env.tournaments.Create(ctx, admin, "shop-1", CreateTournamentInput{Name: "x", Structure: onlyBreaks}); !errors.Is(err, ErrInvalidStructure) {
		t.Errorf("expected ErrInvalidStructure, got %v", err)
	}
}

func TestControlFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tour := createTournament(t, env)

	got, err := env.tournaments.Control(ctx, admin, "shop-1", tour.ID, clock.ActionStart)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if got.Status != models.StatusRunning || got.StartedAt == nil {
		t.Fatalf("after start: %+v", got.ClockState())
	}
	startedAt := *got.StartedAt

	if got, err = env.tournaments.Control(ctx, admin, "shop-1", tour.ID, clock.ActionStart); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if !got.StartedAt.Equal(startedAt) {
		t.Errorf("startedAt changed on second start")
	}

	if got, err = env.tournaments.Control(ctx, admin, "shop-1", tour.ID, clock.ActionNext); err != nil {
		t.Fatalf("next: %v", err)
	}
	if got.Status != models.StatusBreak || got.RemainingSeconds != 600 || got.CurrentLevel != 1 {
		t.Errorf("after next: %+v", got.ClockState())
	}

	if got, err = env.tournaments.Control(ctx, admin, "shop-1", tour.ID, clock.ActionEnd); err != nil {
		t.Fatalf("end: %v", err)
	}
	if got.Status != models.StatusFinished {
		t.Errorf("after end: %+v", got.ClockState())
	}

	for _, a := range []clock.Action{clock.ActionStart, clock.ActionPause, clock.ActionNext} {
		_, err := env.tournaments.Control(ctx, admin, "shop-1", tour.ID, a)
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("%s after end: expected ErrInvalidState, got %v", a, err)
		}
	}

	stored, err := env.tournaments.Get(ctx, "shop-1", tour.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if stored.Status != models.StatusFinished {
		t.Errorf("finished state not persisted: %s", stored.Status)
	}
	if n := env.broadcaster.count(hub.TournamentRoom(tour.ID)); n != 3 {
		t.Errorf("expected 3 clock broadcasts (start, next, end), got %d", n)
	}
}

func TestControlRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tour := createTournament(t, env)

	if _, err := env.tournaments.Control(ctx, player, "shop-1", tour.ID, clock.ActionStart); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("expected ErrForbiddenOperation, got %v", err)
	}
	if _, err := env.tournaments.Control(ctx, admin, "shop-1", "missing", clock.ActionStart); !errors.Is(err, ErrTournamentNotFound) {
		t.Errorf("expected ErrTournamentNotFound, got %v", err)
	}
	if _, err := env.tournaments.Control(ctx, admin, "shop-2", tour.ID, clock.ActionStart); !errors.Is(err, ErrNotFound) {
		t.Errorf("tournament of another shop: expected ErrNotFound, got %v", err)
	}
	_, err := env.tournaments.Control(ctx, admin, "shop-1", tour.ID, clock.ActionPause)
	var entityErr *EntityError
	if !errors.As(err, &entityErr) || !errors.Is(err, ErrInvalidState) || entityErr.ID != tour.ID {
		t.Errorf("pause while waiting: expected InvalidState entity error, got %v", err)
	}
}

// freezeClock pins the tournament service's notion of now.
func freezeClock(env *testEnv, at time.Time) {
	env.tournaments.(*tournamentService).now = func() time.Time { return at }
}

func TestTickAllAdvancesRunningClocks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	freezeClock(env, start)
	running := createTournament(t, env)
	waiting := createTournament(t, env)
	paused := createTournament(t, env)

	mustControl(t, env, running.ID, clock.ActionStart)
	mustControl(t, env, paused.ID, clock.ActionStart)
	mustControl(t, env, paused.ID, clock.ActionPause)

	at := start.Add(time.Second)
	if err := env.tournaments.TickAll(ctx, at); err != nil {
		t.Fatalf("TickAll() error: %v", err)
	}
	// A second tick source in the same second is ignored.
	if err := env.tournaments.TickAll(ctx, at); err != nil {
		t.Fatalf("TickAll() error: %v", err)
	}

	check := func(id string, want int) {
		t.Helper()
		got, err := env.tournaments.Get(ctx, "shop-1", id)
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if got.RemainingSeconds != want {
			t.Errorf("tournament %s: expected %d remaining, got %d", id, want, got.RemainingSeconds)
		}
	}
	check(running.ID, 1199)
	check(waiting.ID, 1200)
	check(paused.ID, 1200)
}

func TestTickOnExhaustedFinalLevelIsSilent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	freezeClock(env, start)
	tour, err := env.tournaments.Create(ctx, admin, "shop-1", CreateTournamentInput{
		Name:      "Turbo",
		Structure: blinds.Structure{{Level: 1, SmallBlind: 100, BigBlind: 200, Duration: 1}},
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	mustControl(t, env, tour.ID, clock.ActionStart)

	if changed, err := env.tournaments.Tick(ctx, tour.ID, start.Add(time.Minute)); err != nil || !changed {
		t.Fatalf("tick to zero: changed=%v err=%v", changed, err)
	}
	room := hub.TournamentRoom(tour.ID)
	before := env.broadcaster.count(room)

	for i := 1; i <= 10; i++ {
		changed, err := env.tournaments.Tick(ctx, tour.ID, start.Add(time.Minute+time.Duration(i)*time.Second))
		if err != nil {
			t.Fatalf("Tick() error: %v", err)
		}
		if changed {
			t.Fatalf("tick %d on an exhausted final level reported a change", i)
		}
	}
	if n := env.broadcaster.count(room); n != before {
		t.Errorf("expected no further clock broadcasts, got %d more", n-before)
	}

	got, err := env.tournaments.Get(ctx, "shop-1", tour.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Status != models.StatusRunning || got.RemainingSeconds != 0 {
		t.Errorf("unexpected state: %+v", got.ClockState())
	}
}

func TestConcurrentTicksAndControlStayConsistent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	freezeClock(env, start)
	tour := createTournament(t, env)
	mustControl(t, env, tour.ID, clock.ActionStart)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := env.tournaments.Tick(ctx, tour.ID, start.Add(time.Duration(i)*time.Second)); err != nil {
				t.Errorf("Tick() error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := env.tournaments.Get(ctx, "shop-1", tour.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	// Whatever the arrival order, the clock ends up 49 seconds after start.
	if got.RemainingSeconds != 1151 {
		t.Errorf("expected 1151 remaining, got %d", got.RemainingSeconds)
	}
}

func TestUpdateTournament(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tour := createTournament(t, env)

	newStructure := blinds.Structure{
		{Level: 1, SmallBlind: 25, BigBlind: 50, Duration: 15},
		{Level: 2, SmallBlind: 50, BigBlind: 100, Duration: 15},
	}
	name := "Sunday Special"
	got, err := env.tournaments.Update(ctx, admin, "shop-1", tour.ID, UpdateTournamentInput{Name: &name, Structure: newStructure})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if got.Name != name || got.RemainingSeconds != 900 || len(got.Structure) != 2 {
		t.Errorf("unexpected tournament after update: %+v", got)
	}

	mustControl(t, env, tour.ID, clock.ActionStart)
	_, err = env.tournaments.Update(ctx, admin, "shop-1", tour.ID, UpdateTournamentInput{Structure: sampleStructure()})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("structure change while running: expected ErrInvalidState, got %v", err)
	}

	found := false
	for _, typ := range env.publisher.types() {
		if typ == events.TournamentUpdated {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s event", events.TournamentUpdated)
	}
}

func mustControl(t *testing.T, env *testEnv, id string, a clock.Action) {
	t.Helper()
	if _, err := env.tournaments.Control(context.Background(), admin, "shop-1", id, a); err != nil {
		t.Fatalf("Control(%s) error: %v", a, err)
	}
}
