package clock

import (
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/pokernow/blinds"
	"github.com/Dosada05/pokernow/models"
)

var base = time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC)

func newTournament(t *testing.T, s blinds.Structure) *models.Tournament {
	t.Helper()
	tour := &models.Tournament{ID: "t1", Structure: s}
	if err := Prime(tour); err != nil {
		t.Fatalf("Prime() error: %v", err)
	}
	return tour
}

func levelBreakLevel() blinds.Structure {
	return blinds.Structure{
		{Level: 1, SmallBlind: 25, BigBlind: 50, Duration: 20},
		{Level: 0, Duration: 10, IsBreak: true},
		{Level: 2, SmallBlind: 50, BigBlind: 100, Duration: 20},
	}
}

func TestPrimeSkipsLeadingBreaks(t *testing.T) {
	tour := newTournament(t, blinds.Structure{
		{Duration: 5, IsBreak: true},
		{Level: 3, SmallBlind: 100, BigBlind: 200, Duration: 15},
	})
	if tour.Status != models.StatusWaiting || tour.Position != 1 || tour.CurrentLevel != 3 || tour.RemainingSeconds != 900 {
		t.Errorf("unexpected primed state: %+v", tour.ClockState())
	}

	err := Prime(&models.Tournament{Structure: blinds.Structure{{Duration: 5, IsBreak: true}}})
	if !errors.Is(err, blinds.ErrInvalidStructure) {
		t.Errorf("expected ErrInvalidStructure, got %v", err)
	}
}

func TestStartTwiceKeepsStartedAt(t *testing.T) {
	tour := newTournament(t, blinds.Structure{{Level: 1, SmallBlind: 25, BigBlind: 50, Duration: 20}})

	changed, err := Apply(tour, ActionStart, base)
	if err != nil || !changed {
		t.Fatalf("start: changed=%v err=%v", changed, err)
	}
	if tour.Status != models.StatusRunning || tour.RemainingSeconds != 1200 {
		t.Fatalf("unexpected state after start: %+v", tour.ClockState())
	}
	if tour.StartedAt == nil || !tour.StartedAt.Equal(base) {
		t.Fatalf("expected startedAt %v, got %v", base, tour.StartedAt)
	}

	changed, err = Apply(tour, ActionStart, base.Add(time.Minute))
	if err != nil || changed {
		t.Fatalf("second start should be a no-op: changed=%v err=%v", changed, err)
	}
	if !tour.StartedAt.Equal(base) {
		t.Errorf("startedAt was reset to %v", tour.StartedAt)
	}
}

func TestStartedAtNeverReset(t *testing.T) {
	tour := newTournament(t, levelBreakLevel())
	mustApply(t, tour, ActionStart, base)
	mustApply(t, tour, ActionPause, base.Add(time.Minute))
	mustApply(t, tour, ActionStart, base.Add(2*time.Minute))
	if !tour.StartedAt.Equal(base) {
		t.Errorf("startedAt changed on restart from pause: %v", tour.StartedAt)
	}
}

func TestTickWalksThroughStructureBreak(t *testing.T) {
	tour := newTournament(t, levelBreakLevel())
	mustApply(t, tour, ActionStart, base)
	tour.RemainingSeconds = 1

	if !Tick(tour, base.Add(time.Second)) {
		t.Fatalf("tick was not applied")
	}
	if tour.Status != models.StatusBreak || tour.RemainingSeconds != 600 || tour.CurrentLevel != 1 {
		t.Fatalf("after first tick: %+v", tour.ClockState())
	}

	at := base.Add(time.Second)
	for i := 0; i < 600; i++ {
		at = at.Add(time.Second)
		Tick(tour, at)
		if tour.RemainingSeconds < 0 {
			t.Fatalf("remaining went negative at tick %d", i)
		}
	}
	if tour.Status != models.StatusRunning || tour.CurrentLevel != 2 || tour.RemainingSeconds != 1200 {
		t.Errorf("after break expired: %+v", tour.ClockState())
	}
}

func TestTickIsIdempotentPerSecond(t *testing.T) {
	tour := newTournament(t, levelBreakLevel())
	mustApply(t, tour, ActionStart, base)

	at := base.Add(time.Second)
	if !Tick(tour, at) {
		t.Fatalf("first tick ignored")
	}
	if Tick(tour, at.Add(300*time.Millisecond)) {
		t.Errorf("second tick within the same second was applied")
	}
	if tour.RemainingSeconds != 1199 {
		t.Errorf("expected 1199 remaining, got %d", tour.RemainingSeconds)
	}
}

func TestTickOnlyWhileCounting(t *testing.T) {
	tour := newTournament(t, levelBreakLevel())
	if Tick(tour, base) {
		t.Errorf("waiting tournament ticked")
	}

	mustApply(t, tour, ActionStart, base)
	mustApply(t, tour, ActionPause, base)
	if Tick(tour, base.Add(time.Second)) {
		t.Errorf("paused tournament ticked")
	}

	mustApply(t, tour, ActionResume, base)
	mustApply(t, tour, ActionBreak, base)
	if tour.RemainingSeconds != 600 || !tour.BreakHeld {
		t.Fatalf("manual break: %+v", tour.ClockState())
	}
	if Tick(tour, base.Add(2*time.Second)) {
		t.Errorf("manual break counted down")
	}

	changed, err := Apply(tour, ActionResume, base)
	if err != nil || !changed {
		t.Fatalf("resume from break: changed=%v err=%v", changed, err)
	}
	if tour.Status != models.StatusRunning || tour.RemainingSeconds != 600 {
		t.Errorf("resume must keep remaining seconds: %+v", tour.ClockState())
	}
}

func TestNextPastEndIsNoop(t *testing.T) {
	tour := newTournament(t, levelBreakLevel())
	mustApply(t, tour, ActionStart, base)
	mustApply(t, tour, ActionNext, base)
	if tour.Status != models.StatusBreak || tour.CurrentLevel != 1 || tour.RemainingSeconds != 600 {
		t.Fatalf("next onto break: %+v", tour.ClockState())
	}
	mustApply(t, tour, ActionNext, base)
	if tour.Status != models.StatusRunning || tour.CurrentLevel != 2 {
		t.Fatalf("next onto level 2: %+v", tour.ClockState())
	}

	before := *tour
	for i := 0; i < 3; i++ {
		changed, err := Apply(tour, ActionNext, base)
		if err != nil || changed {
			t.Fatalf("next at end: changed=%v err=%v", changed, err)
		}
	}
	if tour.Position != before.Position || tour.RemainingSeconds != before.RemainingSeconds || tour.Status != before.Status {
		t.Errorf("state changed at the end of structure: %+v", tour.ClockState())
	}
}

func TestTickAtEndHoldsAtZero(t *testing.T) {
	tour := newTournament(t, blinds.Structure{{Level: 1, SmallBlind: 1, BigBlind: 2, Duration: 1}})
	mustApply(t, tour, ActionStart, base)

	at := base
	for i := 0; i < 60; i++ {
		at = at.Add(time.Second)
		if !Tick(tour, at) {
			t.Fatalf("tick %d was not applied", i)
		}
	}
	if tour.RemainingSeconds != 0 || tour.Status != models.StatusRunning {
		t.Fatalf("expected running at 0, got %+v", tour.ClockState())
	}

	for i := 0; i < 10; i++ {
		at = at.Add(time.Second)
		if Tick(tour, at) {
			t.Fatalf("tick on an exhausted final level reported a change")
		}
	}
	if tour.RemainingSeconds != 0 || tour.Status != models.StatusRunning || tour.CurrentLevel != 1 {
		t.Errorf("state moved on an exhausted final level: %+v", tour.ClockState())
	}
}

func TestTickCoalescesElapsedSeconds(t *testing.T) {
	tour := newTournament(t, levelBreakLevel())
	mustApply(t, tour, ActionStart, base)

	for at := base.Add(5 * time.Second); !at.After(base.Add(time.Minute)); at = at.Add(5 * time.Second) {
		if !Tick(tour, at) {
			t.Fatalf("tick at %v was not applied", at)
		}
	}
	if tour.RemainingSeconds != 1140 {
		t.Errorf("expected 1140 remaining after a minute of 5s ticks, got %d", tour.RemainingSeconds)
	}
}

func TestTickCarriesLeftoverIntoNextEntry(t *testing.T) {
	tour := newTournament(t, levelBreakLevel())
	mustApply(t, tour, ActionStart, base)
	tour.RemainingSeconds = 3

	if !Tick(tour, base.Add(5*time.Second)) {
		t.Fatalf("tick was not applied")
	}
	if tour.Status != models.StatusBreak || tour.Position != 1 || tour.RemainingSeconds != 598 {
		t.Errorf("expected break with 598 remaining, got %+v", tour.ClockState())
	}
}

func TestPausedTimeIsNotCounted(t *testing.T) {
	tour := newTournament(t, levelBreakLevel())
	mustApply(t, tour, ActionStart, base)
	Tick(tour, base.Add(10*time.Second))
	mustApply(t, tour, ActionPause, base.Add(10*time.Second))
	mustApply(t, tour, ActionResume, base.Add(100*time.Second))

	if !Tick(tour, base.Add(101*time.Second)) {
		t.Fatalf("tick after resume was not applied")
	}
	if tour.RemainingSeconds != 1189 {
		t.Errorf("expected 1189 remaining, got %d", tour.RemainingSeconds)
	}

	// A manual advance restarts the count from the moment of the advance.
	mustApply(t, tour, ActionNext, base.Add(200*time.Second))
	if !Tick(tour, base.Add(201*time.Second)) {
		t.Fatalf("tick after next was not applied")
	}
	if tour.Status != models.StatusBreak || tour.RemainingSeconds != 599 {
		t.Errorf("expected break with 599 remaining, got %+v", tour.ClockState())
	}
}

func TestEndIsTerminal(t *testing.T) {
	for _, from := range []Action{"", ActionStart, ActionPause, ActionBreak} {
		tour := newTournament(t, levelBreakLevel())
		if from != "" {
			mustApply(t, tour, ActionStart, base)
			if from != ActionStart {
				mustApply(t, tour, from, base)
			}
		}
		remaining := tour.RemainingSeconds
		mustApply(t, tour, ActionEnd, base)
		if tour.Status != models.StatusFinished || tour.RemainingSeconds != remaining {
			t.Fatalf("end from %q: %+v", from, tour.ClockState())
		}

		for _, a := range []Action{ActionStart, ActionPause, ActionResume, ActionBreak, ActionNext, ActionEnd} {
			changed, err := Apply(tour, a, base)
			if !errors.Is(err, ErrInvalidTransition) || changed {
				t.Errorf("%s after end: changed=%v err=%v", a, changed, err)
			}
		}
		if Tick(tour, base.Add(time.Hour)) {
			t.Errorf("finished tournament ticked")
		}
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name   string
		setup  []Action
		action Action
	}{
		{"pause while waiting", nil, ActionPause},
		{"resume while waiting", nil, ActionResume},
		{"break while waiting", nil, ActionBreak},
		{"next while waiting", nil, ActionNext},
		{"resume while running", []Action{ActionStart}, ActionResume},
		{"pause while paused", []Action{ActionStart, ActionPause}, ActionPause},
		{"next while paused", []Action{ActionStart, ActionPause}, ActionNext},
		{"break during break", []Action{ActionStart, ActionBreak}, ActionBreak},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tour := newTournament(t, levelBreakLevel())
			for _, a := range tt.setup {
				mustApply(t, tour, a, base)
			}
			before := tour.ClockState()
			changed, err := Apply(tour, tt.action, base)
			if !errors.Is(err, ErrInvalidTransition) || changed {
				t.Fatalf("expected rejection, got changed=%v err=%v", changed, err)
			}
			if tour.ClockState().Status != before.Status || tour.RemainingSeconds != before.RemainingSeconds {
				t.Errorf("state changed on rejected action")
			}
		})
	}
}

func TestParseAction(t *testing.T) {
	if a, err := ParseAction("next"); err != nil || a != ActionNext {
		t.Errorf("ParseAction(next) = %q, %v", a, err)
	}
	if _, err := ParseAction("rewind"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("expected ErrUnknownAction, got %v", err)
	}
}

func mustApply(t *testing.T, tour *models.Tournament, a Action, now time.Time) {
	t.Helper()
	if _, err := Apply(tour, a, now); err != nil {
		t.Fatalf("Apply(%s) error: %v", a, err)
	}
}
