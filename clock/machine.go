// Package clock implements the tournament clock state machine.
//
// The clock walks the blind structure with an explicit cursor (Tournament.Position).
// Manual advances and tick-driven advances share the same step, so both paths
// always land on the same entry.
package clock

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/pokernow/blinds"
	"github.com/Dosada05/pokernow/models"
)

type Action string

const (
	ActionStart  Action = "start"
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionBreak  Action = "break"
	ActionNext   Action = "next"
	ActionEnd    Action = "end"
)

var (
	ErrInvalidTransition = errors.New("action is not allowed in the current tournament state")
	ErrUnknownAction     = errors.New("unknown control action")
)

// ParseAction validates a control verb received from a caller.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionStart, ActionPause, ActionResume, ActionBreak, ActionNext, ActionEnd:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Prime resets t to the waiting state at the first playable level.
func Prime(t *models.Tournament) error {
	if err := blinds.Validate(t.Structure); err != nil {
		return err
	}
	idx, lvl, err := blinds.FirstPlayLevel(t.Structure)
	if err != nil {
		return err
	}
	t.Status = models.StatusWaiting
	t.Position = idx
	t.CurrentLevel = lvl.Level
	t.RemainingSeconds = lvl.Seconds()
	t.BreakHeld = false
	t.LastTick = 0
	return nil
}

// Apply runs a control action against t. It reports whether t changed.
// Actions that are not valid from the current status return
// ErrInvalidTransition and leave t untouched.
func Apply(t *models.Tournament, action Action, now time.Time) (bool, error) {
	if t.Status == models.StatusFinished {
		return false, fmt.Errorf("%w: %s on a finished tournament", ErrInvalidTransition, action)
	}

	switch action {
	case ActionStart:
		switch t.Status {
		case models.StatusRunning:
			return false, nil
		case models.StatusWaiting, models.StatusPaused, models.StatusBreak:
			run(t, now)
			return true, nil
		}
	case ActionResume:
		if t.Status == models.StatusPaused || t.Status == models.StatusBreak {
			run(t, now)
			return true, nil
		}
	case ActionPause:
		if t.Status == models.StatusRunning {
			t.Status = models.StatusPaused
			return true, nil
		}
	case ActionBreak:
		if t.Status == models.StatusRunning {
			t.Status = models.StatusBreak
			t.RemainingSeconds = blinds.BreakDurationMinutes * 60
			t.BreakHeld = true
			t.LastTick = now.Unix()
			return true, nil
		}
	case ActionNext:
		if t.Status == models.StatusRunning || t.Status == models.StatusBreak {
			if !advance(t) {
				return false, nil
			}
			t.LastTick = now.Unix()
			return true, nil
		}
	case ActionEnd:
		t.Status = models.StatusFinished
		t.BreakHeld = false
		return true, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	return false, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, t.Status)
}

// Ticking reports whether t counts down on ticks. Breaks reached through the
// structure count down; breaks called from the floor are held.
func Ticking(t *models.Tournament) bool {
	switch t.Status {
	case models.StatusRunning:
		return true
	case models.StatusBreak:
		return !t.BreakHeld
	}
	return false
}

// Tick brings t up to the wall-clock second of at. It subtracts every second
// elapsed since the last applied tick, so a late or coalesced tick keeps the
// clock on time, and a second is never applied twice. Leftover seconds carry
// into the next structure entry. Tick reports whether the clock moved.
func Tick(t *models.Tournament, at time.Time) bool {
	if !Ticking(t) {
		return false
	}
	sec := at.Unix()
	if sec <= t.LastTick {
		return false
	}
	elapsed := sec - t.LastTick
	if t.LastTick == 0 {
		elapsed = 1
	}
	t.LastTick = sec

	changed := false
	for elapsed > 0 {
		remaining := int64(t.RemainingSeconds)
		if remaining > elapsed {
			t.RemainingSeconds -= int(elapsed)
			return true
		}
		if remaining > 0 {
			changed = true
		}
		elapsed -= remaining
		t.RemainingSeconds = 0
		if !advance(t) {
			return changed
		}
		changed = true
	}
	return changed
}

func run(t *models.Tournament, now time.Time) {
	t.Status = models.StatusRunning
	t.BreakHeld = false
	t.LastTick = now.Unix()
	if t.StartedAt == nil {
		started := now.UTC()
		t.StartedAt = &started
	}
}

// advance moves the cursor to the next structure entry; false at the end.
func advance(t *models.Tournament) bool {
	idx, lvl, ok := blinds.Next(t.Structure, t.Position)
	if !ok {
		return false
	}
	t.Position = idx
	t.RemainingSeconds = lvl.Seconds()
	t.BreakHeld = false
	if lvl.IsBreak {
		t.Status = models.StatusBreak
	} else {
		t.Status = models.StatusRunning
		t.CurrentLevel = lvl.Level
	}
	return true
}
