package models

import (
	"time"

	"github.com/Dosada05/pokernow/blinds"
)

// TournamentStatus mirrors the tournament_status enum in the database.
type TournamentStatus string

const (
	StatusWaiting  TournamentStatus = "waiting"
	StatusRunning  TournamentStatus = "running"
	StatusPaused   TournamentStatus = "paused"
	StatusBreak    TournamentStatus = "break"
	StatusFinished TournamentStatus = "finished"
)

// Valid reports whether s is a known status.
func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusRunning, StatusPaused, StatusBreak, StatusFinished:
		return true
	}
	return false
}

// Tournament is a tournament clock together with its blind structure.
type Tournament struct {
	ID               string           `json:"tournamentId" db:"id"`
	ShopID           string           `json:"shopId" db:"shop_id"`
	Name             string           `json:"name" db:"name"`
	Status           TournamentStatus `json:"status" db:"status"`
	CurrentLevel     int              `json:"currentLevel" db:"current_level"`
	Position         int              `json:"position" db:"position"`
	RemainingSeconds int              `json:"remainingSeconds" db:"remaining_seconds"`
	Structure        blinds.Structure `json:"structure" db:"structure"`
	EntryFee         *int             `json:"entryFee,omitempty" db:"entry_fee"`
	StartingStack    *int             `json:"startingStack,omitempty" db:"starting_stack"`
	// BreakHeld marks a break called from the floor; it does not count down.
	BreakHeld bool       `json:"breakHeld" db:"break_held"`
	LastTick  int64      `json:"-" db:"last_tick"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	StartedAt *time.Time `json:"startedAt,omitempty" db:"started_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// ClockState is the part of a tournament echoed back after a control action
// and pushed to websocket subscribers.
type ClockState struct {
	TournamentID     string           `json:"tournamentId"`
	Name             string           `json:"name,omitempty"`
	Status           TournamentStatus `json:"status"`
	CurrentLevel     int              `json:"currentLevel"`
	Position         int              `json:"position"`
	RemainingSeconds int              `json:"remainingSeconds"`
	BreakHeld        bool             `json:"breakHeld"`
	Level            *blinds.Level    `json:"level,omitempty"`
}

func (t *Tournament) ClockState() ClockState {
	st := ClockState{
		TournamentID:     t.ID,
		Name:             t.Name,
		Status:           t.Status,
		CurrentLevel:     t.CurrentLevel,
		Position:         t.Position,
		RemainingSeconds: t.RemainingSeconds,
		BreakHeld:        t.BreakHeld,
	}
	if lvl, ok := blinds.At(t.Structure, t.Position); ok {
		st.Level = &lvl
	}
	return st
}

// Clone returns a deep copy, so stores never share slices with callers.
func (t *Tournament) Clone() *Tournament {
	c := *t
	c.Structure = t.Structure.Clone()
	if t.StartedAt != nil {
		started := *t.StartedAt
		c.StartedAt = &started
	}
	if t.EntryFee != nil {
		fee := *t.EntryFee
		c.EntryFee = &fee
	}
	if t.StartingStack != nil {
		stack := *t.StartingStack
		c.StartingStack = &stack
	}
	return &c
}
