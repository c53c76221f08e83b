package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/pokernow/blinds"
)

var (
	ErrNotFound = errors.New("requested resource not found")

	ErrTournamentNotFound = fmt.Errorf("tournament %w", ErrNotFound)
	ErrTableNotFound      = fmt.Errorf("table %w", ErrNotFound)
	ErrSeatingNotFound    = fmt.Errorf("seating %w", ErrNotFound)
	ErrShopNotFound       = fmt.Errorf("shop %w", ErrNotFound)
	ErrPlayerNotFound     = fmt.Errorf("player %w", ErrNotFound)

	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidStructure = blinds.ErrInvalidStructure
	ErrInvalidState     = errors.New("action not allowed in the current state")

	ErrAlreadySeated    = errors.New("player already has an active seating")
	ErrTableUnavailable = errors.New("table is unavailable")
	ErrTableFull        = errors.New("table is full")
	ErrSeatTaken        = errors.New("seat is already taken")
	ErrTableNameTaken   = errors.New("table name already used in this shop")

	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
)

// Entity kinds carried by EntityError.
const (
	EntityTournament = "tournament"
	EntityTable      = "table"
	EntitySeating    = "seating"
	EntityShop       = "shop"
	EntityPlayer     = "player"
)

// EntityError is a rejection tied to one entity. It unwraps to the sentinel
// so callers can keep using errors.Is.
type EntityError struct {
	Err    error
	Entity string
	ID     string
	Detail string
}

func (e *EntityError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Entity, e.ID, e.Err)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *EntityError) Unwrap() error { return e.Err }

func entityErr(err error, entity, id string) error {
	return &EntityError{Err: err, Entity: entity, ID: id}
}

func entityErrf(err error, entity, id, format string, args ...interface{}) error {
	return &EntityError{Err: err, Entity: entity, ID: id, Detail: fmt.Sprintf(format, args...)}
}

// Kind names the error class for API consumers.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrInvalidState):
		return "InvalidState"
	case errors.Is(err, ErrAlreadySeated):
		return "AlreadySeated"
	case errors.Is(err, ErrTableUnavailable):
		return "TableUnavailable"
	case errors.Is(err, ErrTableFull):
		return "TableFull"
	case errors.Is(err, ErrSeatTaken):
		return "SeatTaken"
	case errors.Is(err, ErrTableNameTaken):
		return "Conflict"
	case errors.Is(err, ErrInvalidStructure):
		return "InvalidStructure"
	case errors.Is(err, ErrValidationFailed):
		return "ValidationFailed"
	case errors.Is(err, ErrAuthenticationFailed):
		return "Unauthorized"
	case errors.Is(err, ErrForbiddenOperation):
		return "Forbidden"
	}
	return "Internal"
}
