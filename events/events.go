package events

import (
	"context"
	"time"
)

// Routing keys of the domain events.
const (
	TournamentCreated      = "tournament.created"
	TournamentUpdated      = "tournament.updated"
	TournamentClockChanged = "tournament.clock_changed"
	SeatingCheckedIn       = "seating.checked_in"
	SeatingCheckedOut      = "seating.checked_out"
	TableEvacuated         = "table.evacuated"
	TableCreated           = "table.created"
	TableUpdated           = "table.updated"
)

type Event struct {
	Type       string      `json:"type"`
	ShopID     string      `json:"shopId"`
	EntityID   string      `json:"entityId"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload,omitempty"`
}

func New(eventType, shopID, entityID string, payload interface{}) Event {
	return Event{
		Type:       eventType,
		ShopID:     shopID,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher delivers domain events to downstream consumers. Publishing is
// best effort: callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event.
func NewNoopPublisher() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, Event) error { return nil }
func (noopPublisher) Close() error                         { return nil }
