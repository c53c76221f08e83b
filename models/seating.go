package models

import "time"

type SeatingStatus string

const (
	SeatingActive SeatingStatus = "active"
	SeatingLeft   SeatingStatus = "left"
)

// Seating records a player occupying a seat between check-in and check-out.
// Rows are never deleted or reactivated.
type Seating struct {
	ID         string        `json:"seatingId" db:"id"`
	PlayerID   string        `json:"playerId" db:"player_id"`
	ShopID     string        `json:"shopId" db:"shop_id"`
	TableID    string        `json:"tableId" db:"table_id"`
	SeatNumber *int          `json:"seatNumber,omitempty" db:"seat_number"`
	Status     SeatingStatus `json:"status" db:"status"`
	SeatedAt   time.Time     `json:"seatedAt" db:"seated_at"`
	LeftAt     *time.Time    `json:"leftAt,omitempty" db:"left_at"`

	Table  *Table  `json:"table,omitempty" db:"-"`
	Shop   *Shop   `json:"shop,omitempty" db:"-"`
	Player *Player `json:"player,omitempty" db:"-"`
}
