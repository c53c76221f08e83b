package models

import "time"

const (
	MinSeatsPerTable     = 1
	MaxSeatsPerTable     = 10
	DefaultSeatsPerTable = 9
)

// Table is a physical table in a shop. Seatings reference it, it never owns them.
type Table struct {
	ID         string    `json:"tableId" db:"id"`
	ShopID     string    `json:"shopId" db:"shop_id"`
	Name       string    `json:"name" db:"name"`
	QRCode     string    `json:"qrCode" db:"qr_code"`
	QRImageKey *string   `json:"-" db:"qr_image_key"`
	QRImageURL *string   `json:"qrImageUrl,omitempty" db:"-"`
	MaxSeats   int       `json:"maxSeats" db:"max_seats"`
	IsActive   bool      `json:"isActive" db:"is_active"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`

	CurrentPlayers int `json:"currentPlayers" db:"-"`
}
