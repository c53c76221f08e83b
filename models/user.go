package models

import "time"

// UserRole is resolved per request from the session token, never stored.
type UserRole string

const (
	RolePlayer UserRole = "player"
	RoleAdmin  UserRole = "admin"
)

type AuthProvider string

const (
	ProviderApple  AuthProvider = "apple"
	ProviderGoogle AuthProvider = "google"
	ProviderPhone  AuthProvider = "phone"
)

type DisplaySetting string

const (
	DisplayPublic DisplaySetting = "public"
	DisplayMasked DisplaySetting = "masked"
	DisplayHidden DisplaySetting = "hidden"
)

type Player struct {
	ID             string         `json:"playerId" db:"id"`
	PokerName      string         `json:"pokerName" db:"poker_name"`
	DisplaySetting DisplaySetting `json:"displaySetting" db:"display_setting"`
	AuthProvider   AuthProvider   `json:"authProvider" db:"auth_provider"`
	Email          string         `json:"email,omitempty" db:"email"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at"`
}

// DisplayName applies the player's display setting.
func (p *Player) DisplayName() string {
	switch p.DisplaySetting {
	case DisplayHidden:
		return ""
	case DisplayMasked:
		r := []rune(p.PokerName)
		if len(r) == 0 {
			return ""
		}
		return string(r[0]) + "***"
	default:
		return p.PokerName
	}
}

// Session is the authenticated caller of a request.
type Session struct {
	PlayerID string   `json:"playerId"`
	Role     UserRole `json:"role"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
