package blinds

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// BreakDurationMinutes is the length of a break called manually by the floor.
const BreakDurationMinutes = 10

// storageVersion is written alongside the levels so the stored shape can evolve.
const storageVersion = 1

var ErrInvalidStructure = errors.New("invalid blind structure")

// Level is a single entry of a blind structure. Breaks use Level 0.
type Level struct {
	Level      int  `json:"level" validate:"gte=0"`
	SmallBlind int  `json:"smallBlind" validate:"gte=0"`
	BigBlind   int  `json:"bigBlind" validate:"gte=0"`
	Ante       *int `json:"ante,omitempty" validate:"omitempty,gte=0"`
	Duration   int  `json:"duration" validate:"gt=0"` // minutes
	IsBreak    bool `json:"isBreak"`
}

// Seconds returns the level duration in seconds.
func (l Level) Seconds() int {
	return l.Duration * 60
}

// Structure is the ordered play sequence of a tournament.
// Level numbers are not unique, so entries are addressed by index.
type Structure []Level

// Clone returns a copy that shares no memory with s, antes included.
func (s Structure) Clone() Structure {
	if s == nil {
		return nil
	}
	c := make(Structure, len(s))
	copy(c, s)
	for i := range c {
		if c[i].Ante != nil {
			ante := *c[i].Ante
			c[i].Ante = &ante
		}
	}
	return c
}

// FirstPlayLevel returns the index and value of the first non-break entry.
func FirstPlayLevel(s Structure) (int, Level, error) {
	for i, l := range s {
		if !l.IsBreak {
			return i, l, nil
		}
	}
	return -1, Level{}, fmt.Errorf("%w: no playable level", ErrInvalidStructure)
}

// Next returns the entry right after position. ok is false when position is
// the last entry (or outside the structure).
func Next(s Structure, position int) (int, Level, bool) {
	if position < 0 || position+1 >= len(s) {
		return position, Level{}, false
	}
	return position + 1, s[position+1], true
}

// At returns the entry at position.
func At(s Structure, position int) (Level, bool) {
	if position < 0 || position >= len(s) {
		return Level{}, false
	}
	return s[position], true
}

// Validate checks the structure invariants.
func Validate(s Structure) error {
	if len(s) == 0 {
		return fmt.Errorf("%w: structure is empty", ErrInvalidStructure)
	}
	for i, l := range s {
		if l.Duration <= 0 {
			return fmt.Errorf("%w: entry %d has non-positive duration", ErrInvalidStructure, i)
		}
		if l.SmallBlind < 0 || l.BigBlind < 0 || (l.Ante != nil && *l.Ante < 0) {
			return fmt.Errorf("%w: entry %d has negative blinds", ErrInvalidStructure, i)
		}
		if !l.IsBreak && l.Level < 1 {
			return fmt.Errorf("%w: entry %d is a play level numbered %d", ErrInvalidStructure, i, l.Level)
		}
	}
	if _, _, err := FirstPlayLevel(s); err != nil {
		return err
	}
	return nil
}

type stored struct {
	Version int     `json:"version"`
	Levels  []Level `json:"levels"`
}

// Value stores the structure as versioned JSON (JSONB column).
func (s Structure) Value() (driver.Value, error) {
	levels := []Level(s)
	if levels == nil {
		levels = []Level{}
	}
	return json.Marshal(stored{Version: storageVersion, Levels: levels})
}

// Scan reads the versioned JSON written by Value.
func (s *Structure) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*s = nil
		return nil
	default:
		return fmt.Errorf("blinds: cannot scan %T into Structure", src)
	}

	var st stored
	if err := json.Unmarshal(raw, &st); err != nil {
		return fmt.Errorf("blinds: decode structure: %w", err)
	}
	if st.Version != storageVersion {
		return fmt.Errorf("blinds: unsupported structure version %d", st.Version)
	}
	*s = st.Levels
	return nil
}
