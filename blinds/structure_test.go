package blinds

import (
	"errors"
	"testing"
)

func sample() Structure {
	return Structure{
		{Level: 0, Duration: 5, IsBreak: true},
		{Level: 1, SmallBlind: 25, BigBlind: 50, Duration: 20},
		{Level: 0, Duration: 10, IsBreak: true},
		{Level: 1, SmallBlind: 50, BigBlind: 100, Duration: 20},
	}
}

func TestFirstPlayLevel(t *testing.T) {
	idx, lvl, err := FirstPlayLevel(sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 1 || lvl.BigBlind != 50 {
		t.Errorf("expected index 1 with big blind 50, got %d / %d", idx, lvl.BigBlind)
	}

	_, _, err = FirstPlayLevel(Structure{{Duration: 10, IsBreak: true}})
	if !errors.Is(err, ErrInvalidStructure) {
		t.Errorf("expected ErrInvalidStructure, got %v", err)
	}
}

func TestNextFollowsPositionNotLevelNumber(t *testing.T) {
	s := sample()

	// Both play levels are numbered 1; the cursor must still move forward.
	idx, lvl, ok := Next(s, 1)
	if !ok || idx != 2 || !lvl.IsBreak {
		t.Fatalf("expected break at index 2, got idx=%d ok=%v lvl=%+v", idx, ok, lvl)
	}
	idx, lvl, ok = Next(s, idx)
	if !ok || idx != 3 || lvl.BigBlind != 100 {
		t.Fatalf("expected second level at index 3, got idx=%d ok=%v lvl=%+v", idx, ok, lvl)
	}
	if _, _, ok = Next(s, idx); ok {
		t.Errorf("expected end of structure after last entry")
	}
	if _, _, ok = Next(s, -1); ok {
		t.Errorf("expected negative position to report end of structure")
	}
}

func TestValidate(t *testing.T) {
	ante := -1
	tests := []struct {
		name    string
		s       Structure
		wantErr bool
	}{
		{"valid", sample(), false},
		{"empty", Structure{}, true},
		{"only breaks", Structure{{Duration: 10, IsBreak: true}}, true},
		{"zero duration", Structure{{Level: 1, SmallBlind: 1, BigBlind: 2}}, true},
		{"negative ante", Structure{{Level: 1, BigBlind: 2, Ante: &ante, Duration: 10}}, true},
		{"play level zero", Structure{{Level: 0, BigBlind: 2, Duration: 10}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.s)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStructureStorageValue(t *testing.T) {
	v, err := sample().Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}

	var got Structure
	if err := got.Scan(v); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(got) != 4 || got[3].BigBlind != 100 {
		t.Errorf("unexpected structure after scan: %+v", got)
	}

	if err := got.Scan([]byte(`{"version":7,"levels":[]}`)); err == nil {
		t.Errorf("expected unsupported version to fail")
	}
}

func TestStructureCloneCopiesAntes(t *testing.T) {
	ante := 25
	s := Structure{{Level: 1, SmallBlind: 100, BigBlind: 200, Ante: &ante, Duration: 20}}

	c := s.Clone()
	*c[0].Ante = 50
	c[0].BigBlind = 400

	if *s[0].Ante != 25 || s[0].BigBlind != 200 {
		t.Errorf("clone shares memory with the original: %+v ante=%d", s[0], *s[0].Ante)
	}
	if Structure(nil).Clone() != nil {
		t.Errorf("clone of nil structure should be nil")
	}
}
