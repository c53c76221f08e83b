package utils

import (
	"bytes"
	"image/png"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestCheckPIN(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("4821"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() error: %v", err)
	}

	tests := []struct {
		name string
		pin  string
		hash string
		want bool
	}{
		{"match", "4821", string(hash), true},
		{"wrong pin", "0000", string(hash), false},
		{"empty pin", "", string(hash), false},
		{"no hash configured", "4821", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPIN(tt.pin, tt.hash); got != tt.want {
				t.Errorf("CheckPIN() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateQRCode(t *testing.T) {
	data, err := GenerateQRCode("pokernow://shop-1/table/table-1", 256)
	if err != nil {
		t.Fatalf("GenerateQRCode() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 256 {
		t.Errorf("expected 256px wide image, got %d", img.Bounds().Dx())
	}
}
