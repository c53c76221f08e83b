package utils

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 12

// QRCodeSize is the edge length in pixels of rendered table QR images.
const QRCodeSize = 512

// HashPIN hashes a staff PIN for the STAFF_PIN_HASH setting.
func HashPIN(pin string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pin), BcryptCost)
	return string(bytes), err
}

// CheckPIN reports whether pin matches the bcrypt hash. An empty hash never
// matches.
func CheckPIN(pin, hash string) bool {
	if pin == "" || hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
	return err == nil
}

// GenerateQRCode renders content as a PNG QR code.
func GenerateQRCode(content string, size int) ([]byte, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to create qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(size)); err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return buf.Bytes(), nil
}
