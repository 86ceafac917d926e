// Package qrsetup renders the short_id pairing code issued during
// setup as a QR
// code the operator can scan with the SimplyPrint mobile app.
package qrsetup

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const pairingURLTemplate = "https://simplyprint.io/pair/%s"

// PNG renders the pairing QR code for shortID at the given pixel size.
func PNG(shortID string, size int) ([]byte, error) {
	if shortID == "" {
		return nil, fmt.Errorf("qrsetup: empty short_id")
	}
	png, err := qrcode.Encode(fmt.Sprintf(pairingURLTemplate, shortID), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qrsetup: encoding qr code: %w", err)
	}
	return png, nil
}

// Terminal renders the pairing QR code as a string suitable for
// printing straight to a text console, for headless setups with no
// web UI available.
func Terminal(shortID string) (string, error) {
	if shortID == "" {
		return "", fmt.Errorf("qrsetup: empty short_id")
	}
	q, err := qrcode.New(fmt.Sprintf(pairingURLTemplate, shortID), qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("qrsetup: building qr code: %w", err)
	}
	return q.ToSmallString(false), nil
}
