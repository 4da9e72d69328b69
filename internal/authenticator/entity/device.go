package entity

import (
	"encoding/hex"

	"github.com/shandysiswandi/authbite/internal/pkg/hash"
)

const (
	// DeviceCodeDigits is the length of the device authentication codes.
	DeviceCodeDigits = 7
	// DeviceCodePeriod is the window, in seconds, of a device code.
	DeviceCodePeriod uint64 = 10
	// DeviceCodeWindows is how many consecutive device codes sign a request.
	DeviceCodeWindows = 3
	// DeviceSecretSize is the decoded length of the vendor device seed.
	DeviceSecretSize = 16
)

// Device is the vendor-registered device. It is created once, when
// registration completes.
type Device struct {
	ID         uint64 `json:"id"`
	SecretSeed string `json:"secret_seed"`
}

// HashSecret returns the lowercase hex SHA-256 of the seed text.
func (d Device) HashSecret() string {
	return hash.NewSHA256().String(d.SecretSeed)
}

// Key returns the hex-decoded seed used to compute device codes. The seed
// must be exactly DeviceSecretSize bytes of hex.
func (d Device) Key() ([]byte, error) {
	if len(d.SecretSeed) != hex.EncodedLen(DeviceSecretSize) {
		return nil, ErrInvalidDeviceSecret
	}

	key, err := hex.DecodeString(d.SecretSeed)
	if err != nil {
		return nil, ErrInvalidDeviceSecret
	}

	return key, nil
}

// DeviceCodes are the three rolling codes attached to authenticated calls.
type DeviceCodes struct {
	OTP1 string
	OTP2 string
	OTP3 string
}

// NewDeviceCodes builds DeviceCodes from exactly DeviceCodeWindows codes.
func NewDeviceCodes(codes []string) (DeviceCodes, bool) {
	if len(codes) != DeviceCodeWindows {
		return DeviceCodes{}, false
	}

	return DeviceCodes{OTP1: codes[0], OTP2: codes[1], OTP3: codes[2]}, true
}

func (c DeviceCodes) Slice() []string {
	return []string{c.OTP1, c.OTP2, c.OTP3}
}

// DeviceOwner is the phone number the vendor has on file for a device.
type DeviceOwner struct {
	Cellphone   string
	CountryCode uint8
}
