package otp

import (
	"encoding/base32"
	"errors"
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const maxDigits = 10

var (
	// ErrInvalidDigits indicates a digit count outside 1..10.
	ErrInvalidDigits = errors.New("otp: invalid digit count")
	// ErrInvalidPeriod indicates a zero window period.
	ErrInvalidPeriod = errors.New("otp: invalid period")
)

// keyEncoding re-encodes raw key bytes for the pquerna generator, which only
// accepts Base32 text.
var keyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// OTP defines the contract for counter-based code generation.
type OTP interface {
	// GenerateCode returns the HOTP code of key at counter, left-zero-padded.
	GenerateCode(key []byte, counter uint64, digits int) (string, error)
	// Windows returns n codes for consecutive period windows starting at unix.
	Windows(key []byte, unix, period uint64, digits, n int) ([]string, error)
}

// HOTP implements OTP with HMAC-SHA1.
type HOTP struct {
	algorithm otp.Algorithm
}

// NewHOTP returns an HMAC-SHA1 HOTP generator.
func NewHOTP() *HOTP {
	return &HOTP{algorithm: otp.AlgorithmSHA1}
}

// GenerateCode returns the HOTP code of key at counter.
func (h *HOTP) GenerateCode(key []byte, counter uint64, digits int) (string, error) {
	if digits < 1 || digits > maxDigits {
		return "", fmt.Errorf("%w: %d", ErrInvalidDigits, digits)
	}

	return hotp.GenerateCodeCustom(keyEncoding.EncodeToString(key), counter, hotp.ValidateOpts{
		Digits:    otp.Digits(digits),
		Algorithm: h.algorithm,
	})
}

// Windows returns n codes whose counters are floor((unix + i*period) / period)
// for i in [0, n).
func (h *HOTP) Windows(key []byte, unix, period uint64, digits, n int) ([]string, error) {
	if period == 0 {
		return nil, ErrInvalidPeriod
	}

	codes := make([]string, 0, n)
	for i := range n {
		code, err := h.GenerateCode(key, Counter(unix+uint64(i)*period, period), digits)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}

	return codes, nil
}

// Counter returns the window counter of unix for the given period.
func Counter(unix, period uint64) uint64 {
	if period == 0 {
		return 0
	}

	return unix / period
}

// ExpiresIn returns the seconds left in the window that contains unix.
func ExpiresIn(unix, period uint64) uint64 {
	if period == 0 {
		return 0
	}

	return period - unix%period
}
