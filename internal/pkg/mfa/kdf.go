package mfa

import (
	"crypto/sha1"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeyLength is the derived key size in bytes (AES-256).
	KeyLength = 32
	// KDFIterations is fixed by the vendor format and must not change.
	KDFIterations = 1000
)

// PBKDF2 derives seed keys with PBKDF2-HMAC-SHA1.
type PBKDF2 struct{}

// NewPBKDF2 returns the vendor-compatible key deriver.
func NewPBKDF2() *PBKDF2 {
	return &PBKDF2{}
}

// DeriveKey returns the 32-byte key for password and salt.
func (PBKDF2) DeriveKey(password, salt string) []byte {
	return DeriveKey(password, salt)
}

// DeriveKey returns the 32-byte key for password and salt.
func DeriveKey(password, salt string) []byte {
	return pbkdf2.Key([]byte(password), []byte(salt), KDFIterations, KeyLength, sha1.New)
}
