package uid

import (
	"crypto/rand"
	"encoding/hex"
)

// SignatureSize is the number of random bytes in a registration signature.
const SignatureSize = 32

// Signature generates random per-install registration signatures.
type Signature struct {
	read func([]byte) (int, error)
}

// NewSignature returns a generator backed by crypto/rand.
func NewSignature() *Signature {
	return &Signature{read: rand.Read}
}

// Generate returns 32 random bytes as 64 lowercase hex characters.
func (s *Signature) Generate() string {
	var raw [SignatureSize]byte
	//nolint:errcheck // crypto/rand.Read never returns an error on supported platforms
	s.read(raw[:])

	return hex.EncodeToString(raw[:])
}
