package hash

import (
	"crypto/md5" //nolint:gosec // vendor protocol mandates md5 for the pin token
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	stdhash "hash"
)

// Hash digests strings and verifies digests.
type Hash interface {
	// Hash returns the lowercase hex digest of str.
	Hash(str string) ([]byte, error)
	// Verify reports whether hashed is the digest of str.
	Verify(hashed, str string) bool
}

// HexDigest implements Hash over a stdlib hash constructor.
type HexDigest struct {
	newHash func() stdhash.Hash
}

// NewMD5 returns a hex MD5 digester.
func NewMD5() *HexDigest {
	return &HexDigest{newHash: md5.New}
}

// NewSHA256 returns a hex SHA-256 digester.
func NewSHA256() *HexDigest {
	return &HexDigest{newHash: sha256.New}
}

// Hash returns the hex digest of str.
func (d *HexDigest) Hash(str string) ([]byte, error) {
	return d.gen(str), nil
}

// Verify compares hashed against the digest of str in constant time.
func (d *HexDigest) Verify(hashed, str string) bool {
	return subtle.ConstantTimeCompare([]byte(hashed), d.gen(str)) == 1
}

// String returns the hex digest of str as a string.
func (d *HexDigest) String(str string) string {
	return string(d.gen(str))
}

func (d *HexDigest) gen(str string) []byte {
	h := d.newHash()
	h.Write([]byte(str))
	sum := h.Sum(nil)
	result := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(result, sum)
	return result
}
