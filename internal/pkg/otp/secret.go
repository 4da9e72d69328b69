package otp

import (
	"strings"
	"unicode"
)

// DecodeSecret returns the key bytes for a textual seed.
//
// Seeds are usually Base32, often lowercase, unpadded, or carrying garbage in
// the unused trailing bits. When the text is not Base32 at all the raw bytes
// are the key.
func DecodeSecret(secret []byte) []byte {
	key, ok := DecodeBase32(string(secret))
	if !ok {
		return secret
	}

	return key
}

// DecodeBase32 decodes s with the RFC 4648 alphabet while ignoring case and
// padding. Any other character, including spaces and dashes, makes s
// non-Base32. A trailing partial quantum that cannot hold a whole byte is
// dropped, and leftover trailing bits are not checked.
func DecodeBase32(s string) ([]byte, bool) {
	cleaned := strings.ToUpper(strings.TrimRight(s, "="))
	if strings.ContainsFunc(cleaned, unicode.IsSpace) {
		return nil, false
	}
	if cleaned == "" {
		return nil, false
	}

	// 1, 3 and 6 trailing characters carry fewer bits than the byte they start.
	switch len(cleaned) % 8 {
	case 1, 3, 6:
		cleaned = cleaned[:len(cleaned)-1]
	}
	if cleaned == "" {
		return nil, false
	}

	key, err := keyEncoding.DecodeString(cleaned)
	if err != nil || len(key) == 0 {
		return nil, false
	}

	return key, true
}

// EncodeBase32 renders key as unpadded uppercase Base32.
func EncodeBase32(key []byte) string {
	return keyEncoding.EncodeToString(key)
}
