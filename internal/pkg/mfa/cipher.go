package mfa

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidKeyLength indicates the key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("mfacrypto: invalid key length")
	// ErrDecodeFailed indicates the ciphertext is not valid base64.
	ErrDecodeFailed = errors.New("mfacrypto: ciphertext decode failed")
	// ErrCiphertextEmpty indicates an empty ciphertext.
	ErrCiphertextEmpty = errors.New("mfacrypto: ciphertext is empty")
	// ErrCiphertextNotBlockAligned indicates a ciphertext that is not a multiple of the block size.
	ErrCiphertextNotBlockAligned = errors.New("mfacrypto: ciphertext not block aligned")
)

// The vendor encrypts every seed with the same all-zero IV.
var zeroIV = make([]byte, aes.BlockSize)

// AESCBCCipher implements SeedCipher with AES-256-CBC, zero IV and PKCS7.
type AESCBCCipher struct{}

// NewAESCBCCipher returns the vendor-compatible seed cipher.
func NewAESCBCCipher() *AESCBCCipher {
	return &AESCBCCipher{}
}

// Decrypt decodes and decrypts a base64 seed.
//
// Line breaks inside the base64 text are ignored. Ciphertexts with malformed
// padding still decrypt: the whole decrypted block run is returned.
func (AESCBCCipher) Decrypt(key []byte, ciphertext string) ([]byte, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(stripLineBreaks(ciphertext))
	if err != nil {
		return nil, ErrDecodeFailed
	}
	if len(raw) == 0 {
		return nil, ErrCiphertextEmpty
	}
	if len(raw)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCiphertextNotBlockAligned, len(raw))
	}

	plain := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, zeroIV).CryptBlocks(plain, raw)

	return plain[:unpaddedLength(plain)], nil
}

// Encrypt pads, encrypts and base64-encodes plaintext.
func (AESCBCCipher) Encrypt(key []byte, plaintext []byte) (string, error) {
	block, err := newBlock(key)
	if err != nil {
		return "", err
	}

	padLen := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := append(bytes.Clone(plaintext), bytes.Repeat([]byte{byte(padLen)}, padLen)...)

	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, zeroIV).CryptBlocks(out, padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

func newBlock(key []byte) (cipher.Block, error) {
	if len(key) != KeyLength {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrInvalidKeyLength, len(key), KeyLength)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("mfacrypto: aes init failed: %w", err)
	}

	return block, nil
}

func stripLineBreaks(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// unpaddedLength returns the content length of a PKCS7-padded buffer, or the
// full length when the padding is not well formed.
func unpaddedLength(plain []byte) int {
	n := len(plain)
	padLen := int(plain[n-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > n {
		return n
	}

	for _, b := range plain[n-padLen:] {
		if int(b) != padLen {
			return n
		}
	}

	return n - padLen
}
