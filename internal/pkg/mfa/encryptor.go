// Package mfa holds the crypto that protects authenticator seeds at rest:
// the backup-password key derivation and the seed cipher.
package mfa

// SeedCipher decrypts and encrypts base64 seed blobs with a derived key.
type SeedCipher interface {
	// Decrypt returns the plaintext seed for a base64 ciphertext.
	Decrypt(key []byte, ciphertext string) (plaintext []byte, err error)
	// Encrypt returns the base64 ciphertext for a plaintext seed.
	Encrypt(key []byte, plaintext []byte) (ciphertext string, err error)
}

// KeyDeriver turns a backup password and salt into a cipher key.
type KeyDeriver interface {
	DeriveKey(password, salt string) []byte
}
