package entity

import (
	"github.com/shandysiswandi/authbite/internal/pkg/mfa"
	"github.com/shandysiswandi/authbite/internal/pkg/otp"
)

const (
	// DefaultTokenDigits applies when the vendor reports zero digits.
	DefaultTokenDigits = 7
	// TokenCodePeriod is the window, in seconds, of a service code.
	TokenCodePeriod uint64 = 30
)

// AuthenticatorToken is one external account registered in the vendor app.
// It only carries the encrypted seed; Initialize unlocks it.
type AuthenticatorToken struct {
	AccountType       string  `json:"account_type"`
	Digits            int     `json:"digits"`
	EncryptedSeed     string  `json:"encrypted_seed"`
	Name              string  `json:"name"`
	OriginalName      *string `json:"original_name,omitempty"`
	PasswordTimestamp uint64  `json:"password_timestamp"`
	Salt              string  `json:"salt"`
	UniqueID          string  `json:"unique_id"`
}

// CodeDigits returns the digit count used for this token's codes.
func (t AuthenticatorToken) CodeDigits() int {
	if t.Digits <= 0 {
		return DefaultTokenDigits
	}

	return t.Digits
}

// CacheKey identifies the derived key of the token. Two tokens with the
// same id and salt share one key.
func (t AuthenticatorToken) CacheKey() string {
	return t.UniqueID + ":" + t.Salt
}

// Initialize derives the seed key from the backup password. The same password
// and salt always yield the same ReadyToken.
func (t AuthenticatorToken) Initialize(kdf mfa.KeyDeriver, backupPassword string) (*ReadyToken, error) {
	if backupPassword == "" {
		return nil, ErrBackupPasswordRequired
	}

	return &ReadyToken{
		AuthenticatorToken: t,
		key:                kdf.DeriveKey(backupPassword, t.Salt),
	}, nil
}

// ReadyToken is an AuthenticatorToken whose key has been derived. The key is
// never serialized.
type ReadyToken struct {
	AuthenticatorToken

	key []byte
}

// Seed decrypts the token seed and returns the plaintext secret text.
func (r *ReadyToken) Seed(c mfa.SeedCipher) ([]byte, error) {
	if r == nil || len(r.key) == 0 {
		return nil, ErrTokenNotInitialized
	}

	plain, err := c.Decrypt(r.key, r.EncryptedSeed)
	if err != nil {
		return nil, &TokenError{ServiceName: r.Name, Op: TokenOpDecrypt, Err: err}
	}

	return plain, nil
}

// Secret returns the HOTP key bytes of the token.
func (r *ReadyToken) Secret(c mfa.SeedCipher) ([]byte, error) {
	plain, err := r.Seed(c)
	if err != nil {
		return nil, err
	}

	return otp.DecodeSecret(plain), nil
}

// Code returns the service code for the window containing unix.
func (r *ReadyToken) Code(c mfa.SeedCipher, gen otp.OTP, unix uint64) (string, error) {
	secret, err := r.Secret(c)
	if err != nil {
		return "", err
	}

	code, err := gen.GenerateCode(secret, otp.Counter(unix, TokenCodePeriod), r.CodeDigits())
	if err != nil {
		return "", &TokenError{ServiceName: r.Name, Op: TokenOpGenerate, Err: err}
	}

	return code, nil
}
