package mfa

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAESCBCCipher_Decrypt(t *testing.T) {
	t.Parallel()

	c := NewAESCBCCipher()

	t.Run("reference vector", func(t *testing.T) {
		t.Parallel()

		plain, err := c.Decrypt(DeriveKey("123456", "salty"), "Y8yn1UMAmLjmCOEOi8FJcw==")
		require.NoError(t, err)
		assert.Equal(t, "my secret seed01", string(plain))
	})

	t.Run("ignores embedded line breaks", func(t *testing.T) {
		t.Parallel()

		key := DeriveKey("pw", "salt")
		enc, err := c.Encrypt(key, []byte("JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"))
		require.NoError(t, err)

		wrapped := enc[:10] + "\r\n" + enc[10:20] + "\n" + enc[20:]

		a, err := c.Decrypt(key, enc)
		require.NoError(t, err)
		b, err := c.Decrypt(key, wrapped)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("malformed padding falls back to full length", func(t *testing.T) {
		t.Parallel()

		key := DeriveKey("pw", "salt")
		// 16 bytes with no padding block; last byte 0x00 is not valid PKCS7.
		plain := append([]byte("ABCDEFGHIJKLMNO"), 0x00)
		block, err := aes.NewCipher(key)
		require.NoError(t, err)
		out := make([]byte, len(plain))
		cipher.NewCBCEncrypter(block, make([]byte, aes.BlockSize)).CryptBlocks(out, plain)

		got, err := c.Decrypt(key, base64.StdEncoding.EncodeToString(out))
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		key := DeriveKey("pw", "salt")
		tests := []struct {
			name    string
			key     []byte
			input   string
			wantErr error
		}{
			{name: "short key", key: key[:16], input: "Y8yn1UMAmLjmCOEOi8FJcw==", wantErr: ErrInvalidKeyLength},
			{name: "bad base64", key: key, input: "!!not base64!!", wantErr: ErrDecodeFailed},
			{name: "empty", key: key, input: "", wantErr: ErrCiphertextEmpty},
			{name: "not aligned", key: key, input: base64.StdEncoding.EncodeToString([]byte("short")), wantErr: ErrCiphertextNotBlockAligned},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				_, err := c.Decrypt(tt.key, tt.input)
				require.ErrorIs(t, err, tt.wantErr)
				assert.NotContains(t, err.Error(), string(tt.key))
			})
		}
	})
}

func TestAESCBCCipher_RoundTrip(t *testing.T) {
	t.Parallel()

	c := NewAESCBCCipher()
	key := DeriveKey("backup", "per-token-salt")

	for _, size := range []int{0, 1, 15, 16, 17, 31, 32, 64} {
		plain := []byte(strings.Repeat("k", size))

		enc, err := c.Encrypt(key, plain)
		require.NoError(t, err)

		got, err := c.Decrypt(key, enc)
		require.NoError(t, err)
		assert.Equal(t, plain, got, "size %d", size)
	}
}
