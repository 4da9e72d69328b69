package mfa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	t.Parallel()

	t.Run("matches the fixed vector", func(t *testing.T) {
		t.Parallel()

		want := []byte{
			84, 238, 29, 216, 57, 143, 244, 224, 255, 82, 192, 61, 32, 22, 16, 55,
			101, 165, 19, 21, 21, 89, 206, 233, 116, 212, 54, 78, 196, 147, 85, 132,
		}
		assert.Equal(t, want, DeriveKey("test", "salty"))
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, DeriveKey("hunter2", "pepper"), NewPBKDF2().DeriveKey("hunter2", "pepper"))
	})

	t.Run("is input sensitive", func(t *testing.T) {
		t.Parallel()

		base := DeriveKey("test", "salty")
		assert.NotEqual(t, base, DeriveKey("test", "salt"))
		assert.NotEqual(t, base, DeriveKey("Test", "salty"))
	})

	t.Run("always 32 bytes", func(t *testing.T) {
		t.Parallel()

		require.Len(t, DeriveKey("a", ""), KeyLength)
	})
}
