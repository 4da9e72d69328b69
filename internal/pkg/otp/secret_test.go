package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBase32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "rfc padded", input: "MZXW6YTBOI======", want: "foobar"},
		{name: "missing padding", input: "MZXW6YTBOI", want: "foobar"},
		{name: "invalid trailing bits", input: "MZXW6YTBOJ", want: "foobar"},
		{name: "lowercase", input: "mzxw6ytboi", want: "foobar"},
		{name: "dangling character", input: "MZXW6YTBOIA", want: "foobar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := DecodeBase32(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestDecodeBase32_Rejects(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "====", "hello world", "mzxw 6ytb oi", "MZXW-6YTB-OI", "MZXW6YTBOI\n", "MZ=XW6YTBOI"} {
		_, ok := DecodeBase32(input)
		assert.False(t, ok, input)
	}
}

func TestDecodeSecret(t *testing.T) {
	t.Parallel()

	t.Run("padded and unpadded seeds agree", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			DecodeSecret([]byte("ONQWIZTTMFSHGYLEMFSAU===")),
			DecodeSecret([]byte("ONQWIZTTMFSHGYLEMFSAU")),
		)
	})

	t.Run("falls back to raw bytes", func(t *testing.T) {
		t.Parallel()

		for _, raw := range [][]byte{[]byte("my secret seed01"), []byte("hello world"), []byte("abcd-efgh")} {
			assert.Equal(t, raw, DecodeSecret(raw))
		}
	})

	t.Run("empty stays empty", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, DecodeSecret(nil))
	})

	t.Run("encode round trip", func(t *testing.T) {
		t.Parallel()

		key := []byte{0xde, 0xad, 0xbe, 0xef, 0x01}
		got, ok := DecodeBase32(EncodeBase32(key))
		require.True(t, ok)
		assert.Equal(t, key, got)
	})
}
