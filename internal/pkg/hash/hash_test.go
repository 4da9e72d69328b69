package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexDigest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		digest *HexDigest
		input  string
		want   string
	}{
		{name: "md5 pin", digest: NewMD5(), input: "12345", want: "827ccb0eea8a706c4c34a16891f84e7b"},
		{name: "sha256 empty", digest: NewSHA256(), input: "", want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{name: "sha256 abc", digest: NewSHA256(), input: "abc", want: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.digest.Hash(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, tt.want, tt.digest.String(tt.input))
			assert.True(t, tt.digest.Verify(tt.want, tt.input))
			assert.False(t, tt.digest.Verify(tt.want, tt.input+"x"))
		})
	}
}
