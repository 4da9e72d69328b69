package uid

import (
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignature_Generate(t *testing.T) {
	t.Parallel()

	gen := NewSignature()
	a, b := gen.Generate(), gen.Generate()

	require.Len(t, a, SignatureSize*2)
	_, err := hex.DecodeString(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestUUID_Generate(t *testing.T) {
	t.Parallel()

	id, err := uuid.Parse(NewUUID().Generate())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}
