package vault

import (
	"context"
	"testing"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVault_Account(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := keystore.NewMemory()
	v := New(store, nil)

	_, err := v.GetAccount(ctx)
	require.ErrorIs(t, err, keystore.ErrNotFound)

	acc := entity.Account{
		AuthyID:        12345,
		DeviceName:     "laptop",
		Signature:      "sig",
		Device:         &entity.Device{ID: 321321, SecretSeed: "48bebacafe22334beba47dcafe37252a"},
		TimeSync:       &entity.TimeSync{Direction: entity.DirectionPast, Offset: 3, LastTimeChecked: 10},
		BackupPassword: "backup",
	}
	require.NoError(t, v.SaveAccount(ctx, acc))

	got, err := v.GetAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, acc, *got)

	raw, ok := store.Raw("devices")
	require.True(t, ok)
	assert.Contains(t, string(raw), "\n  \"authy_id\": 12345,\n")
	assert.Contains(t, string(raw), `"Past": {`)
}

func TestVault_Tokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := keystore.NewMemory()
	v := New(store, nil)

	_, err := v.GetTokens(ctx)
	require.ErrorIs(t, err, keystore.ErrNotFound)

	require.NoError(t, v.SaveTokens(ctx, nil))
	got, err := v.GetTokens(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	tokens := []entity.AuthenticatorToken{{Name: "LastPass", Digits: 6, EncryptedSeed: "c2VlZA==", Salt: "dsdsad", UniqueID: "1"}}
	require.NoError(t, v.SaveTokens(ctx, tokens))
	got, err = v.GetTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, tokens, got)

	raw, _ := store.Raw("tokens")
	assert.NotContains(t, string(raw), "key")
}
