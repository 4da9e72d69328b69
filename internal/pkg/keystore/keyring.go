package keystore

import (
	"context"
	"errors"

	"github.com/zalando/go-keyring"
)

// DefaultService is the keychain service name used when none is configured.
const DefaultService = "authbite"

// Keyring stores records in the OS keychain (macOS Keychain, Secret
// Service on Linux, Windows Credential Manager). Each key is a separate
// entry of the configured service.
type Keyring struct {
	service string
}

// NewKeyring returns a keychain-backed store.
func NewKeyring(service string) *Keyring {
	if service == "" {
		service = DefaultService
	}

	return &Keyring{service: service}
}

func (k *Keyring) Get(_ context.Context, key string, out any) error {
	secret, err := keyring.Get(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return backendError("keyring get", key, err)
	}

	return Unmarshal([]byte(secret), out)
}

func (k *Keyring) Set(_ context.Context, key string, in any) error {
	data, err := Marshal(in)
	if err != nil {
		return err
	}
	if err := keyring.Set(k.service, key, string(data)); err != nil {
		return backendError("keyring set", key, err)
	}

	return nil
}

func (k *Keyring) Close() error {
	return nil
}
