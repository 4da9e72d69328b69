// Package keystore defines a small key-value capability for persisting
// serialized records, plus interchangeable backends (file, OS keychain,
// macOS security CLI, redis, postgres, object storage, memory).
//
// Values are JSON encoded with two-space indentation so records stay
// readable when inspected by hand.
package keystore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNotFound is returned when no value exists under the key.
	ErrNotFound = errors.New("keystore: not found")
	// ErrDecode is returned when a stored value cannot be decoded.
	ErrDecode = errors.New("keystore: decode failed")
	// ErrBackend wraps failures of the underlying backend.
	ErrBackend = errors.New("keystore: backend failure")
	// ErrUnknownDriver indicates an unsupported keystore driver.
	ErrUnknownDriver = errors.New("keystore: unknown driver")
)

// Store persists JSON-serializable records under string keys.
type Store interface {
	io.Closer

	// Get decodes the value stored under key into out.
	Get(ctx context.Context, key string, out any) error
	// Set encodes in and stores it under key, replacing any prior value.
	Set(ctx context.Context, key string, in any) error
}

// Marshal encodes v as indented JSON with a trailing newline.
func Marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("keystore: encode: %w", err)
	}

	return append(data, '\n'), nil
}

// Unmarshal decodes data into out, wrapping failures in ErrDecode.
func Unmarshal(data []byte, out any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: empty value", ErrDecode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return nil
}

func backendError(op, key string, err error) error {
	return fmt.Errorf("%w: %s %q: %w", ErrBackend, op, key, err)
}
