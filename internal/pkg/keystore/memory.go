package keystore

import (
	"context"
	"sync"
)

// Memory is an in-process Store. Values are kept encoded so that Get
// returns copies and exercises the same codec as durable backends.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string, out any) error {
	m.mu.RLock()
	data, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	return Unmarshal(data, out)
}

func (m *Memory) Set(_ context.Context, key string, in any) error {
	data, err := Marshal(in)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.data[key] = data
	m.mu.Unlock()

	return nil
}

// Raw returns the encoded bytes stored under key.
func (m *Memory) Raw(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[key]

	return data, ok
}

func (m *Memory) Close() error {
	return nil
}
