package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/authbite/internal/pkg/clock"
)

// NewMemory returns a process-local tracker. A nil clock uses wall time.
func NewMemory(clk clock.Clocker) *StateTracker {
	if clk == nil {
		clk = clock.New()
	}

	return &StateTracker{
		store:  &memoryBackend{clock: clk, items: make(map[string]memoryItem)},
		prefix: defaultPrefix,
	}
}

type memoryItem struct {
	value     string
	expiresAt time.Time
}

type memoryBackend struct {
	mu    sync.Mutex
	clock clock.Clocker
	items map[string]memoryItem
}

// live returns the unexpired item under key. Callers hold mu.
func (m *memoryBackend) live(key string) (memoryItem, bool) {
	item, ok := m.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if !item.expiresAt.IsZero() && !m.clock.Now().Before(item.expiresAt) {
		delete(m.items, key)
		return memoryItem{}, false
	}

	return item, true
}

func (m *memoryBackend) put(key, value string, ttl time.Duration) {
	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = m.clock.Now().Add(ttl)
	}
	m.items[key] = item
}

func (m *memoryBackend) setNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live(key); ok {
		return false, nil
	}
	m.put(key, value, ttl)

	return true, nil
}

func (m *memoryBackend) get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.live(key)

	return item.value, ok, nil
}

func (m *memoryBackend) set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(key, value, ttl)

	return nil
}
