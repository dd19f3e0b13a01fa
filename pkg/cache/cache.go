package cache

import "sync"

// Cache is a non-authoritative key-value store used for derived-insights
// invalidation. It is never the source of truth for balances.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// Memory is an in-process Cache implementation.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *Memory) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

func (m *Memory) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}
