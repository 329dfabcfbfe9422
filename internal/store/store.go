// Package store persists small string values under string keys.
package store

import (
	"context"
	"sync"
)

// Store is durable key-value storage. Save replaces the whole value
// atomically; a reader never sees a partially written value.
type Store interface {
	// Load returns the value for key and whether it was present.
	Load(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key, value string) error
}

// Memory is an in-process Store, mainly for tests and the memory backend.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Load(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Save(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

type prefixed struct {
	prefix string
	next   Store
}

// WithPrefix scopes every key of s under prefix, e.g. one namespace per player.
func WithPrefix(s Store, prefix string) Store {
	return prefixed{prefix: prefix, next: s}
}

func (p prefixed) Load(ctx context.Context, key string) (string, bool, error) {
	return p.next.Load(ctx, p.prefix+key)
}

func (p prefixed) Save(ctx context.Context, key, value string) error {
	return p.next.Save(ctx, p.prefix+key, value)
}
