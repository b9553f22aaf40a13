/*
Package settings is the small persisted key-value store behind user
preferences.  The page behaviors take a Store instead of reaching for global
state, so the same code runs against memory in tests and against cookies in
the server.
*/
package settings

import (
	"context"
	"sync"
)

// ThemeKey is where the theme preference lives.
const ThemeKey = "theme"

type Store interface {
	// Get returns the stored value and whether there was one.
	Get(key string) (string, bool)
	Set(key, value string) error
}

// MemoryStore keeps values in a map.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

type storeKey struct{}

// InContext attaches a store to ctx.
func InContext(ctx context.Context, s Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// FromContext returns the request's store, or a fresh MemoryStore if the
// middleware didn't install one.
func FromContext(ctx context.Context) Store {
	if s, ok := ctx.Value(storeKey{}).(Store); ok {
		return s
	}
	return NewMemoryStore()
}
