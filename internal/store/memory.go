package store

import (
	"context"
	"sync"

	"github.com/TimurManjosov/bucketflags/internal/flags"
)

// MemoryStore is an in-memory Source and Writer for tests and local use.
// It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	env  string
	defs map[string]map[string]flags.Definition // env -> name -> definition
}

// NewMemoryStore creates an empty store whose Load reads env over "default".
func NewMemoryStore(env string) *MemoryStore {
	return &MemoryStore{
		env:  env,
		defs: make(map[string]map[string]flags.Definition),
	}
}

// Load implements flags.Source.
func (m *MemoryStore) Load(ctx context.Context) (map[string]flags.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.env == "" || m.env == flags.BaseEnv {
		return overlay(m.defs[flags.BaseEnv], nil), nil
	}
	return overlay(m.defs[flags.BaseEnv], m.defs[m.env]), nil
}

// UpsertDefinition creates or replaces a definition.
func (m *MemoryStore) UpsertDefinition(_ context.Context, env, name string, def flags.Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.defs[env] == nil {
		m.defs[env] = make(map[string]flags.Definition)
	}
	m.defs[env][name] = def
	return nil
}

// DeleteDefinition removes a definition. Deleting a missing one is not an error.
func (m *MemoryStore) DeleteDefinition(_ context.Context, env, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.defs[env], name)
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
