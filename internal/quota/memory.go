package quota

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used by tests and database-less
// deployments. The mutex makes check-and-increment a single atomic step,
// matching the contract the Postgres store gets from its conditional upsert.
type MemoryStore struct {
	mu   sync.Mutex
	used map[string]int
}

// NewMemoryStore creates an empty in-memory quota store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{used: make(map[string]int)}
}

// Usage returns the current counter for a key, 0 when absent.
func (m *MemoryStore) Usage(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used[key], nil
}

// IncrementBelow increments the counter when it is below limit, creating
// the record lazily on first use.
func (m *MemoryStore) IncrementBelow(_ context.Context, key string, limit int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.used[key]
	if current >= limit {
		return current, ErrLimitReached
	}
	m.used[key] = current + 1
	return current + 1, nil
}
