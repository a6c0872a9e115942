package savings

import (
	"context"
	"sync"
)

// CursorKey is the cursor store key holding the last evaluated week id.
const CursorKey = "last_evaluated_week"

// CursorStore is a durable single-slot key-value store. Writes are
// last-write-wins with no transactional guarantee.
type CursorStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// MemoryCursor is an in-process CursorStore.
type MemoryCursor struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryCursor returns an empty MemoryCursor.
func NewMemoryCursor() *MemoryCursor {
	return &MemoryCursor{values: make(map[string]string)}
}

// Get implements CursorStore.
func (m *MemoryCursor) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements CursorStore.
func (m *MemoryCursor) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
