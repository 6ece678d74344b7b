package history

import (
	"context"
	"sync"
	"time"
)

// MemStore is an in-memory Store. It backs history-less configurations and
// tests; the log vanishes with the process.
type MemStore struct {
	mu    sync.RWMutex
	turns []Turn
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Append implements [Store].
func (m *MemStore) Append(ctx context.Context, role, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, Turn{Role: role, Content: content, At: time.Now()})
	return nil
}

// Recent implements [Store].
func (m *MemStore) Recent(ctx context.Context, n int) ([]Turn, error) {
	if n <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	start := len(m.turns) - n
	if start < 0 {
		start = 0
	}
	return append([]Turn(nil), m.turns[start:]...), nil
}

// Close implements [Store].
func (m *MemStore) Close() error { return nil }
