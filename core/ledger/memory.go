package ledger

import (
	"context"
	"sync"

	"crowdin-distributor/core/reconcile"
)

// MemoryStore keeps observations for the lifetime of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	observed reconcile.Observed
}

// NewMemoryStore returns an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{observed: reconcile.Observed{}}
}

func (m *MemoryStore) Load(ctx context.Context) (reconcile.Observed, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.observed.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, observed reconcile.Observed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observed = observed.Clone()
	return nil
}

func (m *MemoryStore) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observed = reconcile.Observed{}
	return nil
}
