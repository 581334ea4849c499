package cart

import (
	"context"
	"sync"
)

// Store keeps carts between requests. Get returns ErrCartNotFound for unknown ids.
type Store interface {
	Get(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is a process-local Store for tests and single-terminal runs.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]*Cart)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[id]
	if !ok {
		return nil, ErrCartNotFound
	}
	return c.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, c *Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.carts[c.ID] = c.Clone()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.carts, id)
	return nil
}
