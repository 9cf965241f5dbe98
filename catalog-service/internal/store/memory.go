package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ILLUVRSE/VendorCatalog/catalog-service/internal/models"
)

// MemoryStore provides an in-memory implementation useful for tests.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[uuid.UUID]models.Product
	order    []uuid.UUID
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: map[uuid.UUID]models.Product{},
		now:      time.Now,
	}
}

func (m *MemoryStore) InsertProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	in = in.normalize()
	now := m.now().UTC()
	p := in.product(now, now)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[p.ID]; !exists {
		m.order = append(m.order, p.ID)
	}
	m.products[p.ID] = p
	return p, nil
}

// ListProducts returns newest first, matching the Postgres ordering.
func (m *MemoryStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Product, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, m.products[m.order[i]])
	}
	return out, nil
}

func (m *MemoryStore) GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
