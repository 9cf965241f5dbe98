package admission

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/models"
)

// MemoryCatalog is an in-process CatalogStore for tests and local runs.
type MemoryCatalog struct {
	mu      sync.RWMutex
	entries []models.CatalogEntry
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{}
}

func (m *MemoryCatalog) Insert(ctx context.Context, entry models.CatalogEntry) (models.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return models.CatalogEntry{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Status == "" {
		entry.Status = "active"
	}
	created := time.Now().UTC()
	entry.CreatedAt = &created
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *MemoryCatalog) List(ctx context.Context) ([]models.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.CatalogEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}
