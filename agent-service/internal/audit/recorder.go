// Package audit holds the best-effort sinks an evaluation is mirrored to after
// it has been returned: a MongoDB history collection, an S3 archive and a
// Kafka topic.
package audit

import (
	"context"
	"errors"
	"sync"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/models"
)

type Recorder interface {
	Record(ctx context.Context, rec models.EvaluationRecord) error
}

// MultiRecorder writes to every recorder and joins their errors.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(ctx context.Context, rec models.EvaluationRecord) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MemoryRecorder keeps records in memory. Useful for tests and local runs.
type MemoryRecorder struct {
	mu      sync.RWMutex
	records []models.EvaluationRecord
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (m *MemoryRecorder) Record(ctx context.Context, rec models.EvaluationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *MemoryRecorder) Records() []models.EvaluationRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.EvaluationRecord, len(m.records))
	copy(out, m.records)
	return out
}
