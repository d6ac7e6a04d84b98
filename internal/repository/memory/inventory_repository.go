// Package memory provides an in-process InventoryRepository for tests and
// STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/repository"
)

type InventoryRepository struct {
	mu      sync.RWMutex
	records []domain.InventoryRecord
	nextID  int64
}

func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{nextID: 1}
}

func (r *InventoryRepository) SaveBatch(_ context.Context, records []domain.InventoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		rec.ID = r.nextID
		r.nextID++
		r.records = append(r.records, rec)
	}
	return nil
}

func (r *InventoryRepository) FindAll(_ context.Context) ([]domain.InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.InventoryRecord, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *InventoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.records)), nil
}

var _ repository.InventoryRepository = (*InventoryRepository)(nil)
