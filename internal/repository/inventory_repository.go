package repository

import (
	"context"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
)

// InventoryRepository is the append-only record store behind ingestion and
// analytics.
type InventoryRepository interface {
	// SaveBatch writes records in one bulk call. IDs are assigned by the store.
	SaveBatch(ctx context.Context, records []domain.InventoryRecord) error
	// FindAll returns every stored record in insertion order.
	FindAll(ctx context.Context) ([]domain.InventoryRecord, error)
	Count(ctx context.Context) (int64, error)
}
