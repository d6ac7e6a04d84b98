package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

const inventorySchema = `
CREATE TABLE IF NOT EXISTS inventory_events (
	id                   BIGSERIAL PRIMARY KEY,
	date                 TEXT NOT NULL,
	store_id             TEXT NOT NULL,
	product_id           TEXT NOT NULL,
	product_name         TEXT NOT NULL,
	category             TEXT NOT NULL DEFAULT 'General',
	supplier             TEXT NOT NULL DEFAULT '',
	quantity             INTEGER NOT NULL DEFAULT 0,
	status               TEXT NOT NULL DEFAULT '',
	location             TEXT NOT NULL DEFAULT '',
	"timestamp"          TIMESTAMP NOT NULL,
	inventory_level      INTEGER NOT NULL DEFAULT 0,
	units_sold           INTEGER NOT NULL DEFAULT 0,
	units_ordered        INTEGER NOT NULL DEFAULT 0,
	demand_forecast      DOUBLE PRECISION NOT NULL DEFAULT 0,
	price                DOUBLE PRECISION NOT NULL DEFAULT 0,
	discount             DOUBLE PRECISION NOT NULL DEFAULT 0,
	weather_condition    TEXT NOT NULL DEFAULT '',
	holiday_or_promotion TEXT NOT NULL DEFAULT '',
	competitor_pricing   DOUBLE PRECISION NOT NULL DEFAULT 0,
	seasonality          TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_inventory_events_category ON inventory_events (category)`

const insertInventoryQuery = `
	INSERT INTO inventory_events (
		date, store_id, product_id, product_name, category, supplier,
		quantity, status, location, "timestamp", inventory_level,
		units_sold, units_ordered, demand_forecast, price, discount,
		weather_condition, holiday_or_promotion, competitor_pricing, seasonality
	) VALUES (
		:date, :store_id, :product_id, :product_name, :category, :supplier,
		:quantity, :status, :location, :timestamp, :inventory_level,
		:units_sold, :units_ordered, :demand_forecast, :price, :discount,
		:weather_condition, :holiday_or_promotion, :competitor_pricing, :seasonality
	)`

// postgres caps a statement at 65535 bind parameters; 20 per row
const maxRowsPerStatement = 3000

type InventoryRepository struct {
	db *DB
}

func NewInventoryRepository(db *DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// EnsureSchema creates the inventory_events table when missing.
func (r *InventoryRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, inventorySchema); err != nil {
		return fmt.Errorf("failed to create inventory_events table: %w", err)
	}
	return nil
}

// SaveBatch inserts the batch inside one transaction using multi-row
// INSERT statements.
func (r *InventoryRepository) SaveBatch(ctx context.Context, records []domain.InventoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for start := 0; start < len(records); start += maxRowsPerStatement {
			end := start + maxRowsPerStatement
			if end > len(records) {
				end = len(records)
			}
			if _, err := tx.NamedExecContext(ctx, insertInventoryQuery, records[start:end]); err != nil {
				return fmt.Errorf("failed to insert inventory events: %w", err)
			}
		}
		return nil
	})
}

func (r *InventoryRepository) FindAll(ctx context.Context) ([]domain.InventoryRecord, error) {
	query := `
		SELECT id, date, store_id, product_id, product_name, category, supplier,
		       quantity, status, location, "timestamp", inventory_level,
		       units_sold, units_ordered, demand_forecast, price, discount,
		       weather_condition, holiday_or_promotion, competitor_pricing, seasonality
		FROM inventory_events
		ORDER BY id
	`
	records := make([]domain.InventoryRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to fetch inventory events: %w", err)
	}
	return records, nil
}

func (r *InventoryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM inventory_events`); err != nil {
		return 0, fmt.Errorf("failed to count inventory events: %w", err)
	}
	return n, nil
}

var _ repository.InventoryRepository = (*InventoryRepository)(nil)
