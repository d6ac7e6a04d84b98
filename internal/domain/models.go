// backend-go/internal/domain/models.go
package domain

import "time"

// InventoryRecord is one normalized row of ingested inventory data.
type InventoryRecord struct {
	ID                 int64     `json:"id" db:"id"`
	Date               string    `json:"date" db:"date"`
	StoreID            string    `json:"storeId" db:"store_id"`
	ProductID          string    `json:"productId" db:"product_id"`
	ProductName        string    `json:"productName" db:"product_name"`
	Category           string    `json:"category" db:"category"`
	Supplier           string    `json:"supplier" db:"supplier"`
	Quantity           int       `json:"quantity" db:"quantity"`
	Status             string    `json:"status" db:"status"`
	Location           string    `json:"location" db:"location"`
	Timestamp          time.Time `json:"timestamp" db:"timestamp"`
	InventoryLevel     int       `json:"inventoryLevel" db:"inventory_level"`
	UnitsSold          int       `json:"unitsSold" db:"units_sold"`
	UnitsOrdered       int       `json:"unitsOrdered" db:"units_ordered"`
	DemandForecast     float64   `json:"demandForecast" db:"demand_forecast"`
	Price              float64   `json:"price" db:"price"`
	Discount           float64   `json:"discount" db:"discount"`
	WeatherCondition   string    `json:"weatherCondition" db:"weather_condition"`
	HolidayOrPromotion string    `json:"holidayOrPromotion" db:"holiday_or_promotion"`
	CompetitorPricing  float64   `json:"competitorPricing" db:"competitor_pricing"`
	Seasonality        string    `json:"seasonality" db:"seasonality"`
}

// UploadedFile represents an uploaded file for processing
type UploadedFile struct {
	Filename string
	Size     int64
}

// IngestResult summarizes one ingestion request.
type IngestResult struct {
	RunID       string         `json:"runId"`
	Source      string         `json:"source"`
	Processed   int            `json:"processed"`
	Skipped     int            `json:"skipped"`
	SkipReasons map[string]int `json:"skipReasons,omitempty"`
	Truncated   bool           `json:"truncated"`
	Duration    time.Duration  `json:"-"`
}
